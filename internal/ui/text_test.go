package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// forceColor enables color output for the rest of the test.
func forceColor(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	original := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = original })
}

func TestFormattersWithoutColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"code", Code.Sprint("foldervault vault list"), "`foldervault vault list`"},
		{"code sprintf", Code.Sprintf("foldervault vault %s %d", "decrypt", 3), "`foldervault vault decrypt 3`"},
		{"code multiple args", Code.Sprint("foldervault", " ", "vault"), "`foldervault vault`"},
		{"path", Path.Sprint("photos/a.jpg.enc"), "photos/a.jpg.enc"},
		{"flag", Flag.Sprint("--dry-run"), "--dry-run"},
		{"success", Success.Sprint("✓"), "✓"},
		{"error", Error.Sprint("✗"), "✗"},
		{"warning", Warning.Sprint("⚠"), "⚠"},
		{"info", Info.Sprint("→"), "→"},
		{"highlight", Highlight.Sprint("Tax Returns"), "'Tax Returns'"},
		{"muted", Muted.Sprint("and 3 more"), "(and 3 more)"},
		{"success line", SuccessLine("done"), "✓ done"},
		{"error line", ErrorLine("failed"), "✗ failed"},
		{"hint line", HintLine("run it again"), "→ run it again"},
		{"encrypted mode", VaultMode("encrypted"), "encrypted"},
		{"decrypted mode", VaultMode("decrypted"), "decrypted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestFormattersWithColor(t *testing.T) {
	forceColor(t)

	code := Code.Sprint("foldervault vault list")
	if strings.Contains(code, "`") {
		t.Errorf("Code should drop backticks when colored, got %q", code)
	}
	if !strings.Contains(code, "\x1b[") {
		t.Errorf("Code should contain ANSI escape codes, got %q", code)
	}

	title := Highlight.Sprintf("vault: %s", "Tax Returns")
	if strings.Contains(title, "'") || !strings.Contains(title, "vault: Tax Returns") {
		t.Errorf("Highlight should color without quotes, got %q", title)
	}
}

func TestNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if !noColor() {
		t.Error("noColor() should be true when NO_COLOR is set")
	}

	forceColor(t)
	if noColor() {
		t.Error("noColor() should be false with color forced on")
	}

	color.NoColor = true
	if !noColor() {
		t.Error("noColor() should be true when color.NoColor is true")
	}
}

func TestColumn(t *testing.T) {
	t.Run("no color", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")

		if got := Success.Column("encrypted", 12); got != "encrypted   " {
			t.Errorf("Column() = %q", got)
		}
		if got := Highlight.Column("ab", 6); got != "'ab'  " {
			t.Errorf("Column() should count decorations, got %q", got)
		}
		if got := Warning.Column("decrypted", 4); got != "decrypted" {
			t.Errorf("Column() should not truncate, got %q", got)
		}
	})

	t.Run("color", func(t *testing.T) {
		forceColor(t)

		got := Success.Column("encrypted", 12)
		if !strings.HasPrefix(got, Success.Sprint("encrypted")) || !strings.HasSuffix(got, "\x1b[0m   ") {
			t.Errorf("Column() should pad after the color codes, got %q", got)
		}
	})
}

func TestModeFormatter(t *testing.T) {
	forceColor(t)

	if got, want := VaultMode("encrypted"), Success.Sprint("encrypted"); got != want {
		t.Errorf("VaultMode(encrypted) = %q, want %q", got, want)
	}
	if got, want := VaultMode("decrypted"), Warning.Sprint("decrypted"); got != want {
		t.Errorf("VaultMode(decrypted) = %q, want %q", got, want)
	}
}

func TestEnsureNewline(t *testing.T) {
	for in, want := range map[string]string{"": "\n", "a": "a\n", "a\n": "a\n"} {
		if got := EnsureNewline(in); got != want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", in, got, want)
		}
	}
}
