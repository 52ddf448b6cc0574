package keystore

import (
	"context"
	"errors"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
)

// scripted returns canned answers in order.
func scripted(answers ...string) (PromptFunc, *int) {
	calls := 0
	return func(string) ([]byte, error) {
		if calls >= len(answers) {
			return nil, errors.New("no more answers")
		}
		a := answers[calls]
		calls++
		return []byte(a), nil
	}, &calls
}

func TestPassphraseAuthenticatorConfirmsNewKey(t *testing.T) {
	prompt, calls := scripted("secret", "secret")
	auth := &PassphraseAuthenticator{Prompt: prompt}

	h, err := auth.Authorize(context.Background(), Request{Purpose: PurposeEncrypt, Alias: testAlias})
	if err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if *calls != 2 {
		t.Errorf("Expected 2 prompts for a new key, got %d", *calls)
	}

	credential, err := h.redeem(PurposeEncrypt, nil)
	if err != nil {
		t.Fatalf("redeem() failed: %v", err)
	}
	if string(credential) != "secret" {
		t.Errorf("Expected credential %q, got %q", "secret", credential)
	}
}

func TestPassphraseAuthenticatorMismatch(t *testing.T) {
	prompt, _ := scripted("secret", "secrets")
	auth := &PassphraseAuthenticator{Prompt: prompt}

	_, err := auth.Authorize(context.Background(), Request{Purpose: PurposeEncrypt, Alias: testAlias})
	if !errors.Is(err, kerrors.ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestPassphraseAuthenticatorSkipsConfirmForExistingAlias(t *testing.T) {
	store := newTestStore(t)
	wrap(t, store, []byte("pw"), []byte("secret"))

	prompt, calls := scripted("pw")
	auth := &PassphraseAuthenticator{Prompt: prompt, Store: store}

	if _, err := auth.Authorize(context.Background(), Request{Purpose: PurposeEncrypt, Alias: testAlias}); err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("Expected a single prompt for an existing alias, got %d", *calls)
	}
}

func TestPassphraseAuthenticatorDecryptAsksOnce(t *testing.T) {
	prompt, calls := scripted("pw")
	auth := &PassphraseAuthenticator{Prompt: prompt}

	if _, err := auth.Authorize(context.Background(), Request{Purpose: PurposeDecrypt, Alias: testAlias, IV: make([]byte, IVSize)}); err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if *calls != 1 {
		t.Errorf("Expected a single prompt, got %d", *calls)
	}
}

func TestPassphraseAuthenticatorEmptyCancels(t *testing.T) {
	prompt, _ := scripted("")
	auth := &PassphraseAuthenticator{Prompt: prompt}

	_, err := auth.Authorize(context.Background(), Request{Purpose: PurposeDecrypt, Alias: testAlias})
	if !errors.Is(err, kerrors.ErrUserCancelled) {
		t.Errorf("Expected ErrUserCancelled, got %v", err)
	}
}

func TestPassphraseAuthenticatorPromptError(t *testing.T) {
	auth := &PassphraseAuthenticator{Prompt: func(string) ([]byte, error) {
		return nil, errors.New("no tty")
	}}

	_, err := auth.Authorize(context.Background(), Request{Purpose: PurposeDecrypt, Alias: testAlias})
	if !errors.Is(err, kerrors.ErrAuthFailed) {
		t.Errorf("Expected ErrAuthFailed, got %v", err)
	}
}

func TestPassphraseAuthenticatorContextCancel(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	auth := &PassphraseAuthenticator{Prompt: func(string) ([]byte, error) {
		<-release
		return []byte("late"), nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := auth.Authorize(ctx, Request{Purpose: PurposeDecrypt, Alias: testAlias})
	if !errors.Is(err, kerrors.ErrUserCancelled) {
		t.Errorf("Expected ErrUserCancelled, got %v", err)
	}
}

func TestStaticAuthenticator(t *testing.T) {
	auth := &StaticAuthenticator{Credential: []byte("pw")}
	h, err := auth.Authorize(context.Background(), Request{Purpose: PurposeEncrypt, Alias: testAlias})
	if err != nil {
		t.Fatalf("Authorize() failed: %v", err)
	}
	if h.Request.Alias != testAlias {
		t.Errorf("Expected alias %q, got %q", testAlias, h.Request.Alias)
	}

	empty := &StaticAuthenticator{}
	if _, err := empty.Authorize(context.Background(), Request{}); !errors.Is(err, kerrors.ErrUserCancelled) {
		t.Errorf("Expected ErrUserCancelled, got %v", err)
	}
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	if _, ok := FromEnvironment(0); ok {
		t.Error("Empty variable should not yield an authenticator")
	}

	t.Setenv(PassphraseEnv, "from-env")
	auth, ok := FromEnvironment(time.Minute)
	if !ok {
		t.Fatal("Expected an authenticator from the environment")
	}
	static, isStatic := auth.(*StaticAuthenticator)
	if !isStatic || string(static.Credential) != "from-env" {
		t.Errorf("Unexpected authenticator %#v", auth)
	}
}

func TestPurposeString(t *testing.T) {
	if PurposeEncrypt.String() != "encrypt" || PurposeDecrypt.String() != "decrypt" {
		t.Error("Unexpected purpose names")
	}
}
