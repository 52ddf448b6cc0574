package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxPassphraseBytes bounds how much piped input is read as a passphrase.
const maxPassphraseBytes = 4096

// ReadStdin reads a passphrase piped on stdin. It fails when stdin is a
// terminal, since nothing was piped.
func ReadStdin() ([]byte, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return nil, fmt.Errorf("no data provided on stdin (hint: pipe your passphrase to this command)")
	}
	return ReadPassphraseLine(os.Stdin)
}

// ReadPassphraseLine returns the first line of r without its line ending,
// so `echo secret | foldervault ...` and CRLF files both work. Anything
// after the first line is ignored.
func ReadPassphraseLine(r io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(io.LimitReader(r, maxPassphraseBytes+1)).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(line) > maxPassphraseBytes {
		return nil, fmt.Errorf("passphrase exceeds %d bytes", maxPassphraseBytes)
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return nil, fmt.Errorf("stdin is empty")
	}
	return []byte(line), nil
}
