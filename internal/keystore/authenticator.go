package keystore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/utils"

	"github.com/awnumar/memguard"
)

// PassphraseEnv names the environment variable read by FromEnvironment.
const PassphraseEnv = "FOLDERVAULT_PASSPHRASE"

// PromptFunc reads a secret after printing prompt.
type PromptFunc func(prompt string) ([]byte, error)

// PassphraseAuthenticator asks for a passphrase on the controlling terminal.
// When a new wrapping key is about to be created the passphrase is asked for
// twice.
type PassphraseAuthenticator struct {
	// Prompt defaults to utils.ReadPassphraseFromTTY.
	Prompt PromptFunc

	// TTL of issued handles. Zero selects DefaultHandleTTL.
	TTL time.Duration

	// Store, when set, is consulted to decide whether to confirm the passphrase.
	Store KeyStore
}

func (a *PassphraseAuthenticator) prompt() PromptFunc {
	if a.Prompt != nil {
		return a.Prompt
	}
	return utils.ReadPassphraseFromTTY
}

type promptResult struct {
	secret []byte
	err    error
}

// ask runs the prompt in the background so ctx can abandon it. A terminal read
// cannot be interrupted, so an abandoned prompt returns when the user presses
// enter and its input is wiped.
func (a *PassphraseAuthenticator) ask(ctx context.Context, prompt string) ([]byte, error) {
	ch := make(chan promptResult, 1)
	go func() {
		secret, err := a.prompt()(prompt)
		ch <- promptResult{secret, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			r := <-ch
			memguard.WipeBytes(r.secret)
		}()
		return nil, fmt.Errorf("%w: %v", kerrors.ErrUserCancelled, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrAuthFailed, r.err)
		}
		if len(r.secret) == 0 {
			return nil, kerrors.ErrUserCancelled
		}
		return r.secret, nil
	}
}

func (a *PassphraseAuthenticator) needsConfirmation(req Request) bool {
	if req.Purpose != PurposeEncrypt {
		return false
	}
	if a.Store == nil {
		return true
	}
	exists, err := a.Store.Exists(req.Alias)
	return err != nil || !exists
}

// Authorize prompts for the passphrase. An empty answer cancels.
func (a *PassphraseAuthenticator) Authorize(ctx context.Context, req Request) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrUserCancelled, err)
	}

	secret, err := a.ask(ctx, "Enter vault passphrase: ")
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(secret)

	if a.needsConfirmation(req) {
		confirm, err := a.ask(ctx, "Confirm vault passphrase: ")
		if err != nil {
			return nil, err
		}
		defer memguard.WipeBytes(confirm)

		if !bytes.Equal(secret, confirm) {
			return nil, fmt.Errorf("%w: passphrases do not match", kerrors.ErrAuthFailed)
		}
	}

	return NewHandle(req, secret, a.TTL), nil
}

// StaticAuthenticator authorizes every request with a fixed credential.
// It serves non-interactive use and tests.
type StaticAuthenticator struct {
	Credential []byte
	TTL        time.Duration
}

// Authorize returns a handle for req. An empty credential cancels.
func (a *StaticAuthenticator) Authorize(ctx context.Context, req Request) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrUserCancelled, err)
	}
	if len(a.Credential) == 0 {
		return nil, kerrors.ErrUserCancelled
	}
	return NewHandle(req, a.Credential, a.TTL), nil
}

// FromEnvironment returns a StaticAuthenticator when PassphraseEnv is set.
func FromEnvironment(ttl time.Duration) (Authenticator, bool) {
	passphrase, ok := os.LookupEnv(PassphraseEnv)
	if !ok || passphrase == "" {
		return nil, false
	}
	return &StaticAuthenticator{Credential: []byte(passphrase), TTL: ttl}, true
}
