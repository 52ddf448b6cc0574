package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/PolarWolf314/foldervault/internal/configs"
	kerrors "github.com/PolarWolf314/foldervault/internal/errors"
	"github.com/PolarWolf314/foldervault/internal/keystore"
	"github.com/PolarWolf314/foldervault/internal/ui"
	"github.com/PolarWolf314/foldervault/internal/utils"
	"github.com/PolarWolf314/foldervault/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verboseFlag, debugFlag bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verboseFlag && !debugFlag
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// pausingPrompt reads the passphrase from the terminal with the spinner paused.
func pausingPrompt(s *spinner.Spinner) keystore.PromptFunc {
	return func(prompt string) ([]byte, error) {
		if s.Active() {
			s.Stop()
			defer s.Start()
		}
		return utils.ReadPassphraseFromTTY(prompt)
	}
}

// resolveAuthenticator picks where the passphrase comes from: stdin when
// --passphrase-stdin is set, then FOLDERVAULT_PASSPHRASE, then the terminal.
func resolveAuthenticator(cfg *configs.UserConfig, s *spinner.Spinner) (keystore.Authenticator, error) {
	if passphraseStdin {
		Logger.Debugf("Reading passphrase from stdin")
		data, err := utils.ReadStdin()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		return &keystore.StaticAuthenticator{Credential: data, TTL: cfg.HandleTTL()}, nil
	}

	if auth, ok := keystore.FromEnvironment(cfg.HandleTTL()); ok {
		Logger.Debugf("Using passphrase from %s", keystore.PassphraseEnv)
		return auth, nil
	}

	Logger.Debugf("Prompting for passphrase on the terminal")
	return &keystore.PassphraseAuthenticator{Prompt: pausingPrompt(s), TTL: cfg.HandleTTL()}, nil
}

// openEnv loads the user configuration and wires the workflow environment.
func openEnv(s *spinner.Spinner) (*workflows.Env, error) {
	Logger.Debugf("Loading user config from %s", configs.UserVaultSettings.ConfigPath())
	cfg, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, err
	}
	configs.GlobalUserConfig = cfg

	auth, err := resolveAuthenticator(cfg, s)
	if err != nil {
		return nil, err
	}

	Logger.Debugf("Opening registry at %s", cfg.RegistryPath())
	return workflows.Open(cfg, auth, Logger)
}

// parseVaultID parses a positional vault ID.
func parseVaultID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid vault id %q: expected a positive number", arg)
	}
	return id, nil
}

// formatVaultError turns a workflow error into the final message shown to the user.
func formatVaultError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrUserCancelled):
		return ui.ErrorLine("Authentication was cancelled, nothing was changed")

	case errors.Is(err, kerrors.ErrAuthFailed):
		return ui.ErrorLine("Authentication failed. Is the passphrase correct?")

	case errors.Is(err, kerrors.ErrHardwareKeyUnavailable):
		return ui.ErrorLine("The key protecting your master key is missing") + "\n" +
			ui.HintLine("Restore your key store or run "+ui.Code.Sprint("foldervault config reset-key"))

	case errors.Is(err, kerrors.ErrHandleExpired):
		return ui.ErrorLine("The authorization expired before it was used, please try again")

	case errors.Is(err, kerrors.ErrVaultNotFound):
		return ui.ErrorLine(err.Error()) + "\n" +
			ui.HintLine("Run "+ui.Code.Sprint("foldervault vault list")+" to see your vaults")

	case errors.Is(err, kerrors.ErrAuthenticationFailed), errors.Is(err, kerrors.ErrMalformedBlob):
		return ui.ErrorLine("A file could not be authenticated. It is corrupt or was modified") + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInvalidRecord):
		return ui.ErrorLine("Your wrapped master key record is corrupt") + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrVaultExists),
		errors.Is(err, kerrors.ErrVaultAlreadyEncrypted),
		errors.Is(err, kerrors.ErrVaultAlreadyDecrypted),
		errors.Is(err, kerrors.ErrPathInvalid):
		return ui.ErrorLine(err.Error())

	default:
		return ui.ErrorLine(ui.Error.Sprint("Error: ") + err.Error())
	}
}

// Exit codes for failures whose message was already shown.
const (
	ExitFailure    = 1
	ExitAuthFailed = 2
	ExitCancelled  = 3
)

// ExitError fails a command with a specific exit code. Its message has already
// been printed, so main exits without repeating it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// exitCode returns the code err should exit with, or 0 when the error is
// expected and was fully reported by its final message.
func exitCode(err error) int {
	switch {
	case errors.Is(err, kerrors.ErrUserCancelled):
		return ExitCancelled
	case errors.Is(err, kerrors.ErrAuthFailed):
		return ExitAuthFailed
	case errors.Is(err, kerrors.ErrVaultNotFound),
		errors.Is(err, kerrors.ErrVaultExists),
		errors.Is(err, kerrors.ErrVaultAlreadyEncrypted),
		errors.Is(err, kerrors.ErrVaultAlreadyDecrypted),
		errors.Is(err, kerrors.ErrPathInvalid):
		return 0
	default:
		return ExitFailure
	}
}

// reportError sets the final message for err and returns the error when it
// should fail the command.
func reportError(s *spinner.Spinner, err error) error {
	Logger.Errorf("%v", err)
	s.FinalMSG = formatVaultError(err)
	switch code := exitCode(err); code {
	case 0:
		return nil
	case ExitFailure:
		return err
	default:
		return &ExitError{Code: code, Err: err}
	}
}

// transformFlags holds the file selection flags shared by transforming commands.
type transformFlags struct {
	exclude    []string
	keepSource bool
	dryRun     bool
}

func (f *transformFlags) register(cmd *cobra.Command, withDryRun bool) {
	cmd.Flags().StringArrayVar(&f.exclude, "exclude", nil, "glob of files to leave alone (repeatable)")
	cmd.Flags().BoolVar(&f.keepSource, "keep-source", false, "keep originals next to their counterparts")
	if withDryRun {
		cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show what would happen without writing")
	}
}

func (f *transformFlags) options() workflows.TransformOptions {
	return workflows.TransformOptions{
		Exclude:    f.exclude,
		KeepSource: f.keepSource,
		DryRun:     f.dryRun,
	}
}

func (f *transformFlags) reset() {
	*f = transformFlags{}
}

// resetCobraFlagState clears the Changed marks of a command tree to prevent test pollution.
func resetCobraFlagState(root *cobra.Command) {
	unset := func(flag *pflag.Flag) { flag.Changed = false }
	root.Flags().VisitAll(unset)
	root.PersistentFlags().VisitAll(unset)
	for _, c := range root.Commands() {
		resetCobraFlagState(c)
	}
}
