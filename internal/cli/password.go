package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ppiankov/guardrails/internal/guardrail"
	"github.com/ppiankov/guardrails/internal/registry"
)

var (
	passwordSize int
	passwordJSON bool
)

var errPasswordRejected = errors.New("password rejected by policy")

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordCheckCmd)
	passwordCmd.AddCommand(passwordGenerateCmd)
	passwordCheckCmd.Flags().BoolVar(&passwordJSON, "json", false, "Print the outcome as JSON")
	passwordGenerateCmd.Flags().IntVar(&passwordSize, "size", 0, "Password length from 1 to 1024 (default min_length_warn)")
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Check or generate passwords with the configured policy",
}

var passwordCheckCmd = &cobra.Command{
	Use:   "check [password]",
	Short: "Check a password against the policy; reads stdin when no argument is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPasswordCheck,
}

var passwordGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a password that passes the policy",
	Args:  cobra.NoArgs,
	RunE:  runPasswordGenerate,
}

// passwordOutcome is the printed result of a check.
type passwordOutcome struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings,omitempty"`
	Message  string   `json:"message,omitempty"`
}

func localRegistry() (*registry.Registry, error) {
	cfg, _, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return registry.New(cfg.Guardrails, nil)
}

func runPasswordCheck(cmd *cobra.Command, args []string) error {
	var pw string
	if len(args) == 1 {
		pw = args[0]
	} else {
		var err error
		if pw, err = readPassword(cmd); err != nil {
			return err
		}
	}

	reg, err := localRegistry()
	if err != nil {
		return err
	}

	warnings := &guardrail.WarningCollector{}
	err = reg.Password().Guard(pw, &guardrail.ClientState{User: "cli", Warnings: warnings})
	outcome := passwordOutcome{Valid: err == nil, Warnings: warnings.Warnings()}
	if err != nil {
		v, ok := guardrail.AsViolation(err)
		if !ok {
			return err
		}
		outcome.Message = v.Message
		// The violation message is also delivered as a client warning.
		outcome.Warnings = nil
	}

	out := cmd.OutOrStdout()
	if passwordJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode outcome: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		switch {
		case !outcome.Valid:
			fmt.Fprintln(out, "REJECTED: "+outcome.Message)
		case len(outcome.Warnings) > 0:
			for _, w := range outcome.Warnings {
				fmt.Fprintln(out, "WARNING: "+w)
			}
		default:
			fmt.Fprintln(out, "OK")
		}
	}

	if !outcome.Valid {
		return errPasswordRejected
	}
	return nil
}

// readPassword reads one line from stdin, without echo on a terminal.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runPasswordGenerate(cmd *cobra.Command, args []string) error {
	reg, err := localRegistry()
	if err != nil {
		return err
	}

	var pw string
	if passwordSize != 0 || cmd.Flags().Changed("size") {
		pw, err = reg.Password().GenerateSize(passwordSize)
	} else {
		pw, err = reg.Password().Generate()
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pw)
	return nil
}
