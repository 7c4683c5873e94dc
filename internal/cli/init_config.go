package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/guardrails/internal/config"
)

var (
	initOutput string
	initForce  bool
)

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().StringVarP(&initOutput, "output", "o", "", "Write to this path instead of stdout")
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Print a commented default configuration",
	Args:  cobra.NoArgs,
	RunE:  runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	content := config.DefaultConfigYAML()
	if initOutput == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	if !initForce {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
		}
	}
	if err := os.MkdirAll(filepath.Dir(initOutput), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(initOutput, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", initOutput)
	return nil
}
