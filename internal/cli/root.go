package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/guardrails/internal/config"
	"github.com/ppiankov/guardrails/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "guardrails",
	Short:        "Soft and hard limits on what database users may do",
	Long:         "Named guardrails that warn or reject when a user exceeds a threshold, uses a\ndisabled feature or sets a weak password. Reconfigurable at runtime.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.guardrails/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves --config and loads it with its hash.
func loadConfig() (*config.Config, string, string, error) {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err == nil {
			path = p
		}
	}
	cfg, hash, err := config.LoadConfigWithHash(path)
	if err != nil {
		return nil, "", "", err
	}
	return cfg, hash, path, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.Log)
}
