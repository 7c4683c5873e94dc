package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/guardrails/internal/client"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

var thresholdsAddr string

func init() {
	rootCmd.AddCommand(thresholdsCmd)
	thresholdsCmd.AddCommand(thresholdsListCmd)
	thresholdsCmd.AddCommand(thresholdsSetCmd)
	thresholdsCmd.PersistentFlags().StringVar(&thresholdsAddr, "addr", "", "Server address (default server.listen from config)")
}

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Read and update threshold guardrails on a running server",
}

var thresholdsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every threshold guardrail",
	Args:  cobra.NoArgs,
	RunE:  runThresholdsList,
}

var thresholdsSetCmd = &cobra.Command{
	Use:     "set <name> <warn> <fail>",
	Short:   "Set both thresholds of a guardrail; -1 disables a side",
	Example: "  guardrails thresholds set tables 150 200\n  guardrails thresholds set tables -- -1 200",
	Args:    cobra.ExactArgs(3),
	RunE:    runThresholdsSet,
}

func dialServer() (*client.Client, error) {
	addr := thresholdsAddr
	if addr == "" {
		cfg, _, _, err := loadConfig()
		if err != nil {
			return nil, err
		}
		addr = cfg.Server.Listen
	}
	return client.New(addr)
}

func runThresholdsList(cmd *cobra.Command, args []string) error {
	c, err := dialServer()
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.ListThresholds()
	if err != nil {
		return fmt.Errorf("failed to list thresholds: %w", err)
	}
	printEntries(cmd, entries)
	return nil
}

func printEntries(cmd *cobra.Command, entries []thresholds.Entry) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", thresholds.NameColumn, thresholds.WarnColumn, thresholds.FailColumn)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%d\n", e.Name, e.Warn, e.Fail)
	}
	w.Flush()
}

func runThresholdsSet(cmd *cobra.Command, args []string) error {
	warn, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid warn value %q: %w", args[1], err)
	}
	fail, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid fail value %q: %w", args[2], err)
	}

	c, err := dialServer()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.ApplyThreshold(thresholds.Update{Name: args[0], Warn: &warn, Fail: &fail}); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: warn=%d fail=%d\n", args[0], warn, fail)
	return nil
}
