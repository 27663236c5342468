package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendwise/internal/calculator"
	"github.com/mmynk/spendwise/internal/cli"
	"github.com/mmynk/spendwise/internal/service"
)

var (
	flagCategory string
	flagJSON     bool
)

var balancesCmd = &cobra.Command{
	Use:   "balances <group-id>",
	Short: "Print a group's balances and suggested transfers",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalances,
}

func init() {
	balancesCmd.Flags().StringVar(&flagCategory, "category", "", "Only consider expenses and settlements of this category")
	balancesCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(balancesCmd)
}

func runBalances(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.GetSnapshot(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load group %s: %w", args[0], err)
	}
	opt := calculator.WithTolerance(cfg.Settle.Tolerance)

	var summary any
	var rendered string
	if flagCategory != "" {
		s := service.SummarizeCategory(snap, flagCategory, opt)
		summary, rendered = s, cli.RenderCategorySummary(s)
	} else {
		s := service.Summarize(snap, opt)
		summary, rendered = s, cli.RenderGroupSummary(s)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, rendered)
	return nil
}
