package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pumpplan/app"
	"github.com/kilianp07/pumpplan/core/model"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Inspect reference tables",
}

var referenceValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the reference tables are complete",
	RunE:  validateReference,
}

func init() {
	referenceCmd.AddCommand(referenceValidateCmd)
	rootCmd.AddCommand(referenceCmd)
}

func validateReference(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	tables, err := app.LoadTables(ctx, cfg.Planner)
	if err != nil {
		return err
	}
	if err := tables.Validate(cfg.Planner.MinPumps); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "reference tables OK: %d holidays, %d elections, %d shutdowns, pumps %d..%d\n",
		len(tables.Holidays), len(tables.Elections), len(tables.Shutdowns), cfg.Planner.MinPumps, model.MaxPumps)
	return nil
}
