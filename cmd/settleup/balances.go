package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/cli"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/snapshot"
)

func balancesCmd(v *viper.Viper) *cobra.Command {
	var (
		snapshotPath string
		groupID      string
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show balances and suggested settlements from an exported snapshot",
		Long: `Reads a JSON export of groups and expenses and prints each group's
balances followed by the payments that settle them.`,
		Example: `  settleup balances --snapshot export.json
  settleup balances --snapshot export.json --group trip-2024`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			reducerCfg, err := cfg.ReducerConfig()
			if err != nil {
				return err
			}

			snap, err := snapshot.Load(snapshotPath)
			if err != nil {
				return err
			}
			return printBalances(cmd, snap, groupID, calculator.NewReducer(reducerCfg))
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "path to the exported JSON snapshot")
	cmd.Flags().StringVar(&groupID, "group", "", "only show this group")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func printBalances(cmd *cobra.Command, snap *snapshot.Snapshot, groupID string, reducer *calculator.Reducer) error {
	groups := snap.Groups
	if groupID != "" {
		group, ok := snap.Group(groupID)
		if !ok {
			return fmt.Errorf("group %q not found in snapshot", groupID)
		}
		groups = []models.Group{group}
	}

	for i, group := range groups {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		balances := calculator.ComputeBalances(group, snap.GroupExpenses(group.ID))
		settlements, err := reducer.Reduce(group, balances)
		if err != nil {
			return fmt.Errorf("group %s: %w", group.ID, err)
		}
		slog.Debug("Computed settlements", "group_id", group.ID, "count", len(settlements))
		if err := cli.RenderGroup(cmd.OutOrStdout(), group, balances, settlements); err != nil {
			return err
		}
	}
	return nil
}
