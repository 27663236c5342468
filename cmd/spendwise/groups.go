package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendwise/internal/auth"
	"github.com/mmynk/spendwise/internal/cli"
)

var groupsCmd = &cobra.Command{
	Use:   "groups <email>",
	Short: "List the groups a user owns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := store.GetUserByEmail(cmd.Context(), auth.NormalizeEmail(args[0]))
		if err != nil {
			return fmt.Errorf("failed to find user %s: %w", args[0], err)
		}
		groups, err := store.ListGroupsByOwner(cmd.Context(), user.ID)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.Name, g.ID, fmt.Sprintf("%d", len(g.Members))})
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
			Title:   "Groups of " + user.DisplayName,
			Headers: []string{"Name", "ID", "Members"},
			Rows:    rows,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
