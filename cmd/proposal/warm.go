package main

import (
	"fmt"

	"github.com/goliatone/go-proposal/command"
	"github.com/spf13/cobra"
)

func newWarmCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "warm [id...]",
		Short: "Pre-render proposal PDFs into the artifact cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sugar := logger.Sugar()
			app, err := NewApp(cmd.Context(), cfg, sugar)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					sugar.Errorf("close app: %v", err)
				}
			}()

			warm := command.NewWarmCommand(app.Service, app.Store.List,
				command.WithWarmLimits(command.WarmLimits{MaxProposals: limit}),
				command.WithWarmLogger(sugar),
			)
			count, err := warm.Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %d proposals\n", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum proposals to warm (0 = all)")
	return cmd
}
