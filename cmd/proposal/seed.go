package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-proposal/command"
	"github.com/goliatone/go-proposal/config"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const seedLong = `Store proposal JSON files in the configured store.

Seeding is a development aid. Proposals are authored in the editing
application and the viewer only reads them. The id "` + proposal.HealthID + `" is reserved.`

func newSeedCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "seed <file...>",
		Short: "Store proposal JSON files in the configured store",
		Long:  seedLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id != "" && len(args) > 1 {
				return fmt.Errorf("--id can only be used with a single file")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sugar := logger.Sugar()
			if cfg.Store.Driver == config.StoreMemory {
				sugar.Infof("store driver is memory; seeded proposals will not outlive this command")
			}

			docs := make([]proposal.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path) // #nosec G304 -- operator-provided path
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				doc, err := proposal.DecodeDocument(data)
				if err != nil {
					return fmt.Errorf("decode %s: %w", path, err)
				}
				doc.ID = strings.TrimSpace(id)
				if doc.ID == "" {
					doc.ID = uuid.NewString()
				}
				docs = append(docs, doc)
			}

			app, err := NewApp(cmd.Context(), cfg, sugar)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					sugar.Errorf("close app: %v", err)
				}
			}()

			subs, err := command.RegisterHandlers(nil, command.Dependencies{
				Service: app.Service,
				Writer:  app.Store,
				Lister:  app.Store,
			})
			if err != nil {
				return err
			}
			defer unsubscribe(subs)

			for i, doc := range docs {
				if err := dispatcher.Dispatch(cmd.Context(), command.SaveProposal{Document: doc}); err != nil {
					return fmt.Errorf("seed %s: %w", args[i], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", doc.ID, args[i])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Identifier for a single seeded file (default: random uuid)")
	return cmd
}
