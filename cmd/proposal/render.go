package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-proposal/command"
	"github.com/goliatone/go-proposal/config"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/goliatone/go-proposal/query"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "render <file|id>",
		Short: "Render a proposal file or stored proposal to html, pdf or xlsx",
		Long: `Render a proposal. When the argument names a JSON file the document is
rendered from that file; otherwise it is looked up in the configured store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			parsed, err := proposal.ParseFormat(format)
			if err != nil {
				return err
			}

			source := args[0]
			var doc *proposal.Document
			if data, readErr := os.ReadFile(source); readErr == nil { // #nosec G304 -- operator-provided path
				decoded, err := proposal.DecodeDocument(data)
				if err != nil {
					return fmt.Errorf("decode %s: %w", source, err)
				}
				decoded.ID = idFromPath(source)
				doc = &decoded
				cfg.Store.Driver = config.StoreMemory
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

			id := source
			if doc != nil {
				if err := app.Store.Put(cmd.Context(), *doc); err != nil {
					return err
				}
				id = doc.ID
			}

			subs, err := command.RegisterHandlers(nil, command.Dependencies{
				Service: app.Service,
				Writer:  app.Store,
				Lister:  app.Store,
			})
			if err != nil {
				return err
			}
			defer unsubscribe(subs)

			var buf bytes.Buffer
			result, err := dispatcher.Query[query.RenderProposal, query.RenderResult](cmd.Context(), query.RenderProposal{
				ID:     id,
				Format: parsed,
				Output: &buf,
			})
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				sugar.Infof("rendered %s as %s (%d bytes) to %s", result.ID, result.Format, result.Bytes, output)
				return nil
			}
			_, err = out.Write(buf.Bytes())
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, pdf or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: stdout)")
	return cmd
}

func idFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func unsubscribe(subs []dispatcher.Subscription) {
	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
