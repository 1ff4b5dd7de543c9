package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	proposalrouter "github.com/goliatone/go-proposal/adapters/router"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/goliatone/go-router"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve proposals over HTTP",
		Args:  cobra.NoArgs,
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
			return serve(cmd.Context(), app)
		},
	}
}

func serve(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(fiberAppInitializer())

	handler, err := proposalrouter.NewHandler(proposalrouter.Config{
		Service:  app.Service,
		BasePath: app.Config.Server.BasePath,
		Logger:   app.Logger,
	})
	if err != nil {
		return err
	}
	handler.RegisterRoutes(srv.Router())

	addr := app.Config.Server.Addr()
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Infof("serving proposals on http://%s", addr)
		errCh <- srv.Serve(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.Logger.Infof("shutting down server")
	timeout := app.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func fiberAppInitializer() func(*fiber.App) *fiber.App {
	return func(*fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:               proposal.InstitutionName + " Proposals",
			DisableStartupMessage: true,
			ReadTimeout:           30 * time.Second,
			WriteTimeout:          2 * time.Minute,
		})
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
		}))
		return app
	}
}
