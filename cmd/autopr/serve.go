package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autopr-dev/autopr/internal/adapter/git"
	"github.com/autopr-dev/autopr/internal/config"
	"github.com/autopr-dev/autopr/internal/core"
	"github.com/autopr-dev/autopr/internal/githubapp"
	"github.com/autopr-dev/autopr/internal/storage"
	"github.com/autopr-dev/autopr/internal/webhook"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if port > 0 {
			cfg.Server.Port = port
		}

		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		engine, err := buildEngine(cfg, db)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		handler := webhook.NewHandler(cfg.GitHub.WebhookSecret, cfg.Product.Label,
			func(event core.Event) error {
				return engine.Execute(ctx, event)
			},
			func(event core.Event) error {
				return engine.Onboard(ctx, event)
			})

		server := webhook.NewServer(cfg.Server, handler)
		return server.ListenAndServe(ctx)
	},
}

// buildEngine wires the engine from configuration.
func buildEngine(cfg *config.Config, db *storage.DB) (*core.Engine, error) {
	auth, err := githubapp.New(cfg.GitHub.AppID, []byte(cfg.GitHub.PrivateKey), cfg.GitHub.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("github app auth: %w", err)
	}

	bootstrap := git.New(cfg.Workspace.Dir, cfg.Product.Name, cfg.Product.URL)
	return core.NewEngine(cfg, db, auth, core.IssueDiffPlanner{}, bootstrap), nil
}
