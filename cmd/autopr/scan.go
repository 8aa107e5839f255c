package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/autopr-dev/autopr/internal/config"
	"github.com/autopr-dev/autopr/internal/core"
	"github.com/autopr-dev/autopr/internal/githubapp"
	"github.com/autopr-dev/autopr/internal/remote"
	"github.com/autopr-dev/autopr/internal/storage"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan installed repositories for unassigned issues and run on the oldest per repo",
	Long: "Scan walks every installation of the App, finds the oldest open unassigned issue\n" +
		"in each repository that does not yet carry the product label, labels it, and runs the agent on it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
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

		auth, err := githubapp.New(cfg.GitHub.AppID, []byte(cfg.GitHub.PrivateKey), cfg.GitHub.BaseURL)
		if err != nil {
			return fmt.Errorf("github app auth: %w", err)
		}

		ctx := cmd.Context()
		installations, err := auth.Installations(ctx)
		if err != nil {
			return err
		}
		log.Printf("[scan] %d installation(s)", len(installations))

		for _, inst := range installations {
			token, err := auth.InstallationToken(ctx, inst.GetID())
			if err != nil {
				log.Printf("[scan] installation %d: token exchange failed: %v", inst.GetID(), err)
				continue
			}
			client, err := remote.New(token, cfg.GitHub.BaseURL, nil)
			if err != nil {
				return err
			}

			repos, err := client.ListInstalledRepos(ctx)
			if err != nil {
				log.Printf("[scan] installation %d: list repos failed: %v", inst.GetID(), err)
				continue
			}

			for _, r := range repos {
				issue, err := client.OldestUnassignedIssue(ctx, r.Owner, r.Repo, cfg.Product.Label)
				if err != nil {
					log.Printf("[scan] %s/%s: %v", r.Owner, r.Repo, err)
					continue
				}
				if issue == nil {
					continue
				}

				if dryRun {
					fmt.Printf("%s/%s#%d  %s\n", r.Owner, r.Repo, issue.GetNumber(), issue.GetTitle())
					continue
				}

				if err := client.AddLabel(ctx, r.Owner, r.Repo, issue.GetNumber(), cfg.Product.Label); err != nil {
					log.Printf("[scan] %s/%s#%d: label failed: %v", r.Owner, r.Repo, issue.GetNumber(), err)
					continue
				}

				event := core.Event{
					InstallationID: inst.GetID(),
					Source:         "scan",
					Owner:          r.Owner,
					OwnerID:        r.OwnerID,
					OwnerType:      inst.GetAccount().GetType(),
					Repo:           r.Repo,
					CloneURL:       r.CloneURL,
					BaseBranch:     r.DefaultBranch,
					IssueNumber:    issue.GetNumber(),
					IssueTitle:     issue.GetTitle(),
					IssueBody:      issue.GetBody(),
					SenderID:       issue.GetUser().GetID(),
					SenderName:     issue.GetUser().GetLogin(),
				}
				if err := engine.Execute(ctx, event); err != nil {
					log.Printf("[scan] %s: %v", event.UniqueIssueID(), err)
				}
			}
		}
		return nil
	},
}
