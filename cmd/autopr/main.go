package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/autopr-dev/autopr/internal/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "autopr",
	Short: "AutoPR — GitHub issue to pull request agent",
	Long:  "AutoPR watches issues labeled for it and turns them into pull requests: branch, commits, PR, one progress comment.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("autopr version %s\n", version)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		_, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", err)
			return err
		}

		fmt.Printf("Config validation passed: %s\n", configPath)
		return nil
	},
}

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	validateCmd.Flags().StringP("config", "c", "autopr.yaml", "Path to config file")

	serveCmd.Flags().StringP("config", "c", "autopr.yaml", "Path to config file")
	serveCmd.Flags().IntP("port", "p", 0, "Override webhook server port")

	scanCmd.Flags().StringP("config", "c", "autopr.yaml", "Path to config file")
	scanCmd.Flags().Bool("dry-run", false, "List candidate issues without acting on them")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
