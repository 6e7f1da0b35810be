package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdtools/jira2md/internal/config"
	"github.com/mdtools/jira2md/internal/logging"
)

var (
	cfgFile      string
	verbose      bool
	flagURL      string
	flagUsername string
	flagToken    string

	appConfig config.Config
	log       logging.Logger
	version   = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:     "jira2md",
	Short:   "Export JIRA tickets to Markdown files",
	Long:    `A CLI tool that fetches JIRA tickets over the REST API and writes them as Markdown documents, converting JIRA wiki markup along the way. Supports single tickets, JQL queries, and bulk exports from a key list.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.jira2md.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagURL, "jira-url", "", "JIRA instance URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "JIRA username/email (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "api-token", "", "JIRA API token (overrides config)")
}

// loadConfig loads and validates configuration, applies flag
// overrides, and sets up the logger. Commands that need JIRA access
// call this.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagURL != "" {
		cfg.Jira.URL = flagURL
	}
	if flagUsername != "" {
		cfg.Jira.Username = flagUsername
	}
	if flagToken != "" {
		cfg.Jira.APIToken = flagToken
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w\nRun 'jira2md config' to set up credentials", err)
	}
	appConfig = cfg
	log = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
