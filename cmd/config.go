package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mdtools/jira2md/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure JIRA connection settings",
	Long:  `Interactively set up JIRA URL, username, and API token. Settings are saved to ~/.jira2md.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		// Load existing config for defaults
		existing, _ := config.Load(cfgFile)

		// URL
		defaultURL := existing.Jira.URL
		if defaultURL != "" {
			fmt.Printf("JIRA URL [%s]: ", defaultURL)
		} else {
			fmt.Print("JIRA URL (e.g., https://your-org.atlassian.net): ")
		}
		url, _ := reader.ReadString('\n')
		url = strings.TrimSpace(url)
		if url == "" {
			url = defaultURL
		}

		// Username
		defaultUser := existing.Jira.Username
		if defaultUser != "" {
			fmt.Printf("Username/email [%s]: ", defaultUser)
		} else {
			fmt.Print("Username/email: ")
		}
		user, _ := reader.ReadString('\n')
		user = strings.TrimSpace(user)
		if user == "" {
			user = defaultUser
		}

		// Token (masked input)
		fmt.Print("API Token (input hidden): ")
		tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // newline after hidden input
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		token := strings.TrimSpace(string(tokenBytes))
		if token == "" {
			token = existing.Jira.APIToken
		}

		// Output directory
		defaultDir := existing.Output.Directory
		fmt.Printf("Output directory [%s]: ", defaultDir)
		dir, _ := reader.ReadString('\n')
		dir = strings.TrimSpace(dir)
		if dir == "" {
			dir = defaultDir
		}

		cfg := existing
		cfg.Jira.URL = url
		cfg.Jira.Username = user
		cfg.Jira.APIToken = token
		cfg.Output.Directory = dir

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		if err := config.Save(cfg, path); err != nil {
			return err
		}

		fmt.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
