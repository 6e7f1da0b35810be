package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the JIRA connection",
	Long:  `Verifies that the configured URL and credentials work by calling the JIRA API and reporting the authenticated user and server version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		client := newClient()

		me, err := client.Myself()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s connection to %s failed\n", color.RedString("✗"), appConfig.Jira.URL)
			return fmt.Errorf("authenticating: %w", err)
		}

		fmt.Printf("%s Connected to %s as %s\n", color.GreenString("✓"), appConfig.Jira.URL, me.DisplayName)

		info, err := client.ServerInfo()
		if err != nil {
			log.Debug("server info unavailable", "error", err)
			return nil
		}
		fmt.Printf("  %s %s\n", info.DeploymentType, info.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
