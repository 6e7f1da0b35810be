package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	queryOutputDir  string
	queryOverwrite  bool
	queryMaxResults int
	queryImages     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <jql>",
	Short: "Export all tickets matching a JQL query",
	Long:  `Runs a JQL query against JIRA and exports every matching ticket as a markdown file. Example: jira2md query "project = PROJ AND status = Done"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		e, err := newExporter(queryOutputDir, queryOverwrite)
		if err != nil {
			return err
		}

		jql := args[0]
		log.Info("running query", "jql", jql)

		issues, err := e.client.Search(jql, queryMaxResults)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
		if len(issues) == 0 {
			fmt.Println("No tickets matched the query.")
			return nil
		}

		exported, failed := 0, 0
		for i := range issues {
			path, err := e.exportIssue(&issues[i])
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", color.RedString("✗"), issues[i].Key, err)
				continue
			}
			exported++
			fmt.Fprintf(os.Stderr, "%s %s saved to %s\n", color.GreenString("✓"), issues[i].Key, path)
		}

		fmt.Fprintf(os.Stderr, "\nExported %d of %d tickets", exported, len(issues))
		if failed > 0 {
			fmt.Fprintf(os.Stderr, " (%d failed)", failed)
		}
		fmt.Fprintln(os.Stderr)
		if (queryImages || appConfig.Images.Download) && exported > 0 {
			localizeImages(e.writer.Dir())
		}
		if failed > 0 {
			return fmt.Errorf("%d tickets failed to export", failed)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryOutputDir, "output-dir", "", "write output to this directory instead of the configured one")
	queryCmd.Flags().BoolVar(&queryOverwrite, "overwrite", false, "replace existing files")
	queryCmd.Flags().IntVar(&queryMaxResults, "max-results", 50, "maximum number of tickets to export")
	queryCmd.Flags().BoolVar(&queryImages, "download-images", false, "download referenced images after exporting")
	rootCmd.AddCommand(queryCmd)
}
