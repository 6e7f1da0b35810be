package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	fetchOutputDir string
	fetchOverwrite bool
	fetchStdout    bool
	fetchImages    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <issue-key>...",
	Short: "Fetch JIRA tickets and save them as markdown",
	Long:  `Fetches one or more JIRA tickets by key, converts them to markdown, and writes one file per ticket to the output directory. With --stdout the document goes to standard output instead.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		e, err := newExporter(fetchOutputDir, fetchOverwrite)
		if err != nil {
			return err
		}

		for _, arg := range args {
			key := strings.ToUpper(arg)

			if fetchStdout {
				issue, err := e.client.GetIssue(key)
				if err != nil {
					return fmt.Errorf("fetching %s: %w", key, err)
				}
				_, content, _ := e.render(issue)
				fmt.Print(content)
				continue
			}

			path, err := e.exportKey(key)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", key, err)
			}
			fmt.Fprintf(os.Stderr, "%s %s saved to %s\n", color.GreenString("✓"), key, path)
		}
		if !fetchStdout && (fetchImages || appConfig.Images.Download) {
			localizeImages(e.writer.Dir())
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOutputDir, "output-dir", "", "write output to this directory instead of the configured one")
	fetchCmd.Flags().BoolVar(&fetchOverwrite, "overwrite", false, "replace existing files")
	fetchCmd.Flags().BoolVar(&fetchStdout, "stdout", false, "print markdown to stdout instead of writing files")
	fetchCmd.Flags().BoolVar(&fetchImages, "download-images", false, "download referenced images after exporting")
	rootCmd.AddCommand(fetchCmd)
}
