package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	bulkOutputDir string
	bulkOverwrite bool
	bulkFile      string
	bulkImages    bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk [key]...",
	Short: "Export a list of tickets",
	Long:  `Exports each listed ticket as a markdown file. Keys come from the arguments, from a file given with --file (one key per line, blank lines and lines starting with # ignored), or both. Duplicate keys are fetched once. Failures are reported but do not stop the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		keys, err := collectKeys(args, bulkFile)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			return fmt.Errorf("no ticket keys given; pass keys as arguments or with --file")
		}

		e, err := newExporter(bulkOutputDir, bulkOverwrite)
		if err != nil {
			return err
		}

		log.Info("starting bulk export", "tickets", len(keys))

		exported, failed := 0, 0
		for _, key := range keys {
			path, err := e.exportKey(key)
			if err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", color.RedString("✗"), key, err)
				continue
			}
			exported++
			fmt.Fprintf(os.Stderr, "%s %s saved to %s\n", color.GreenString("✓"), key, path)
		}

		fmt.Fprintf(os.Stderr, "\nExported %d of %d tickets", exported, len(keys))
		if failed > 0 {
			fmt.Fprintf(os.Stderr, " (%d failed)", failed)
		}
		fmt.Fprintln(os.Stderr)
		if (bulkImages || appConfig.Images.Download) && exported > 0 {
			localizeImages(e.writer.Dir())
		}
		if failed > 0 {
			return fmt.Errorf("%d tickets failed to export", failed)
		}
		return nil
	},
}

// collectKeys merges argument keys with the optional key file, dropping
// duplicates while keeping first-seen order.
func collectKeys(args []string, file string) ([]string, error) {
	var keys []string
	seen := map[string]bool{}
	add := func(raw string) {
		key := strings.ToUpper(strings.TrimSpace(raw))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	for _, arg := range args {
		add(arg)
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("opening key file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			add(line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
	}
	return keys, nil
}

func init() {
	bulkCmd.Flags().StringVar(&bulkOutputDir, "output-dir", "", "write output to this directory instead of the configured one")
	bulkCmd.Flags().BoolVar(&bulkOverwrite, "overwrite", false, "replace existing files")
	bulkCmd.Flags().StringVar(&bulkFile, "file", "", "file with ticket keys, one per line")
	bulkCmd.Flags().BoolVar(&bulkImages, "download-images", false, "download referenced images after exporting")
	rootCmd.AddCommand(bulkCmd)
}
