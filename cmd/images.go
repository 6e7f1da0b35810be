package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mdtools/jira2md/internal/images"
)

var (
	imagesOutputDir string
	imagesDir       string
	imagesDryRun    bool
)

var imagesCmd = &cobra.Command{
	Use:   "download-images",
	Short: "Download remote images referenced by exported files",
	Long:  `Scans the markdown files in the output directory for remote image references, downloads each image into the images directory, and rewrites the references to relative local paths. Safe to re-run; already-localized images are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		outDir := appConfig.Output.Directory
		if imagesOutputDir != "" {
			outDir = imagesOutputDir
		}
		imgDir := imagesDir
		if imgDir == "" {
			imgDir = appConfig.ImagesDir(outDir)
		}

		d := images.New(outDir, imgDir, newClient(), log)

		if imagesDryRun {
			results, err := d.Scan()
			if err != nil {
				return err
			}
			total := 0
			for _, r := range results {
				if r.Found == 0 {
					continue
				}
				fmt.Printf("%s: %d remote images\n", r.File, r.Found)
				total += r.Found
			}
			fmt.Printf("\n%d images would be downloaded to %s\n", total, imgDir)
			return nil
		}

		results, err := d.ProcessDirectory()
		if err != nil {
			return err
		}

		downloaded, failed := 0, 0
		for _, r := range results {
			downloaded += r.Downloaded
			failed += r.Failed
			for _, msg := range r.Errors {
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", color.RedString("✗"), r.File, msg)
			}
		}
		fmt.Printf("%s Downloaded %d images to %s", color.GreenString("✓"), downloaded, imgDir)
		if failed > 0 {
			fmt.Printf(" (%d failed)", failed)
		}
		fmt.Println()
		if failed > 0 {
			return fmt.Errorf("%d images failed to download", failed)
		}
		return nil
	},
}

// localizeImages runs the image download step over an output directory
// after an export, when the config enables it. Download problems are
// reported without failing the export.
func localizeImages(outDir string) {
	d := images.New(outDir, appConfig.ImagesDir(outDir), newClient(), log)
	results, err := d.ProcessDirectory()
	if err != nil {
		log.Warn("image download skipped", "error", err)
		return
	}
	for _, r := range results {
		for _, msg := range r.Errors {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", color.RedString("✗"), r.File, msg)
		}
	}
}

func init() {
	imagesCmd.Flags().StringVar(&imagesOutputDir, "output-dir", "", "directory containing the markdown files to scan")
	imagesCmd.Flags().StringVar(&imagesDir, "images-dir", "", "directory to save images into (default <output-dir>/images)")
	imagesCmd.Flags().BoolVar(&imagesDryRun, "dry-run", false, "report what would be downloaded without downloading")
	rootCmd.AddCommand(imagesCmd)
}
