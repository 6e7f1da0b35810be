package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var fieldsCustomOnly bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields defined on the JIRA instance",
	Long:  `Lists field IDs and display names known to the JIRA instance. Useful for finding the customfield_XXXXX IDs that show up in exported custom field sections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		client := newClient()
		fields, err := client.Fields()
		if err != nil {
			return fmt.Errorf("listing fields: %w", err)
		}

		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

		shown := 0
		for _, f := range fields {
			if fieldsCustomOnly && !f.Custom {
				continue
			}
			kind := "system"
			if f.Custom {
				kind = "custom"
			}
			fmt.Printf("%-30s %-8s %s\n", f.ID, kind, f.Name)
			shown++
		}
		fmt.Printf("\n%d fields\n", shown)
		return nil
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsCustomOnly, "custom", false, "show only custom fields")
	rootCmd.AddCommand(fieldsCmd)
}
