package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
)

func TestCollectKeys(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "keys.txt")
	content := `# sprint 12
proj-1
PROJ-2

proj-1
PROJ-3
`
	if err := os.WriteFile(keyFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		file     string
		expected []string
	}{
		{"args only", []string{"proj-9", "PROJ-9", "PROJ-10"}, "", []string{"PROJ-9", "PROJ-10"}},
		{"file only", nil, keyFile, []string{"PROJ-1", "PROJ-2", "PROJ-3"}},
		{"args before file", []string{"PROJ-2", "PROJ-8"}, keyFile, []string{"PROJ-2", "PROJ-8", "PROJ-1", "PROJ-3"}},
		{"empty", nil, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectKeys(tt.args, tt.file)
			if err != nil {
				t.Fatalf("collectKeys() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("collectKeys(%v, %q) = %v, want %v", tt.args, tt.file, got, tt.expected)
			}
		})
	}
}

func TestCollectKeysMissingFile(t *testing.T) {
	if _, err := collectKeys(nil, filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("collectKeys() = nil error for missing file")
	}
}

func TestExportCommandsOfferImageDownload(t *testing.T) {
	for _, cmd := range []*cobra.Command{fetchCmd, queryCmd, bulkCmd} {
		if cmd.Flags().Lookup("download-images") == nil {
			t.Errorf("%s command has no --download-images flag", cmd.Name())
		}
	}
	if bulkCmd.Flags().Lookup("file") == nil {
		t.Error("bulk command has no --file flag")
	}
}
