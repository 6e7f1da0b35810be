package writer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteTicket(t *testing.T) {
	w, err := New(t.TempDir(), false, "")
	if err != nil {
		t.Fatal(err)
	}

	path, err := w.WriteTicket("PROJ-1", "# hello\n", Meta{})
	if err != nil {
		t.Fatalf("WriteTicket() error: %v", err)
	}
	if filepath.Base(path) != "PROJ-1.md" {
		t.Errorf("path = %q, want PROJ-1.md", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# hello\n" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteTicketRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteTicket("PROJ-2", "first\n", Meta{}); err != nil {
		t.Fatal(err)
	}

	path, err := w.WriteTicket("PROJ-2", "second\n", Meta{})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("WriteTicket() error = %v, want ErrExists", err)
	}
	if filepath.Base(path) != "PROJ-2.md" {
		t.Errorf("skipped path = %q", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "first\n" {
		t.Errorf("file changed without overwrite: %q", data)
	}

	ow, err := New(dir, true, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ow.WriteTicket("PROJ-2", "second\n", Meta{}); err != nil {
		t.Fatalf("overwrite write failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second\n" {
		t.Errorf("overwrite did not replace content: %q", data)
	}
}

func TestFilenameTemplate(t *testing.T) {
	meta := Meta{
		Summary: "Fix: login/logout",
		Created: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Updated: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{"default", "", "PROJ-7.md"},
		{"key and summary", "{key} {summary}.md", "PROJ-7 Fix_ login_logout.md"},
		{"dates", "{created}-{key}.md", "20240301-PROJ-7.md"},
		{"updated", "{key}-{updated}.md", "PROJ-7-20240305.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(t.TempDir(), false, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if got := w.Filename("PROJ-7", meta); got != tt.expected {
				t.Errorf("Filename() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean", "PROJ-1.md", "PROJ-1.md"},
		{"illegal chars", `a<b>c:d"e/f\g|h?i*j.md`, "a_b_c_d_e_f_g_h_i_j.md"},
		{"trimmed dots and spaces", " .name.md. ", "name.md"},
		{"empty", "", "unnamed.md"},
		{"only illegal", "???", "___"},
		{"only dots and spaces", " .. ", "unnamed.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeCapsLengthKeepingExtension(t *testing.T) {
	long := strings.Repeat("a", 300) + ".md"
	got := Sanitize(long)
	if len(got) > 255 {
		t.Errorf("len = %d, want <= 255", len(got))
	}
	if !strings.HasSuffix(got, ".md") {
		t.Errorf("extension lost: %q", got)
	}
}

func TestExisting(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteTicket("PROJ-1", "x", Meta{}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	files := w.Existing()
	if len(files) != 1 || files[0] != "PROJ-1.md" {
		t.Errorf("Existing() = %v", files)
	}
	if !w.Exists("PROJ-1") {
		t.Error("Exists(PROJ-1) = false")
	}
	if w.Exists("PROJ-2") {
		t.Error("Exists(PROJ-2) = true")
	}
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")
	if err := WriteAtomic(path, "content"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.md" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v", names)
	}
}
