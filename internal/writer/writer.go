// Package writer owns filename derivation and disk persistence for
// exported Markdown documents.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// illegalChars matches characters rejected by at least one common
// filesystem.
var illegalChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const maxFilenameLen = 255

// Writer writes markdown files into an output directory.
type Writer struct {
	dir            string
	overwrite      bool
	filenameFormat string
}

// New creates a Writer, creating the output directory if needed.
// filenameFormat supports {key}, {summary}, {created} and {updated}
// placeholders; empty means "{key}.md".
func New(dir string, overwrite bool, filenameFormat string) (*Writer, error) {
	if filenameFormat == "" {
		filenameFormat = "{key}.md"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &Writer{
		dir:            dir,
		overwrite:      overwrite,
		filenameFormat: filenameFormat,
	}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Meta carries the ticket fields available to the filename template.
type Meta struct {
	Summary string
	Created time.Time
	Updated time.Time
}

// WriteTicket writes markdown content for the given ticket key,
// returning the path written. Existing files are left alone unless the
// writer was created with overwrite; the skipped path is returned with
// ErrExists so callers can report it.
func (w *Writer) WriteTicket(key, content string, meta Meta) (string, error) {
	path := filepath.Join(w.dir, w.Filename(key, meta))

	if !w.overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, ErrExists
		}
	}

	if err := WriteAtomic(path, content); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ErrExists is returned when a file already exists and overwrite is
// disabled.
var ErrExists = fmt.Errorf("file already exists")

// Filename renders the filename template for a ticket key.
func (w *Writer) Filename(key string, meta Meta) string {
	pairs := []string{
		"{key}", key,
		"{summary}", meta.Summary,
	}
	if !meta.Created.IsZero() {
		pairs = append(pairs, "{created}", meta.Created.Format("20060102"))
	} else {
		pairs = append(pairs, "{created}", "")
	}
	if !meta.Updated.IsZero() {
		pairs = append(pairs, "{updated}", meta.Updated.Format("20060102"))
	} else {
		pairs = append(pairs, "{updated}", "")
	}

	name := strings.NewReplacer(pairs...).Replace(w.filenameFormat)
	return Sanitize(name)
}

// Exists reports whether a file for the ticket key is already present.
func (w *Writer) Exists(key string) bool {
	_, err := os.Stat(filepath.Join(w.dir, w.Filename(key, Meta{})))
	return err == nil
}

// Existing lists the markdown files already in the output directory.
func (w *Writer) Existing() []string {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	return files
}

// Sanitize makes a filename safe across filesystems: illegal characters
// become underscores, leading/trailing dots and spaces are trimmed, and
// the name is capped at 255 bytes keeping the extension.
func Sanitize(name string) string {
	name = illegalChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")

	if len(name) > maxFilenameLen {
		ext := filepath.Ext(name)
		base := name[:len(name)-len(ext)]
		if cut := maxFilenameLen - len(ext); cut > 0 && cut < len(base) {
			base = base[:cut]
		}
		name = base + ext
	}

	if name == "" {
		name = "unnamed.md"
	}
	return name
}

// WriteAtomic writes content through a temp file in the target
// directory and renames it into place, so readers never observe a
// partial file.
func WriteAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
