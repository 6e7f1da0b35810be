// Package images post-processes exported markdown files: it finds
// remote image references, downloads them next to the documents, and
// rewrites the references to relative local paths. Re-running it
// retries previously failed downloads.
package images

import (
	"crypto/md5"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/mdtools/jira2md/internal/logging"
	"github.com/mdtools/jira2md/internal/writer"
)

// MaxImageSize caps a single download at 50 MiB.
const MaxImageSize = 50 * 1024 * 1024

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true, ".ico": true,
}

var ticketKeyRe = regexp.MustCompile(`^([A-Z][A-Z0-9]*-\d+)`)

// Fetcher downloads a URL, handling any authentication the host
// requires. The jira client satisfies this.
type Fetcher interface {
	Download(url string) (io.ReadCloser, error)
}

// ImageRef is an image reference found in a markdown document.
type ImageRef struct {
	Alt string
	URL string
}

// FileResult summarizes processing of a single markdown file.
type FileResult struct {
	File       string
	TicketKey  string
	Found      int
	Downloaded int
	Skipped    int
	Failed     int
	Errors     []string
}

// Downloader scans markdown files and localizes their images.
type Downloader struct {
	outputDir string
	imagesDir string
	fetcher   Fetcher
	log       logging.Logger

	downloaded map[string]string // url -> local path
}

// New creates a Downloader that scans outputDir and saves into
// imagesDir.
func New(outputDir, imagesDir string, fetcher Fetcher, log logging.Logger) *Downloader {
	return &Downloader{
		outputDir:  outputDir,
		imagesDir:  imagesDir,
		fetcher:    fetcher,
		log:        log,
		downloaded: map[string]string{},
	}
}

// ProcessDirectory processes every markdown file in the output
// directory, in name order for stable reporting.
func (d *Downloader) ProcessDirectory() ([]FileResult, error) {
	files, err := d.markdownFiles()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(d.imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("creating images directory: %w", err)
	}

	d.log.Info("processing markdown files", "count", len(files))

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		results = append(results, d.ProcessFile(file))
	}
	return results, nil
}

// Scan reports how many remote images each markdown file references
// without downloading anything (dry-run support).
func (d *Downloader) Scan() ([]FileResult, error) {
	files, err := d.markdownFiles()
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(files))
	for _, file := range files {
		result := FileResult{File: filepath.Base(file)}
		content, err := os.ReadFile(file)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			results = append(results, result)
			continue
		}
		for _, img := range FindImages(content) {
			if isRemote(img.URL) {
				result.Found++
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// ProcessFile downloads the remote images of one markdown file and
// rewrites their references.
func (d *Downloader) ProcessFile(file string) FileResult {
	name := filepath.Base(file)
	key := ticketKey(name)
	result := FileResult{File: name, TicketKey: key}

	raw, err := os.ReadFile(file)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("reading file: %v", err))
		return result
	}

	content := string(raw)
	updated := content

	for _, img := range FindImages(raw) {
		if !isRemote(img.URL) {
			result.Skipped++
			continue
		}
		result.Found++

		local, ok := d.downloaded[img.URL]
		if !ok {
			local = filepath.Join(d.imagesDir, d.localFilename(key, img))
			if err := d.download(img.URL, local); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", img.URL, err))
				d.log.Warn("image download failed", "url", img.URL, "error", err)
				continue
			}
			d.downloaded[img.URL] = local
			d.log.Info("downloaded image", "file", filepath.Base(local))
		}

		rel, err := filepath.Rel(filepath.Dir(file), local)
		if err != nil {
			rel = local
		}
		old := fmt.Sprintf("![%s](%s)", img.Alt, img.URL)
		updated = strings.Replace(updated, old, fmt.Sprintf("![%s](%s)", img.Alt, rel), 1)
		result.Downloaded++
	}

	if updated != content {
		if err := writer.WriteAtomic(file, updated); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("rewriting file: %v", err))
		}
	}
	return result
}

// FindImages extracts image references from markdown by walking the
// goldmark AST.
func FindImages(source []byte) []ImageRef {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var refs []ImageRef
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			refs = append(refs, ImageRef{
				Alt: string(img.Text(source)),
				URL: string(img.Destination),
			})
		}
		return ast.WalkContinue, nil
	})
	return refs
}

func (d *Downloader) markdownFiles() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(d.outputDir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", d.outputDir, err)
	}
	sort.Strings(files)
	return files, nil
}

func (d *Downloader) download(rawURL, local string) error {
	body, err := d.fetcher.Download(rawURL)
	if err != nil {
		return err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(d.imagesDir, "."+filepath.Base(local)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(body, MaxImageSize+1))
	if err == nil && n > MaxImageSize {
		err = fmt.Errorf("image exceeds %d byte limit", MaxImageSize)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, local); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// localFilename derives a unique local name: {ticket-key}-{basename},
// falling back to a URL hash when the URL carries no usable name.
func (d *Downloader) localFilename(key string, img ImageRef) string {
	name := ""
	if u, err := url.Parse(img.URL); err == nil {
		name = path.Base(u.Path)
	}
	if !hasImageExtension(name) {
		if hasImageExtension(img.Alt) {
			name = img.Alt
		} else {
			sum := md5.Sum([]byte(img.URL))
			name = fmt.Sprintf("image-%x.png", sum[:4])
		}
	}
	name = writer.Sanitize(name)
	if key != "" {
		name = key + "-" + name
	}

	// Avoid clobbering a different image that landed on the same name.
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	final := name
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(d.imagesDir, final)); os.IsNotExist(err) {
			break
		}
		final = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
	return final
}

func hasImageExtension(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

func isRemote(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// ticketKey extracts the ticket key prefix from a markdown filename
// such as PROJ-123.md or "PROJ-123 Title.md".
func ticketKey(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if m := ticketKeyRe.FindStringSubmatch(stem); m != nil {
		return m[1]
	}
	return stem
}
