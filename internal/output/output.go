package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tildabook/internal/scrape"
)

const (
	chaptersDir  = "chapters"
	imagesDir    = "images"
	metadataFile = "book.json"
)

// Writer persists chapters, images and run metadata under one output
// directory:
//
//	<dir>/chapters/NNN-slug.md
//	<dir>/images/img-NNNN.<ext>
//	<dir>/book.json
type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	for _, sub := range []string{chaptersDir, imagesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, err
		}
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string { return w.dir }

// WriteChapter stores rendered Markdown keyed by the chapter's local
// identifier.
func (w *Writer) WriteChapter(localID, markdown string) error {
	path := filepath.Join(w.dir, chaptersDir, localID+".md")
	return os.WriteFile(path, []byte(markdown), 0644)
}

// WriteMetadata stores the run record at the output root.
func (w *Writer) WriteMetadata(meta scrape.RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, metadataFile), data, 0644)
}

// Materialize writes image bytes under a name derived from the assigned
// sequential index and returns the identifier chapters reference them by,
// relative to the output root.
func (w *Writer) Materialize(index int, contentType string, data []byte) (string, error) {
	name := fmt.Sprintf("img-%04d%s", index, extensionFor(contentType))
	if err := os.WriteFile(filepath.Join(w.dir, imagesDir, name), data, 0644); err != nil {
		return "", err
	}
	return imagesDir + "/" + name, nil
}

func extensionFor(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".jpg"
	}
}
