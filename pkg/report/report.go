package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sbosshardt/cure-contributors/pkg/models"
)

// Format is an output format for a report.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

// Renderer writes summaries to w.
type Renderer interface {
	Render(w io.Writer, summaries []models.MatchSummary) error
}

// ParseFormat validates a configured format. Empty means "decide from the
// output path".
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatText, FormatHTML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q (use 'text', 'html' or 'json')", name)
}

// FormatFromPath picks the format from an output file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".json":
		return FormatJSON
	}
	return FormatText
}

// NewRenderer returns the renderer for format.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case FormatText, "":
		return &ConsoleRenderer{}, nil
	case FormatHTML:
		return NewHTMLRenderer()
	case FormatJSON:
		return &JSONRenderer{Indent: "  "}, nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}
