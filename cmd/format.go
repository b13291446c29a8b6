package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// assetMetadata is the YAML document shown next to a preview
type assetMetadata struct {
	ID         string `yaml:"id"`
	Filename   string `yaml:"filename,omitempty"`
	MediaType  string `yaml:"media_type,omitempty"`
	Dimensions string `yaml:"dimensions"`
	Megapixels string `yaml:"megapixels"`
	Created    string `yaml:"created"`
	Age        string `yaml:"age,omitempty"`
	Size       string `yaml:"size"`
	Reference  string `yaml:"reference,omitempty"`
}

// metadataYAML renders an asset's details as YAML
func metadataYAML(asset domain.PhotoAsset, size domain.SizeEstimate, known bool) string {
	meta := assetMetadata{
		ID:         asset.ID,
		Filename:   asset.Filename,
		MediaType:  asset.MediaType,
		Dimensions: asset.GetDimensions(),
		Megapixels: fmt.Sprintf("%.1f", float64(asset.PixelCount())/1e6),
		Created:    "unknown",
		Size:       "calculating",
		Reference:  asset.Ref,
	}
	if asset.HasCreationDate() {
		meta.Created = asset.CreatedAt.Format(time.RFC3339)
		meta.Age = formatRelativeTime(asset.CreatedAt)
	}
	if known {
		meta.Size = size.String()
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return asset.ID
	}
	return string(data)
}

// highlightYAML applies syntax highlighting to YAML content
func highlightYAML(content, styleName string) string {
	lexer := lexers.Get("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.TTY16m

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}

	return buf.String()
}

// renderMetadata returns the metadata block, highlighted when enabled
func renderMetadata(asset domain.PhotoAsset, size domain.SizeEstimate, known bool) string {
	doc := metadataYAML(asset, size, known)
	if appConfig != nil && !appConfig.SyntaxHighlighting {
		return doc
	}
	style := "monokai"
	if appConfig != nil && appConfig.HighlightStyle != "" {
		style = appConfig.HighlightStyle
	}
	return highlightYAML(doc, style)
}

// formatDate renders a creation date with the configured layout
func formatDate(asset domain.PhotoAsset) string {
	if !asset.HasCreationDate() {
		return "undated"
	}
	layout := "Jan 02, 2006"
	if appConfig != nil && appConfig.DisplayDateFormat != "" {
		layout = appConfig.DisplayDateFormat
	}
	return asset.CreatedAt.Format(layout)
}

// formatRelativeTime renders how long ago a photo was taken
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	return humanize.Time(t)
}

// formatBytes renders a byte count the way file managers do
func formatBytes(n int64) string {
	if n < 0 {
		return "?"
	}
	return humanize.IBytes(uint64(n))
}

// formatSize renders a size cache entry, or a placeholder while unknown
func formatSize(size domain.SizeEstimate, known bool) string {
	if !known {
		return "…"
	}
	return size.String()
}

// truncate shortens s to width display cells
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func padRight(s string, width int) string {
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}
