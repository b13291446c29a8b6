package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// RenderImage draws img as text using upper half blocks: each cell shows
// two vertical pixels, the top as foreground and the bottom as background.
// Callers scale the image first; one pixel column maps to one cell.
func RenderImage(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	if b.Empty() {
		return ""
	}

	var builder strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(hexColor(img.At(x, y+1)))
			}
			builder.WriteString(style.Render(halfBlock))
		}
		if y+2 < b.Max.Y {
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// Placeholder fills a cell-sized box for an image that has not loaded
func Placeholder(width, height int, label string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		StyleMuted.Render(label),
		lipgloss.WithWhitespaceChars("·"),
		lipgloss.WithWhitespaceForeground(ColorMuted),
	)
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
