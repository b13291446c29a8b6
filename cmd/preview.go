package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	previewNoImage bool
)

var previewCmd = &cobra.Command{
	Use:     "preview [id]",
	Aliases: []string{"show", "p"},
	Short:   "Render a photo and its metadata in the terminal",
	Long: `Render a photo at the size of the terminal, next to its metadata.

Without an argument a fuzzy finder lets you pick the photo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewNoImage, "no-image", false, "Only print the metadata")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx, cancel := getContext()
	defer cancel()

	listResp, err := listService.Execute(ctx, services.ListRequest{SortBy: defaultSortKey()})
	if err != nil {
		return err
	}
	if len(listResp.Assets) == 0 {
		fmt.Println(ui.FormatWarning("No photos found"))
		return nil
	}

	var picked []domain.PhotoAsset
	if len(args) == 0 {
		picked, err = pickAssets(listResp.Assets, listResp.Sizes, false)
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
	} else {
		picked, _ = resolveAssets(listResp.Assets, args)
		if len(picked) == 0 {
			return fmt.Errorf("photo not found: %s", args[0])
		}
	}

	asset := picked[0]
	size, known := listResp.Sizes[asset.ID]
	meta := renderMetadata(asset, size, known)

	if previewNoImage {
		fmt.Println(meta)
		return nil
	}

	width, height := terminalSize()
	req := previewImageRequest(width, height)
	img, err := photoLibrary.RequestImage(ctx, asset, req)
	var art string
	switch {
	case err == nil:
		art = ui.RenderImage(img)
	case errors.Is(err, ports.ErrImageUnavailable):
		art = ui.Placeholder(req.Width, req.Height/2, "no preview")
	default:
		return fmt.Errorf("failed to render %s: %w", asset.DisplayName(), err)
	}

	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, art, "  ", meta))
	return nil
}

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal
func terminalSize() (int, int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80, 24
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// previewImageRequest fits the image in the left part of a width x height
// terminal, leaving room for the metadata column and the prompt
func previewImageRequest(width, height int) domain.ImageRequest {
	w := width*3/5 - 2
	h := height - 2
	if w < 8 {
		w = 8
	}
	if h < 4 {
		h = 4
	}
	return domain.ImageRequest{Width: w, Height: h * 2, Mode: domain.ContentModeFit}
}
