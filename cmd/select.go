package cmd

import (
	"errors"
	"fmt"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

// pickAssets lets the user choose photos with a fuzzy finder. Returns nil
// when the user cancels.
func pickAssets(assets []domain.PhotoAsset, sizes domain.SizeCache, multi bool) ([]domain.PhotoAsset, error) {
	if len(assets) == 0 {
		return nil, nil
	}

	label := func(i int) string {
		a := assets[i]
		size, known := sizes[a.ID]
		return fmt.Sprintf("%s  %s  %s", a.DisplayName(), formatDate(a), formatSize(size, known))
	}
	preview := fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
		if i == -1 {
			return ""
		}
		size, known := sizes[assets[i].ID]
		return metadataYAML(assets[i], size, known)
	})

	if !multi {
		idx, err := fuzzyfinder.Find(assets, label, preview)
		if err != nil {
			return nil, cancelledOr(err)
		}
		return []domain.PhotoAsset{assets[idx]}, nil
	}

	idxs, err := fuzzyfinder.FindMulti(assets, label, preview,
		fuzzyfinder.WithHeader("Tab to mark, Enter to confirm"))
	if err != nil {
		return nil, cancelledOr(err)
	}
	picked := make([]domain.PhotoAsset, len(idxs))
	for i, idx := range idxs {
		picked[i] = assets[idx]
	}
	return picked, nil
}

// cancelledOr swallows the fuzzy finder's abort error
func cancelledOr(err error) error {
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return nil
	}
	return err
}

// resolveAssets matches arguments against identifiers, falling back to a
// case-insensitive filename match
func resolveAssets(assets []domain.PhotoAsset, args []string) ([]domain.PhotoAsset, []string) {
	var found []domain.PhotoAsset
	var missing []string

	for _, arg := range args {
		if i := domain.IndexOf(assets, arg); i >= 0 {
			found = append(found, assets[i])
			continue
		}
		matched := false
		for _, a := range assets {
			if strings.EqualFold(a.Filename, arg) {
				found = append(found, a)
				matched = true
				break
			}
		}
		if !matched {
			missing = append(missing, arg)
		}
	}
	return found, missing
}
