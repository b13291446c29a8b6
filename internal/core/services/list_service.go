package services

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

// ListService loads a whole library page by page for the non-interactive commands
type ListService struct {
	library   ports.PhotoLibrary
	estimator *SizeEstimator
	pageSize  int
}

// NewListService creates a new list service
func NewListService(library ports.PhotoLibrary, estimator *SizeEstimator, pageSize int) *ListService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &ListService{
		library:   library,
		estimator: estimator,
		pageSize:  pageSize,
	}
}

// ListRequest represents a request to list assets
type ListRequest struct {
	Range     *domain.DateRange // Optional creation-date filter
	MinSizeMB float64           // Drop assets smaller than this
	Query     string            // Fuzzy filename filter (optional)
	SortBy    domain.SortKey
	Reverse   bool // Reverse sort order
	Limit     int  // 0 means no limit
}

// ListResponse represents the response from listing assets
type ListResponse struct {
	Assets []domain.PhotoAsset
	Sizes  domain.SizeCache
	Total  int // Assets in the library matching Range, before size/query/limit
}

// Execute authorizes, pages through the fetch result, sizes every asset
// and applies filtering and sorting
func (s *ListService) Execute(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if err := s.library.Authorize(ctx); err != nil {
		return nil, err
	}

	result, err := s.library.Fetch(ctx, domain.FetchOptions{Range: req.Range})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}

	assets, err := s.readAll(ctx, result)
	if err != nil {
		return nil, err
	}
	total := len(assets)

	sizes := s.estimator.EstimateAll(ctx, assets)

	if req.MinSizeMB > 0 {
		kept := assets[:0:0]
		for _, a := range assets {
			if sizes.MB(a.ID) >= req.MinSizeMB {
				kept = append(kept, a)
			}
		}
		assets = kept
	}

	if strings.TrimSpace(req.Query) != "" {
		assets = fuzzySearch(assets, req.Query)
	} else {
		assets = SortAssets(assets, req.SortBy, sizes)
		if req.Reverse {
			for i, j := 0, len(assets)-1; i < j; i, j = i+1, j-1 {
				assets[i], assets[j] = assets[j], assets[i]
			}
		}
	}

	if req.Limit > 0 && len(assets) > req.Limit {
		assets = assets[:req.Limit]
	}

	return &ListResponse{
		Assets: assets,
		Sizes:  sizes,
		Total:  total,
	}, nil
}

// readAll drains the handle through a page cursor
func (s *ListService) readAll(ctx context.Context, result ports.FetchResult) ([]domain.PhotoAsset, error) {
	cursor := domain.NewPageCursor(s.pageSize)
	cursor.Reset(result.Count())

	assets := make([]domain.PhotoAsset, 0, result.Count())
	for {
		start, end, ok := cursor.Next()
		if !ok {
			return assets, nil
		}

		page, err := result.Assets(ctx, start, end)
		if err != nil {
			cursor.Abort()
			return nil, fmt.Errorf("failed to read assets %d-%d: %w", start, end, err)
		}
		assets = append(assets, page...)
		cursor.Advance(end)
	}
}

type scoredAsset struct {
	asset domain.PhotoAsset
	score int
}

// fuzzySearch keeps the assets whose name, identifier or capture date
// match query, best match first
func fuzzySearch(assets []domain.PhotoAsset, query string) []domain.PhotoAsset {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return assets
	}

	var scored []scoredAsset
	for _, asset := range assets {
		best := nameScore(asset.DisplayName(), query)
		if asset.ID != asset.DisplayName() {
			best = max(best, nameScore(asset.ID, query)/2)
		}
		if asset.HasCreationDate() && strings.HasPrefix(asset.CreatedAt.Format("2006-01-02"), query) {
			best = max(best, dateScore)
		}
		if best > 0 {
			scored = append(scored, scoredAsset{asset: asset, score: best})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	result := make([]domain.PhotoAsset, len(scored))
	for i, m := range scored {
		result[i] = m.asset
	}
	return result
}

// Score bands, best first. Within a band shorter names rank higher.
const (
	exactScore       = 5000
	prefixScore      = 4000
	tokenPrefixScore = 3000
	dateScore        = 2500
	containsScore    = 2000
	sequenceScore    = 1000
)

// nameScore ranks how well a lower-cased query matches a file name such as
// "IMG_2041.HEIC" or "beach-sunset.jpg". The extension is ignored unless
// the query names it. Returns 0 for no match.
func nameScore(name, query string) int {
	name = strings.ToLower(name)
	if name == "" {
		return 0
	}
	stem := strings.TrimSuffix(name, path.Ext(name))
	if strings.Contains(query, ".") {
		stem = name
	}

	// shorter names win ties inside a band
	bonus := max(0, 500-len(stem))

	switch {
	case stem == query:
		return exactScore
	case strings.HasPrefix(stem, query):
		return prefixScore + bonus
	case hasTokenPrefix(stem, query):
		return tokenPrefixScore + bonus
	case strings.Contains(stem, query):
		return containsScore + bonus
	case isSubsequence(stem, query):
		return sequenceScore + bonus
	}
	return 0
}

// hasTokenPrefix reports whether a word of name starts with query. Camera
// names split on separators and at letter/digit changes: "img_2041" has
// the words "img" and "2041", "dsc0042" has "dsc" and "0042".
func hasTokenPrefix(name, query string) bool {
	for _, token := range nameTokens(name) {
		if strings.HasPrefix(token, query) {
			return true
		}
	}
	return false
}

func nameTokens(name string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(current) > 0 && unicode.IsDigit(r) != unicode.IsDigit(current[len(current)-1]) {
			flush()
		}
		current = append(current, r)
	}
	flush()
	return tokens
}

// isSubsequence reports whether every rune of query appears in name in order
func isSubsequence(name, query string) bool {
	q := []rune(query)
	i := 0
	for _, r := range name {
		if i < len(q) && r == q[i] {
			i++
		}
	}
	return i == len(q)
}
