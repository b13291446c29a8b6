package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

// StatsService summarises a library
type StatsService struct {
	library ports.PhotoLibrary
	lister  *ListService
}

// NewStatsService creates a new stats service
func NewStatsService(library ports.PhotoLibrary, lister *ListService) *StatsService {
	return &StatsService{
		library: library,
		lister:  lister,
	}
}

// MonthStats aggregates the assets created in one calendar month
type MonthStats struct {
	Month string // "2006-01"
	Count int
	MB    float64
}

// StatsResponse is the library summary
type StatsResponse struct {
	Library     string
	Count       int
	TotalMB     float64
	AverageMB   float64
	Approximate int // Sizes derived from pixel dimensions
	Undated     int
	Largest     *domain.PhotoAsset
	LargestMB   float64
	ByMonth     []MonthStats // Oldest month first
}

// Execute lists the whole library and aggregates it
func (s *StatsService) Execute(ctx context.Context) (*StatsResponse, error) {
	listing, err := s.lister.Execute(ctx, ListRequest{SortBy: domain.SortByDate})
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	resp := &StatsResponse{
		Library: s.library.Name(),
		Count:   len(listing.Assets),
	}

	months := make(map[string]*MonthStats)
	for i, asset := range listing.Assets {
		size := listing.Sizes[asset.ID]
		resp.TotalMB += size.MB
		if size.Approximate {
			resp.Approximate++
		}
		if resp.Largest == nil || size.MB > resp.LargestMB {
			resp.Largest = &listing.Assets[i]
			resp.LargestMB = size.MB
		}

		if !asset.HasCreationDate() {
			resp.Undated++
			continue
		}
		key := asset.CreatedAt.Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthStats{Month: key}
			months[key] = m
		}
		m.Count++
		m.MB += size.MB
	}

	if resp.Count > 0 {
		resp.AverageMB = resp.TotalMB / float64(resp.Count)
	}

	resp.ByMonth = make([]MonthStats, 0, len(months))
	for _, m := range months {
		resp.ByMonth = append(resp.ByMonth, *m)
	}
	sort.Slice(resp.ByMonth, func(i, j int) bool {
		return resp.ByMonth[i].Month < resp.ByMonth[j].Month
	})

	return resp, nil
}
