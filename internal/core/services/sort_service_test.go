package services

import (
	"testing"
	"time"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

func TestSortAssets(t *testing.T) {
	assets := []domain.PhotoAsset{
		{ID: "b", CreatedAt: day(2023, 5, 1)},
		{ID: "a", CreatedAt: day(2024, 1, 1)},
		{ID: "d"}, // undated
		{ID: "c", CreatedAt: day(2022, 3, 1)},
	}
	sizes := domain.SizeCache{
		"a": {MB: 1.0},
		"b": {MB: 5.0},
		"c": {MB: 3.0, Approximate: true},
	}

	tests := []struct {
		name string
		key  domain.SortKey
		want []string
	}{
		{"date newest first with undated as now", domain.SortByDate, []string{"d", "a", "b", "c"}},
		{"size largest first, unknown as zero", domain.SortBySize, []string{"b", "c", "a", "d"}},
		{"name ascending", domain.SortByName, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortAssets(assets, tt.key, sizes))
			if !equalIDs(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if assets[0].ID != "b" {
		t.Error("input slice must not be reordered")
	}
}

func TestSortAssets_StableOnTies(t *testing.T) {
	same := day(2024, 6, 1)
	assets := []domain.PhotoAsset{
		{ID: "z", CreatedAt: same},
		{ID: "m", CreatedAt: same},
		{ID: "a", CreatedAt: same},
	}

	got := ids(SortAssets(assets, domain.SortByDate, nil))
	if !equalIDs(got, []string{"z", "m", "a"}) {
		t.Errorf("equal keys should keep input order, got %v", got)
	}

	got = ids(SortAssets(assets, domain.SortBySize, domain.SizeCache{}))
	if !equalIDs(got, []string{"z", "m", "a"}) {
		t.Errorf("equal sizes should keep input order, got %v", got)
	}
}

func TestSortAssets_IsPermutation(t *testing.T) {
	var assets []domain.PhotoAsset
	sizes := domain.NewSizeCache()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		id := string(rune('A' + i))
		a := domain.PhotoAsset{ID: id}
		if i%7 != 0 {
			a.CreatedAt = base.Add(time.Duration((i*37)%50) * time.Hour)
		}
		if i%3 != 0 {
			sizes.Set(id, domain.SizeEstimate{MB: float64((i * 13) % 17)})
		}
		assets = append(assets, a)
	}

	for _, key := range domain.AllSortKeys {
		sorted := SortAssets(assets, key, sizes)
		if len(sorted) != len(assets) {
			t.Fatalf("%s: expected %d assets, got %d", key, len(assets), len(sorted))
		}
		seen := make(map[string]int)
		for _, a := range sorted {
			seen[a.ID]++
		}
		for _, a := range assets {
			if seen[a.ID] != 1 {
				t.Errorf("%s: asset %s appears %d times", key, a.ID, seen[a.ID])
			}
		}

		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			switch key {
			case domain.SortBySize:
				if sizes.MB(prev.ID) < sizes.MB(cur.ID) {
					t.Errorf("size order broken at %d", i)
				}
			case domain.SortByName:
				if prev.ID > cur.ID {
					t.Errorf("name order broken at %d", i)
				}
			}
		}
	}
}
