package domain

import (
	"testing"
	"time"
)

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"date", SortByDate, false},
		{"", SortByDate, false},
		{"SIZE", SortBySize, false},
		{"name", SortByName, false},
		{"id", SortByName, false},
		{"colour", SortByDate, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSortKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSortKey_NextCycles(t *testing.T) {
	k := SortByDate
	seen := []SortKey{k}
	for i := 0; i < 3; i++ {
		k = k.Next()
		seen = append(seen, k)
	}
	want := []SortKey{SortByDate, SortBySize, SortByName, SortByDate}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	if _, err := NewDateRange(end, start); err == nil {
		t.Error("expected error when start is after end")
	}

	r, err := NewDateRange(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Contains(start) || !r.Contains(end) {
		t.Error("range bounds should be inclusive")
	}
	if r.Contains(end.Add(time.Second)) {
		t.Error("time after end should not match")
	}
	if r.Contains(time.Time{}) {
		t.Error("undated assets should not match a range")
	}
}

func TestOrderByCreation(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	assets := []PhotoAsset{
		{ID: "undated"},
		{ID: "old", CreatedAt: day(1)},
		{ID: "new", CreatedAt: day(20)},
		{ID: "mid-b", CreatedAt: day(10)},
		{ID: "mid-a", CreatedAt: day(10)},
	}

	OrderByCreation(assets)

	want := []string{"new", "mid-a", "mid-b", "old", "undated"}
	for i, id := range want {
		if assets[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, assets[i].ID, id)
		}
	}
}
