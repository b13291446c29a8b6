package cmd

import (
	"strings"
	"testing"
	"time"
)

func TestBuildFilterRequest(t *testing.T) {
	now := time.Date(2024, 7, 15, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name      string
		from, to  string
		minSize   string
		wantStart time.Time
		wantEnd   time.Time
		wantMB    float64
		wantErr   string
	}{
		{
			name:    "defaults to the end of today",
			wantEnd: time.Date(2024, 7, 15, 23, 59, 59, 999999999, time.Local),
		},
		{
			name:      "inclusive range",
			from:      "2024-06-01",
			to:        "2024-06-30",
			minSize:   "2.5",
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.Local),
			wantMB:    2.5,
		},
		{
			name:      "same day",
			from:      "2024-06-01",
			to:        "2024-06-01",
			minSize:   "512KB",
			wantStart: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
			wantEnd:   time.Date(2024, 6, 1, 23, 59, 59, 999999999, time.Local),
			wantMB:    0.5,
		},
		{
			name:    "start after end",
			from:    "2024-07-01",
			to:      "2024-06-01",
			wantErr: "after end date",
		},
		{
			name:    "bad start",
			from:    "June 1st",
			wantErr: "invalid start date",
		},
		{
			name:    "bad end",
			to:      "2024/06/01",
			wantErr: "invalid end date",
		},
		{
			name:    "negative size",
			minSize: "-1",
			wantErr: "must not be negative",
		},
		{
			name:    "bad size",
			minSize: "lots",
			wantErr: "invalid minimum size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildFilterRequest(tt.from, tt.to, tt.minSize, now)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !req.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", req.Start, tt.wantStart)
			}
			if !req.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", req.End, tt.wantEnd)
			}
			if req.MinSizeMB != tt.wantMB {
				t.Errorf("MinSizeMB = %v, want %v", req.MinSizeMB, tt.wantMB)
			}
		})
	}
}

func TestParseOptionalRange(t *testing.T) {
	r, err := parseOptionalRange("", "")
	if err != nil || r != nil {
		t.Fatalf("expected no range, got %v, %v", r, err)
	}

	r, err = parseOptionalRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Start.Day() != 1 || r.End.Day() != 31 {
		t.Errorf("unexpected range %v - %v", r.Start, r.End)
	}

	if _, err := parseOptionalRange("2024-02-01", "2024-01-01"); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestDescribeFilter(t *testing.T) {
	req, err := buildFilterRequest("2024-06-01", "2024-06-30", "3MB", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := describeFilter(req)
	want := "from 2024-06-01 to 2024-06-30 of at least 3.0 MB"
	if got != want {
		t.Errorf("describeFilter() = %q, want %q", got, want)
	}
}
