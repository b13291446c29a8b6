package domain

import (
	"testing"
	"time"
)

func TestNewPhotoAsset(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		width   int
		height  int
		wantErr bool
	}{
		{"valid asset", "IMG_0001", 4032, 3024, false},
		{"unknown dimensions", "IMG_0002", 0, 0, false},
		{"empty id", "", 10, 10, true},
		{"whitespace id", "   ", 10, 10, true},
		{"negative width", "IMG_0003", -1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, err := NewPhotoAsset(tt.id, "file.jpg", tt.width, tt.height, time.Time{})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if asset.ID != tt.id {
				t.Errorf("expected id %q, got %q", tt.id, asset.ID)
			}
			if asset.Ref != tt.id {
				t.Errorf("expected ref to default to id, got %q", asset.Ref)
			}
		})
	}
}

func TestPhotoAsset_PixelCount(t *testing.T) {
	a := PhotoAsset{ID: "a", Width: 4000, Height: 3000}
	if got := a.PixelCount(); got != 12_000_000 {
		t.Errorf("expected 12000000 pixels, got %d", got)
	}
}

func TestPhotoAsset_Equal(t *testing.T) {
	a := PhotoAsset{ID: "same", Width: 1, Height: 1}
	b := PhotoAsset{ID: "same", Width: 2, Height: 2, Filename: "other.jpg"}
	c := PhotoAsset{ID: "different"}

	if !a.Equal(b) {
		t.Error("assets with the same id should be equal")
	}
	if a.Equal(c) {
		t.Error("assets with different ids should not be equal")
	}
}

func TestPhotoAsset_DisplayHelpers(t *testing.T) {
	dated := PhotoAsset{
		ID:        "x",
		Filename:  "beach.jpg",
		Width:     640,
		Height:    480,
		CreatedAt: time.Date(2024, 7, 14, 10, 0, 0, 0, time.UTC),
	}
	if got := dated.GetDisplayDate(); got != "Jul 14, 2024" {
		t.Errorf("unexpected display date %q", got)
	}
	if got := dated.GetDimensions(); got != "640x480" {
		t.Errorf("unexpected dimensions %q", got)
	}
	if got := dated.DisplayName(); got != "beach.jpg" {
		t.Errorf("unexpected display name %q", got)
	}

	bare := PhotoAsset{ID: "only-id"}
	if bare.HasCreationDate() {
		t.Error("zero time should not count as a creation date")
	}
	if got := bare.GetDisplayDate(); got != "-" {
		t.Errorf("expected '-', got %q", got)
	}
	if got := bare.GetDimensions(); got != "-" {
		t.Errorf("expected '-', got %q", got)
	}
	if got := bare.DisplayName(); got != "only-id" {
		t.Errorf("expected fallback to id, got %q", got)
	}
}

func TestIndexOf(t *testing.T) {
	assets := []PhotoAsset{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if got := IndexOf(assets, "b"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := IndexOf(assets, "z"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
}

func TestRemoveByID(t *testing.T) {
	assets := []PhotoAsset{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, ok := RemoveByID(assets, "b")
	if !ok {
		t.Fatal("expected b to be removed")
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("unexpected result %v", out)
	}
	if len(assets) != 3 || assets[1].ID != "b" {
		t.Error("input slice must not be modified")
	}

	same, ok := RemoveByID(assets, "missing")
	if ok {
		t.Error("removing a missing id should report false")
	}
	if len(same) != 3 {
		t.Errorf("expected 3 assets, got %d", len(same))
	}
}
