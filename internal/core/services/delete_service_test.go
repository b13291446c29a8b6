package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/core/ports/mocks"
)

func TestDeleteGate_FirstDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	prefs := mocks.NewMockPreferenceStore()
	gate := NewDeleteGate(prefs)
	asset := domain.PhotoAsset{ID: "a"}

	if state := gate.Request(ctx, asset); state != domain.DeleteConfirming {
		t.Fatalf("expected confirming, got %s", state)
	}

	got, ok := gate.Confirm(ctx)
	if !ok || got.ID != "a" {
		t.Fatalf("expected to confirm asset a, got %v ok=%v", got, ok)
	}
	if gate.State() != domain.DeleteDeleting {
		t.Errorf("expected deleting, got %s", gate.State())
	}

	confirmed, _ := prefs.GetBool(ctx, ports.PrefDeleteConfirmed)
	if !confirmed {
		t.Error("confirmation should be persisted")
	}

	gate.Finish()
	if gate.State() != domain.DeleteIdle {
		t.Errorf("expected idle after finish, got %s", gate.State())
	}

	if state := gate.Request(ctx, domain.PhotoAsset{ID: "b"}); state != domain.DeleteDeleting {
		t.Errorf("second delete should skip confirmation, got %s", state)
	}
}

func TestDeleteGate_Cancel(t *testing.T) {
	ctx := context.Background()
	prefs := mocks.NewMockPreferenceStore()
	gate := NewDeleteGate(prefs)

	gate.Request(ctx, domain.PhotoAsset{ID: "a"})
	gate.Cancel()

	if gate.State() != domain.DeleteIdle {
		t.Errorf("expected idle after cancel, got %s", gate.State())
	}
	if _, ok := gate.Pending(); ok {
		t.Error("cancel should clear the pending asset")
	}
	if confirmed, _ := prefs.GetBool(ctx, ports.PrefDeleteConfirmed); confirmed {
		t.Error("cancel must not persist confirmation")
	}
	if _, ok := gate.Confirm(ctx); ok {
		t.Error("confirm after cancel should do nothing")
	}
}

func TestDeleteGate_IgnoresRequestWhileBusy(t *testing.T) {
	ctx := context.Background()
	gate := NewDeleteGate(mocks.NewMockPreferenceStore())

	gate.Request(ctx, domain.PhotoAsset{ID: "a"})
	gate.Request(ctx, domain.PhotoAsset{ID: "b"})

	pending, ok := gate.Pending()
	if !ok || pending.ID != "a" {
		t.Errorf("expected a to stay pending, got %v", pending)
	}
}

func TestDeleteGate_PreferenceReadFailure(t *testing.T) {
	ctx := context.Background()
	prefs := mocks.NewMockPreferenceStore()
	prefs.SetShouldFail(errors.New("disk full"))
	gate := NewDeleteGate(prefs)

	if state := gate.Request(ctx, domain.PhotoAsset{ID: "a"}); state != domain.DeleteConfirming {
		t.Errorf("unreadable preference should require confirmation, got %s", state)
	}
	if _, ok := gate.Confirm(ctx); !ok {
		t.Error("confirm should still succeed when the preference cannot be saved")
	}
}

func TestDeleteService_Execute(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*mocks.MockLibrary)
		request     []string
		expectError bool
		remaining   int
	}{
		{
			name:      "delete one",
			setup:     func(lib *mocks.MockLibrary) {},
			request:   []string{"a"},
			remaining: 2,
		},
		{
			name:      "delete batch",
			setup:     func(lib *mocks.MockLibrary) {},
			request:   []string{"a", "c"},
			remaining: 1,
		},
		{
			name: "platform failure leaves library unchanged",
			setup: func(lib *mocks.MockLibrary) {
				lib.SetDeleteError(errors.New("user declined"))
			},
			request:     []string{"a"},
			expectError: true,
			remaining:   3,
		},
		{
			name:        "missing asset",
			setup:       func(lib *mocks.MockLibrary) {},
			request:     []string{"zzz"},
			expectError: true,
			remaining:   3,
		},
		{
			name:      "empty request",
			setup:     func(lib *mocks.MockLibrary) {},
			request:   nil,
			remaining: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := mocks.NewMockLibrary()
			addTestAsset(lib, "a", day(2024, 1, 1), 10, 10, 1)
			addTestAsset(lib, "b", day(2024, 1, 2), 10, 10, 1)
			addTestAsset(lib, "c", day(2024, 1, 3), 10, 10, 1)
			tt.setup(lib)

			var assets []domain.PhotoAsset
			for _, id := range tt.request {
				assets = append(assets, domain.PhotoAsset{ID: id})
			}

			err := NewDeleteService(lib).Execute(context.Background(), DeleteRequest{Assets: assets})
			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if lib.Count() != tt.remaining {
				t.Errorf("expected %d remaining assets, got %d", tt.remaining, lib.Count())
			}
		})
	}
}
