package services

import (
	"context"
	"fmt"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// DeleteGate is the idle -> confirming -> deleting state machine guarding
// deletions. Once the user confirms a deletion the choice is persisted and
// later requests skip confirmation.
type DeleteGate struct {
	prefs   ports.PreferenceStore
	state   domain.DeleteState
	pending *domain.PhotoAsset
}

// NewDeleteGate creates an idle gate
func NewDeleteGate(prefs ports.PreferenceStore) *DeleteGate {
	return &DeleteGate{prefs: prefs}
}

// Request starts a deletion. It is ignored unless the gate is idle.
func (g *DeleteGate) Request(ctx context.Context, asset domain.PhotoAsset) domain.DeleteState {
	if g.state != domain.DeleteIdle {
		return g.state
	}

	confirmed, err := g.prefs.GetBool(ctx, ports.PrefDeleteConfirmed)
	if err != nil {
		logger.Warn("failed to read delete preference", logger.KeyError, err.Error())
		confirmed = false
	}

	g.pending = &asset
	if confirmed {
		g.state = domain.DeleteDeleting
	} else {
		g.state = domain.DeleteConfirming
	}
	return g.state
}

// Confirm moves a confirming gate to deleting and persists the choice.
// ok is false when there was nothing to confirm.
func (g *DeleteGate) Confirm(ctx context.Context) (asset domain.PhotoAsset, ok bool) {
	if g.state != domain.DeleteConfirming || g.pending == nil {
		return domain.PhotoAsset{}, false
	}

	g.state = domain.DeleteDeleting
	if err := g.prefs.SetBool(ctx, ports.PrefDeleteConfirmed, true); err != nil {
		logger.Warn("failed to persist delete preference", logger.KeyError, err.Error())
	}
	return *g.pending, true
}

// Cancel abandons a pending confirmation
func (g *DeleteGate) Cancel() {
	if g.state != domain.DeleteConfirming {
		return
	}
	g.state = domain.DeleteIdle
	g.pending = nil
}

// Finish returns the gate to idle after a deletion attempt
func (g *DeleteGate) Finish() {
	g.state = domain.DeleteIdle
	g.pending = nil
}

// State returns the current state
func (g *DeleteGate) State() domain.DeleteState {
	return g.state
}

// Pending returns the asset awaiting confirmation or deletion
func (g *DeleteGate) Pending() (domain.PhotoAsset, bool) {
	if g.pending == nil {
		return domain.PhotoAsset{}, false
	}
	return *g.pending, true
}

// DeleteService removes assets from the library
type DeleteService struct {
	library ports.PhotoLibrary
}

// NewDeleteService creates a new delete service
func NewDeleteService(library ports.PhotoLibrary) *DeleteService {
	return &DeleteService{
		library: library,
	}
}

// DeleteRequest represents a request to delete assets
type DeleteRequest struct {
	Assets []domain.PhotoAsset
}

// Execute deletes the assets in one batch. Failures are logged and returned.
func (s *DeleteService) Execute(ctx context.Context, req DeleteRequest) error {
	if len(req.Assets) == 0 {
		return nil
	}

	if err := s.library.Delete(ctx, req.Assets); err != nil {
		logger.Error("delete failed",
			logger.KeyLibrary, s.library.Name(),
			logger.KeyCount, len(req.Assets),
			logger.KeyError, err.Error())
		return fmt.Errorf("failed to delete %d asset(s): %w", len(req.Assets), err)
	}

	logger.Info("deleted assets", logger.KeyLibrary, s.library.Name(), logger.KeyCount, len(req.Assets))
	return nil
}
