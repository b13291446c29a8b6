// Package viewmodel holds the interactive state of the gallery. A Photos
// value is owned by the bubbletea program loop: every mutation happens in
// a trigger method or in Update, both called from the loop. Background
// work runs in the returned tea.Cmd functions and reports back through
// messages tagged with the generation that started it.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"image"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/internal/logger"
)

// nearEndThreshold is how close to the end of the list the selection has
// to be before the next page is requested
const nearEndThreshold = 5

// Deps are the collaborators of the view-model
type Deps struct {
	Library   ports.PhotoLibrary
	Estimator *services.SizeEstimator
	Filter    *services.FilterService
	Deleter   *services.DeleteService
	Gate      *services.DeleteGate
	PageSize  int
	SortKey   domain.SortKey
}

// Photos is the gallery view-model
type Photos struct {
	library   ports.PhotoLibrary
	estimator *services.SizeEstimator
	filter    *services.FilterService
	deleter   *services.DeleteService
	gate      *services.DeleteGate

	assets  []domain.PhotoAsset // fetch order
	sizes   domain.SizeCache
	images  map[string]image.Image
	sortKey domain.SortKey
	loading bool
	err     string
	status  string

	cursor     *domain.PageCursor
	result     ports.FetchResult
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc
	sizing     map[string]bool
	imaging    map[string]bool
	filtered   bool
}

// New creates an empty view-model. Call Load to populate it.
func New(deps Deps) *Photos {
	ctx, cancel := context.WithCancel(context.Background())
	return &Photos{
		library:   deps.Library,
		estimator: deps.Estimator,
		filter:    deps.Filter,
		deleter:   deps.Deleter,
		gate:      deps.Gate,
		sizes:     domain.NewSizeCache(),
		images:    make(map[string]image.Image),
		sortKey:   deps.SortKey,
		cursor:    domain.NewPageCursor(deps.PageSize),
		ctx:       ctx,
		cancel:    cancel,
		sizing:    make(map[string]bool),
		imaging:   make(map[string]bool),
	}
}

// Messages produced by the view-model's commands

type fetchedMsg struct {
	gen    uint64
	result ports.FetchResult
	err    error
}

type pageMsg struct {
	gen    uint64
	end    int
	assets []domain.PhotoAsset
	err    error
}

type sizesMsg struct {
	gen   uint64
	ids   []string
	sizes domain.SizeCache
}

type filteredMsg struct {
	gen  uint64
	resp *services.FilterResponse
	err  error
}

type deletedMsg struct {
	asset domain.PhotoAsset
	err   error
}

type imageMsg struct {
	gen uint64
	key string
	id  string
	img image.Image
	err error
}

// newGeneration cancels outstanding work and starts a fresh epoch
func (p *Photos) newGeneration() (uint64, context.Context) {
	p.cancel()
	p.generation++
	p.ctx, p.cancel = context.WithCancel(context.Background())
	// the cancelled page will never report back
	p.cursor.Abort()
	p.sizing = make(map[string]bool)
	p.imaging = make(map[string]bool)
	return p.generation, p.ctx
}

// Load discards the current list and fetches the library from the start
func (p *Photos) Load() tea.Cmd {
	gen, ctx := p.newGeneration()

	p.assets = nil
	p.sizes = domain.NewSizeCache()
	p.result = nil
	p.cursor.Reset(0)
	p.loading = true
	p.filtered = false
	p.err = ""

	library := p.library
	return func() tea.Msg {
		if err := library.Authorize(ctx); err != nil {
			return fetchedMsg{gen: gen, err: err}
		}
		result, err := library.Fetch(ctx, domain.FetchOptions{})
		return fetchedMsg{gen: gen, result: result, err: err}
	}
}

// FetchNextPage appends the next page. It does nothing while a page is in
// flight or when the handle is exhausted.
func (p *Photos) FetchNextPage() tea.Cmd {
	if p.result == nil {
		return nil
	}
	start, end, ok := p.cursor.Next()
	if !ok {
		return nil
	}

	p.loading = true
	gen, ctx, result := p.generation, p.ctx, p.result
	return func() tea.Msg {
		assets, err := result.Assets(ctx, start, end)
		return pageMsg{gen: gen, end: end, assets: assets, err: err}
	}
}

// NearEnd requests the next page once index is close to the end of the list
func (p *Photos) NearEnd(index int) tea.Cmd {
	if index < len(p.assets)-nearEndThreshold {
		return nil
	}
	return p.FetchNextPage()
}

// Filter re-queries the library for [start, end] and keeps assets of at
// least minMB. An inverted range is rejected without querying.
func (p *Photos) Filter(req services.FilterRequest) tea.Cmd {
	if _, err := req.Validate(); err != nil {
		p.err = err.Error()
		return nil
	}

	gen, ctx := p.newGeneration()
	// Detach the unfiltered handle so no page of it lands in the result
	p.result = nil
	p.cursor.Reset(0)
	p.loading = true
	p.err = ""

	filter := p.filter
	return func() tea.Msg {
		resp, err := filter.Execute(ctx, req)
		return filteredMsg{gen: gen, resp: resp, err: err}
	}
}

// RequestDelete starts deleting asset. The first deletion waits for
// ConfirmDelete; later ones run immediately.
func (p *Photos) RequestDelete(asset domain.PhotoAsset) tea.Cmd {
	if p.gate.State() != domain.DeleteIdle {
		return nil
	}
	if p.gate.Request(p.ctx, asset) == domain.DeleteDeleting {
		return p.deleteCmd(asset)
	}
	return nil
}

// ConfirmDelete runs the pending deletion
func (p *Photos) ConfirmDelete() tea.Cmd {
	asset, ok := p.gate.Confirm(p.ctx)
	if !ok {
		return nil
	}
	return p.deleteCmd(asset)
}

// CancelDelete abandons the pending deletion
func (p *Photos) CancelDelete() {
	p.gate.Cancel()
}

func (p *Photos) deleteCmd(asset domain.PhotoAsset) tea.Cmd {
	deleter := p.deleter
	return func() tea.Msg {
		err := deleter.Execute(context.Background(), services.DeleteRequest{Assets: []domain.PhotoAsset{asset}})
		return deletedMsg{asset: asset, err: err}
	}
}

// ToggleSort cycles date -> size -> name
func (p *Photos) ToggleSort() {
	p.sortKey = p.sortKey.Next()
}

// SetSortKey selects the sort key
func (p *Photos) SetSortKey(key domain.SortKey) {
	p.sortKey = key
}

// RequestImage renders asset at the given size. Requests are keyed by
// asset and size, so a repeated request for a pending or cached image is
// not dispatched again.
func (p *Photos) RequestImage(asset domain.PhotoAsset, req domain.ImageRequest) tea.Cmd {
	key := imageKey(asset.ID, req)
	if _, ok := p.images[key]; ok || p.imaging[key] {
		return nil
	}
	p.imaging[key] = true

	gen, ctx, library := p.generation, p.ctx, p.library
	return func() tea.Msg {
		img, err := library.RequestImage(ctx, asset, req)
		return imageMsg{gen: gen, key: key, id: asset.ID, img: img, err: err}
	}
}

// Image returns a previously rendered image
func (p *Photos) Image(id string, req domain.ImageRequest) (image.Image, bool) {
	img, ok := p.images[imageKey(id, req)]
	return img, ok
}

func imageKey(id string, req domain.ImageRequest) string {
	return fmt.Sprintf("%s@%dx%d/%d", id, req.Width, req.Height, req.Mode)
}

// sizeCmd computes sizes for assets not yet known or in flight
func (p *Photos) sizeCmd(assets []domain.PhotoAsset) tea.Cmd {
	var todo []domain.PhotoAsset
	for _, a := range assets {
		if p.sizes.Has(a.ID) || p.sizing[a.ID] {
			continue
		}
		p.sizing[a.ID] = true
		todo = append(todo, a)
	}
	if len(todo) == 0 {
		return nil
	}

	gen, ctx, estimator := p.generation, p.ctx, p.estimator
	return func() tea.Msg {
		sizes := estimator.EstimateAll(ctx, todo)
		ids := make([]string, len(todo))
		for i, a := range todo {
			ids[i] = a.ID
		}
		return sizesMsg{gen: gen, ids: ids, sizes: sizes}
	}
}

// Update merges a result message into the state. Messages from an older
// generation are dropped.
func (p *Photos) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fetchedMsg:
		if msg.gen != p.generation {
			return nil
		}
		if msg.err != nil {
			p.loading = false
			p.err = describe(msg.err)
			logger.Error("failed to load library",
				logger.KeyLibrary, p.library.Name(), logger.KeyError, msg.err.Error())
			return nil
		}
		p.result = msg.result
		p.cursor.Reset(msg.result.Count())
		p.loading = false
		logger.Info("library loaded",
			logger.KeyLibrary, p.library.Name(),
			logger.KeyCount, msg.result.Count(),
			logger.KeyGeneration, msg.gen)
		return p.FetchNextPage()

	case pageMsg:
		if msg.gen != p.generation {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			p.cursor.Abort()
			if !errors.Is(msg.err, context.Canceled) {
				p.err = describe(msg.err)
				logger.Error("failed to load page",
					logger.KeyPage, p.cursor.Page(), logger.KeyError, msg.err.Error())
			}
			return nil
		}
		p.assets = append(p.assets, msg.assets...)
		p.cursor.Advance(msg.end)
		logger.Debug("page appended",
			logger.KeyPage, p.cursor.Page(), logger.KeyCount, len(p.assets))
		return p.sizeCmd(msg.assets)

	case sizesMsg:
		if msg.gen != p.generation {
			return nil
		}
		for _, id := range msg.ids {
			delete(p.sizing, id)
		}
		for id, est := range msg.sizes {
			p.sizes.Set(id, est)
		}
		return nil

	case filteredMsg:
		if msg.gen != p.generation {
			return nil
		}
		p.loading = false
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				p.err = describe(msg.err)
				logger.Error("filter failed", logger.KeyError, msg.err.Error())
			}
			return nil
		}
		p.assets = msg.resp.Assets
		p.sizes = msg.resp.Sizes
		p.result = nil
		p.cursor.Reset(0)
		p.filtered = true
		p.status = fmt.Sprintf("%d of %d match", len(msg.resp.Assets), msg.resp.Candidates)
		return nil

	case deletedMsg:
		p.gate.Finish()
		if msg.err != nil {
			p.status = "Delete failed: " + describe(msg.err)
			return nil
		}
		if remaining, removed := domain.RemoveByID(p.assets, msg.asset.ID); removed {
			p.assets = remaining
			p.sizes.Delete(msg.asset.ID)
			p.status = "Deleted " + msg.asset.DisplayName()
		}
		return nil

	case imageMsg:
		if msg.gen != p.generation {
			return nil
		}
		delete(p.imaging, msg.key)
		if msg.err != nil {
			if !errors.Is(msg.err, ports.ErrImageUnavailable) && !errors.Is(msg.err, context.Canceled) {
				logger.Warn("image request failed", logger.KeyAsset, msg.id, logger.KeyError, msg.err.Error())
			}
			return nil
		}
		p.images[msg.key] = msg.img
		return nil
	}

	return nil
}

func describe(err error) string {
	if errors.Is(err, ports.ErrAuthorizationDenied) {
		return "Access to the photo library was denied. Check your credentials and reload."
	}
	return err.Error()
}

// Close cancels outstanding background work
func (p *Photos) Close() {
	p.cancel()
}

// Assets returns the list in the current sort order
func (p *Photos) Assets() []domain.PhotoAsset {
	return services.SortAssets(p.assets, p.sortKey, p.sizes)
}

// Len returns the number of loaded assets
func (p *Photos) Len() int { return len(p.assets) }

// Size returns the computed size of an asset
func (p *Photos) Size(id string) (domain.SizeEstimate, bool) {
	est, ok := p.sizes[id]
	return est, ok
}

// Sizes returns a copy of the size cache
func (p *Photos) Sizes() domain.SizeCache {
	out := make(domain.SizeCache, len(p.sizes))
	for k, v := range p.sizes {
		out[k] = v
	}
	return out
}

func (p *Photos) Loading() bool { return p.loading }
func (p *Photos) Err() string { return p.err }
func (p *Photos) Status() string { return p.status }
func (p *Photos) SortKey() domain.SortKey { return p.sortKey }
func (p *Photos) DeleteState() domain.DeleteState { return p.gate.State() }
func (p *Photos) HasMore() bool { return p.cursor.HasMore() }
func (p *Photos) Filtered() bool { return p.filtered }
func (p *Photos) Generation() uint64 { return p.generation }
func (p *Photos) Total() int { return p.cursor.Total() }
func (p *Photos) LibraryName() string { return p.library.Name() }

// PendingDelete returns the asset awaiting confirmation
func (p *Photos) PendingDelete() (domain.PhotoAsset, bool) {
	return p.gate.Pending()
}

// ClearMessages resets the error and status lines
func (p *Photos) ClearMessages() {
	p.err = ""
	p.status = ""
}
