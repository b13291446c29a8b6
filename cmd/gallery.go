package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/library/local"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/viewmodel"
	"github.com/kamal-hamza/px-cli/internal/logger"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	galleryWatch  bool
	gallerySortBy string
	galleryList   bool
)

// galleryCmd represents the gallery command
var galleryCmd = &cobra.Command{
	Use:     "gallery",
	Aliases: []string{"g", "ui"},
	Short:   "Browse the library interactively (default command)",
	Long: `Launch a full-screen gallery of the photo library.

Photos load a page at a time as you scroll; sizes are calculated in the
background and fill in as they arrive.

Keyboard Shortcuts:
  Navigation:
    ←↑↓→ / hjkl  Move selection
    g / G        Jump to first / last loaded photo
    Enter        Full-screen preview

  Actions:
    s            Cycle sort (date, size, name)
    f            Filter by date range and minimum size
    d            Delete photo (asks the first time)
    y            Copy the photo reference to the clipboard
    r            Reload the library
    v            Toggle grid / list layout

  General:
    Esc          Clear filter / close dialog
    ?            Show help
    q / Ctrl+C   Quit`,
	RunE: runGallery,
}

func init() {
	addGalleryFlags(galleryCmd)
}

func addGalleryFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&galleryWatch, "watch", "w", false, "Reload when the library directory changes (local library)")
	cmd.Flags().StringVarP(&gallerySortBy, "sort", "s", "", "Initial sort (date, size, name)")
	cmd.Flags().BoolVar(&galleryList, "list", false, "Start in list layout")
}

func runGallery(cmd *cobra.Command, args []string) error {
	sortKey := defaultSortKey()
	if gallerySortBy != "" {
		key, err := domain.ParseSortKey(gallerySortBy)
		if err != nil {
			return err
		}
		sortKey = key
	}

	photos := viewmodel.New(viewmodel.Deps{
		Library:   photoLibrary,
		Estimator: sizeEstimator,
		Filter:    filterService,
		Deleter:   deleteService,
		Gate:      newDeleteGate(),
		PageSize:  appConfig.PageSize,
		SortKey:   sortKey,
	})
	defer photos.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var watcher *local.Watcher
	if galleryWatch {
		if appConfig.Library != "local" {
			return fmt.Errorf("--watch needs the local library, not %s", appConfig.Library)
		}
		w, err := local.NewWatcher(appConfig.Local.Path, time.Duration(appConfig.WatchDebounceMS)*time.Millisecond)
		if err != nil {
			return err
		}
		defer w.Close()
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("watcher stopped", logger.KeyError, err.Error())
			}
		}()
		watcher = w
	}

	m := newGalleryModel(photos, galleryOptions{
		thumbWidth: appConfig.ThumbnailWidth,
		list:       galleryList,
		watcher:    watcher,
	})

	// Run the TUI
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running gallery: %w", err)
	}

	return nil
}

// Gallery view modes
type galleryMode int

const (
	modeBrowse galleryMode = iota
	modeFilter
	modeConfirmDelete
	modePreview
	modeHelp
)

// Rows taken by the header and footer
const galleryChrome = 6

// Filter form fields
const (
	fieldFrom = iota
	fieldTo
	fieldMinSize
	fieldCount
)

type galleryOptions struct {
	thumbWidth int
	list       bool
	watcher    *local.Watcher
}

// Gallery model
type galleryModel struct {
	photos  *viewmodel.Photos
	watcher *local.Watcher

	mode       galleryMode
	listLayout bool
	cursor     int // Selected index in the sorted list
	offset     int // First visible index
	thumbWidth int

	filterInputs []textinput.Model
	filterFocus  int
	filterErr    string

	preview viewport.Model
	spinner spinner.Model
	help    help.Model
	keys    galleryKeyMap

	width  int
	height int
	ready  bool

	message       string // Transient status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time
}

// Key bindings
type galleryKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Preview key.Binding
	Sort    key.Binding
	Filter  key.Binding
	Delete  key.Binding
	Copy    key.Binding
	Reload  key.Binding
	Layout  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
}

func (k galleryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Preview, k.Sort, k.Filter, k.Delete, k.Layout, k.Help, k.Quit}
}

func (k galleryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Top, k.Bottom},
		{k.Preview, k.Sort, k.Filter, k.Delete, k.Copy, k.Reload},
		{k.Layout, k.Escape, k.Help, k.Quit},
	}
}

var galleryKeys = galleryKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last"),
	),
	Preview: key.NewBinding(
		key.WithKeys("enter", "o"),
		key.WithHelp("enter", "preview"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f", "/"),
		key.WithHelp("f", "filter"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "x", "delete"),
		key.WithHelp("d", "delete"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy ref"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Layout: key.NewBinding(
		key.WithKeys("v", "tab"),
		key.WithHelp("v", "grid/list"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back / clear filter"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
}

// Messages owned by the gallery

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type libraryChangedMsg struct {
	change local.Change
}

func newGalleryModel(photos *viewmodel.Photos, opts galleryOptions) galleryModel {
	thumbWidth := opts.thumbWidth
	if thumbWidth < 4 {
		thumbWidth = 16
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 16
		ti.Width = 16
		inputs[i] = ti
	}
	inputs[fieldFrom].Placeholder = "YYYY-MM-DD"
	inputs[fieldFrom].Prompt = "From      "
	inputs[fieldTo].Placeholder = "today"
	inputs[fieldTo].Prompt = "To        "
	inputs[fieldMinSize].Placeholder = "0 MB"
	inputs[fieldMinSize].Prompt = "Min size  "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = ui.StylePrimary

	vp := viewport.New(40, 10)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	return galleryModel{
		photos:       photos,
		watcher:      opts.watcher,
		mode:         modeBrowse,
		listLayout:   opts.list,
		thumbWidth:   thumbWidth,
		filterInputs: inputs,
		preview:      vp,
		spinner:      sp,
		help:         help.New(),
		keys:         galleryKeys,
	}
}

func (m galleryModel) Init() tea.Cmd {
	return tea.Batch(m.photos.Load(), m.spinner.Tick, m.waitForChange())
}

// waitForChange blocks until the watcher reports a settled change
func (m galleryModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	changes := m.watcher.Changes()
	return func() tea.Msg {
		change, ok := <-changes
		if !ok {
			return nil
		}
		return libraryChangedMsg{change: change}
	}
}

func (m galleryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizePreview()
		return m, m.followUp()

	case tea.KeyMsg:
		var cmd tea.Cmd
		switch m.mode {
		case modeFilter:
			m, cmd = m.updateFilter(msg)
		case modeConfirmDelete:
			m, cmd = m.updateConfirmDelete(msg)
		case modePreview:
			m, cmd = m.updatePreview(msg)
		case modeHelp:
			m, cmd = m.updateHelp(msg)
		default:
			m, cmd = m.updateBrowse(msg)
		}
		return m, tea.Batch(cmd, m.followUp())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = time.Now().Add(3 * time.Second)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearMessageMsg{} })

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case libraryChangedMsg:
		logger.Info("reloading after library change", logger.KeyCount, msg.change.Events)
		m.cursor, m.offset = 0, 0
		return m, tea.Batch(m.photos.Load(), m.waitForChange())
	}

	// Cursor blinks go to the focused filter field
	if m.mode == modeFilter {
		var cmd tea.Cmd
		m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
		if cmd != nil {
			return m, cmd
		}
	}

	// Everything else belongs to the view-model
	cmd := m.photos.Update(msg)
	m.clampCursor()
	if m.mode == modePreview {
		m.refreshPreview()
	}
	return m, tea.Batch(cmd, m.followUp())
}

// followUp requests the next page when the visible area reaches the end of
// the loaded list, and thumbnails for the visible cells
func (m galleryModel) followUp() tea.Cmd {
	if !m.ready {
		return nil
	}
	cmds := []tea.Cmd{m.photos.NearEnd(m.lastVisible())}

	if m.mode == modePreview {
		if asset, ok := m.selected(); ok {
			cmds = append(cmds, m.photos.RequestImage(asset, m.previewRequest()))
		}
	} else if !m.listLayout {
		assets := m.photos.Assets()
		req := m.thumbRequest()
		for i := m.offset; i <= m.lastVisible() && i < len(assets); i++ {
			cmds = append(cmds, m.photos.RequestImage(assets[i], req))
		}
	}
	return tea.Batch(cmds...)
}

func (m galleryModel) updateBrowse(msg tea.KeyMsg) (galleryModel, tea.Cmd) {
	n := m.photos.Len()
	step := m.columns()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-step)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(step)

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.adjustViewport()

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = n - 1
		m.clampCursor()

	case msg.Type == tea.KeyPgDown:
		m.moveCursor(step * m.visibleRows())

	case msg.Type == tea.KeyPgUp:
		m.moveCursor(-step * m.visibleRows())

	case key.Matches(msg, m.keys.Preview):
		if n > 0 {
			m.mode = modePreview
			m.resizePreview()
			m.refreshPreview()
			m.preview.GotoTop()
		}

	case key.Matches(msg, m.keys.Sort):
		selectedID := m.selectedID()
		m.photos.ToggleSort()
		m.reselect(selectedID)
		return m, statusCmd("Sorted by "+m.photos.SortKey().Label(), ui.StyleInfo)

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.filterErr = ""
		m.filterFocus = fieldFrom
		return m, m.focusFilter()

	case key.Matches(msg, m.keys.Delete):
		asset, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.photos.RequestDelete(asset)
		if m.photos.DeleteState() == domain.DeleteConfirming {
			m.mode = modeConfirmDelete
		}
		return m, cmd

	case key.Matches(msg, m.keys.Copy):
		if asset, ok := m.selected(); ok {
			return m, copyReference(asset)
		}

	case key.Matches(msg, m.keys.Reload):
		m.cursor, m.offset = 0, 0
		return m, m.photos.Load()

	case key.Matches(msg, m.keys.Layout):
		m.listLayout = !m.listLayout
		m.adjustViewport()

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp

	case key.Matches(msg, m.keys.Escape):
		if m.photos.Filtered() {
			m.cursor, m.offset = 0, 0
			return m, m.photos.Load()
		}
		m.photos.ClearMessages()
	}

	return m, nil
}

func (m galleryModel) updateFilter(msg tea.KeyMsg) (galleryModel, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.mode = modeBrowse
		m.blurFilter()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		req, err := buildFilterRequest(
			m.filterInputs[fieldFrom].Value(),
			m.filterInputs[fieldTo].Value(),
			m.filterInputs[fieldMinSize].Value(),
			time.Now(),
		)
		if err != nil {
			m.filterErr = err.Error()
			return m, nil
		}
		cmd := m.photos.Filter(req)
		if cmd == nil {
			m.filterErr = m.photos.Err()
			return m, nil
		}
		m.mode = modeBrowse
		m.blurFilter()
		m.cursor, m.offset = 0, 0
		return m, cmd

	case key.Matches(msg, m.keys.Next):
		m.filterFocus = (m.filterFocus + 1) % fieldCount
		return m, m.focusFilter()

	case key.Matches(msg, m.keys.Prev):
		m.filterFocus = (m.filterFocus + fieldCount - 1) % fieldCount
		return m, m.focusFilter()
	}

	var cmd tea.Cmd
	m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
	m.filterErr = ""
	return m, cmd
}

func (m *galleryModel) focusFilter() tea.Cmd {
	for i := range m.filterInputs {
		if i == m.filterFocus {
			m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return textinput.Blink
}

func (m *galleryModel) blurFilter() {
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
}

func (m galleryModel) updateConfirmDelete(msg tea.KeyMsg) (galleryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBrowse
		return m, m.photos.ConfirmDelete()

	case key.Matches(msg, m.keys.Cancel):
		m.photos.CancelDelete()
		m.mode = modeBrowse
	}
	return m, nil
}

func (m galleryModel) updatePreview(msg tea.KeyMsg) (galleryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Preview):
		m.mode = modeBrowse

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		m.refreshPreview()

	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		m.refreshPreview()

	case key.Matches(msg, m.keys.Copy):
		if asset, ok := m.selected(); ok {
			return m, copyReference(asset)
		}

	case key.Matches(msg, m.keys.Delete):
		asset, ok := m.selected()
		if !ok {
			return m, nil
		}
		cmd := m.photos.RequestDelete(asset)
		if m.photos.DeleteState() == domain.DeleteConfirming {
			m.mode = modeConfirmDelete
		}
		return m, cmd

	case msg.Type == tea.KeyPgUp:
		m.preview.ViewUp()

	case msg.Type == tea.KeyPgDown:
		m.preview.ViewDown()
	}
	return m, nil
}

func (m galleryModel) updateHelp(msg tea.KeyMsg) (galleryModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
	}
	return m, nil
}

// copyReference puts the backend reference of an asset on the clipboard
func copyReference(asset domain.PhotoAsset) tea.Cmd {
	return func() tea.Msg {
		ref := asset.Ref
		if ref == "" {
			ref = asset.ID
		}
		if err := clipboard.WriteAll(ref); err != nil {
			return statusMsg{message: "Clipboard unavailable: " + err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: "Copied " + ref, style: ui.StyleSuccess}
	}
}

func statusCmd(message string, style lipgloss.Style) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: message, style: style}
	}
}

// Layout

// cellWidth is the rendered width of one grid cell including its border
func (m galleryModel) cellWidth() int {
	return m.thumbWidth + 2
}

// cellHeight is thumbnail rows plus the label line plus the border
func (m galleryModel) cellHeight() int {
	return m.thumbWidth/2 + 3
}

// columns is the number of items per row
func (m galleryModel) columns() int {
	if m.listLayout || m.width == 0 {
		return 1
	}
	cols := m.width / m.cellWidth()
	if cols < 1 {
		cols = 1
	}
	return cols
}

// visibleRows is the number of rows that fit between header and footer
func (m galleryModel) visibleRows() int {
	avail := m.height - galleryChrome
	if !m.listLayout {
		avail /= m.cellHeight()
	}
	if avail < 1 {
		avail = 1
	}
	return avail
}

func (m galleryModel) lastVisible() int {
	return m.offset + m.columns()*m.visibleRows() - 1
}

func (m galleryModel) thumbRequest() domain.ImageRequest {
	return domain.ImageRequest{Width: m.thumbWidth, Height: m.thumbWidth, Mode: domain.ContentModeFill}
}

// previewRequest fits the image in the left part of the screen
func (m galleryModel) previewRequest() domain.ImageRequest {
	w, h := m.previewImageSize()
	return domain.ImageRequest{Width: w, Height: h * 2, Mode: domain.ContentModeFit}
}

// previewImageSize returns the image area in cells
func (m galleryModel) previewImageSize() (int, int) {
	w := m.width*3/5 - 2
	h := m.height - galleryChrome
	if w < 8 {
		w = 8
	}
	if h < 4 {
		h = 4
	}
	return w, h
}

func (m *galleryModel) resizePreview() {
	imgWidth, h := m.previewImageSize()
	w := m.width - imgWidth - 6
	if w < 20 {
		w = 20
	}
	m.preview.Width = w
	m.preview.Height = h
}

// refreshPreview loads the metadata of the selected asset into the viewport
func (m *galleryModel) refreshPreview() {
	asset, ok := m.selected()
	if !ok {
		m.preview.SetContent("")
		return
	}
	size, known := m.photos.Size(asset.ID)
	m.preview.SetContent(renderMetadata(asset, size, known))
}

// Selection

func (m galleryModel) selected() (domain.PhotoAsset, bool) {
	assets := m.photos.Assets()
	if m.cursor < 0 || m.cursor >= len(assets) {
		return domain.PhotoAsset{}, false
	}
	return assets[m.cursor], true
}

func (m galleryModel) selectedID() string {
	if asset, ok := m.selected(); ok {
		return asset.ID
	}
	return ""
}

// reselect moves the cursor to id after the order changed
func (m *galleryModel) reselect(id string) {
	if id == "" {
		return
	}
	if i := domain.IndexOf(m.photos.Assets(), id); i >= 0 {
		m.cursor = i
	}
	m.adjustViewport()
}

func (m *galleryModel) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *galleryModel) clampCursor() {
	n := m.photos.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustViewport()
}

// adjustViewport scrolls by whole rows so the cursor stays visible
func (m *galleryModel) adjustViewport() {
	cols := m.columns()
	rows := m.visibleRows()
	cursorRow := m.cursor / cols
	firstRow := m.offset / cols

	if cursorRow >= firstRow+rows {
		firstRow = cursorRow - rows + 1
	}
	if cursorRow < firstRow {
		firstRow = cursorRow
	}
	m.offset = firstRow * cols
}

// Views

func (m galleryModel) View() string {
	if !m.ready {
		return "\n  Loading gallery..."
	}

	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeConfirmDelete:
		return m.viewConfirmDelete()
	case modeFilter:
		return m.viewFilter()
	case modePreview:
		return m.viewPreview()
	default:
		return m.viewBrowse()
	}
}

func (m galleryModel) viewBrowse() string {
	var body string
	switch {
	case m.photos.Len() == 0:
		body = m.viewEmpty()
	case m.listLayout:
		body = m.renderList()
	default:
		body = m.renderGrid()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m galleryModel) viewEmpty() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Italic(true).
		Padding(2, 4).
		Height(m.height - galleryChrome)

	switch {
	case m.photos.Loading():
		return emptyStyle.Render(m.spinner.View() + " Loading photos...")
	case m.photos.Err() != "":
		return emptyStyle.Render(ui.StyleError.Render(m.photos.Err()))
	case m.photos.Filtered():
		return emptyStyle.Render("No photos match the filter. Press Esc to clear it.")
	default:
		return emptyStyle.Render("No photos found.")
	}
}

func (m galleryModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statsStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	title := titleStyle.Render(ui.IconPhoto + " PX " + m.photos.LibraryName())

	loaded := fmt.Sprintf("%d photos", m.photos.Len())
	if m.photos.HasMore() {
		loaded = fmt.Sprintf("%d of %d photos", m.photos.Len(), m.photos.Total())
	}
	if m.photos.Filtered() {
		loaded += " (filtered)"
	}
	stats := statsStyle.Render(fmt.Sprintf("%s  sort: %s", loaded, m.photos.SortKey().Label()))

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(stats)
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", spacer), stats) + "\n"
}

func (m galleryModel) renderGrid() string {
	assets := m.photos.Assets()
	cols := m.columns()
	req := m.thumbRequest()

	var rows []string
	for rowStart := m.offset; rowStart < len(assets) && rowStart <= m.lastVisible(); rowStart += cols {
		var cells []string
		for i := rowStart; i < rowStart+cols && i < len(assets); i++ {
			cells = append(cells, m.renderCell(assets[i], req, i == m.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	return lipgloss.NewStyle().Height(m.height - galleryChrome).Render(strings.Join(rows, "\n"))
}

func (m galleryModel) renderCell(asset domain.PhotoAsset, req domain.ImageRequest, selected bool) string {
	var thumb string
	if img, ok := m.photos.Image(asset.ID, req); ok {
		thumb = ui.RenderImage(img)
	} else {
		thumb = ui.Placeholder(m.thumbWidth, m.thumbWidth/2, "…")
	}

	size, known := m.photos.Size(asset.ID)
	label := truncate(asset.DisplayName(), m.thumbWidth)
	if m.photos.SortKey() == domain.SortBySize {
		label = truncate(formatSize(size, known), m.thumbWidth)
	}

	style := ui.StyleCell
	labelStyle := ui.StyleMuted
	if selected {
		style = ui.StyleSelected
		labelStyle = ui.StylePrimary
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(m.thumbWidth).Height(m.thumbWidth/2).Render(thumb),
		labelStyle.Render(padRight(label, m.thumbWidth)),
	)
	return style.Render(content)
}

func (m galleryModel) renderList() string {
	assets := m.photos.Assets()

	var s strings.Builder
	end := m.offset + m.visibleRows()
	if end > len(assets) {
		end = len(assets)
	}

	nameWidth := m.width - 48
	if nameWidth < 16 {
		nameWidth = 16
	}

	for i := m.offset; i < end; i++ {
		asset := assets[i]
		cursor := "  "
		nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
		if i == m.cursor {
			cursor = ui.StylePrimary.Render("▶ ")
			nameStyle = ui.StylePrimary.Bold(true)
		}

		size, known := m.photos.Size(asset.ID)
		line := fmt.Sprintf("%s%s %s %s %s",
			cursor,
			nameStyle.Render(padRight(truncate(asset.DisplayName(), nameWidth), nameWidth)),
			ui.StyleMuted.Render(padRight(formatDate(asset), 14)),
			padRight(asset.GetDimensions(), 11),
			ui.StyleAccent.Render(formatSize(size, known)),
		)
		s.WriteString(line)
		s.WriteString("\n")
	}

	return lipgloss.NewStyle().Height(m.height - galleryChrome).Render(s.String())
}

func (m galleryModel) renderFooter() string {
	var statusLine string
	switch {
	case m.message != "" && time.Now().Before(m.messageExpiry):
		statusLine = m.messageStyle.Render(m.message)
	case m.photos.Err() != "":
		statusLine = ui.StyleError.Render(m.photos.Err())
	case m.photos.DeleteState() == domain.DeleteDeleting:
		statusLine = m.spinner.View() + ui.StyleWarning.Render(" Deleting...")
	case m.photos.Loading():
		statusLine = m.spinner.View() + ui.StyleMuted.Render(" Loading...")
	case m.photos.Status() != "":
		statusLine = ui.StyleInfo.Render(m.photos.Status())
	default:
		statusLine = ui.StyleMuted.Render("Ready")
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		statusLine,
		m.help.ShortHelpView(m.keys.ShortHelp()),
	))
}

func (m galleryModel) viewPreview() string {
	asset, ok := m.selected()
	if !ok {
		return m.viewBrowse()
	}

	w, h := m.previewImageSize()
	var picture string
	if img, ok := m.photos.Image(asset.ID, m.previewRequest()); ok {
		picture = ui.RenderImage(img)
	} else {
		picture = ui.Placeholder(w, h, m.spinner.View()+" rendering")
	}
	left := lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, picture)

	titleStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true)
	right := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(truncate(asset.DisplayName(), m.preview.Width)),
			m.preview.View(),
		))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m galleryModel) viewFilter() string {
	boxStyle := ui.StyleModal.Width(48)

	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true)

	var s strings.Builder
	s.WriteString(titleStyle.Render("Filter photos"))
	s.WriteString("\n\n")
	for i := range m.filterInputs {
		s.WriteString(m.filterInputs[i].View())
		s.WriteString("\n")
	}
	s.WriteString("\n")
	if m.filterErr != "" {
		s.WriteString(ui.StyleError.Render(m.filterErr))
		s.WriteString("\n")
	}
	s.WriteString(ui.StyleMuted.Render("tab next • enter apply • esc cancel"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(s.String()))
}

func (m galleryModel) viewConfirmDelete() string {
	asset, ok := m.photos.PendingDelete()
	if !ok {
		return m.viewBrowse()
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorWarning).
		Bold(true)

	nameStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true)

	size, known := m.photos.Size(asset.ID)
	content := fmt.Sprintf("%s\n\n%s\n%s\n\n%s\n%s",
		titleStyle.Render(ui.IconTrash+"  Delete Photo?"),
		nameStyle.Render(asset.DisplayName()),
		ui.StyleMuted.Render(fmt.Sprintf("%s • %s • %s", formatDate(asset), asset.GetDimensions(), formatSize(size, known))),
		ui.StyleMuted.Render("Later deletions will not ask again."),
		"Press 'y' to confirm, 'n' or ESC to cancel",
	)

	box := ui.StyleModal.Width(60).Align(lipgloss.Center).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m galleryModel) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	h := m.help
	h.ShowAll = true

	var s strings.Builder
	s.WriteString(titleStyle.Render("PX Gallery - Keyboard Shortcuts"))
	s.WriteString("\n\n")
	s.WriteString(lipgloss.NewStyle().Padding(0, 2).Render(h.View(m.keys)))
	s.WriteString("\n\n")
	s.WriteString(ui.StyleMuted.Render("  Press ESC or ? to return to the gallery"))
	s.WriteString("\n")
	return s.String()
}
