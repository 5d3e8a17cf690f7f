package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nestingglobal/nestview/internal/catalog"
	"github.com/nestingglobal/nestview/internal/favorites"
	"github.com/nestingglobal/nestview/internal/listing"
	"github.com/nestingglobal/nestview/internal/logtail"
	"github.com/nestingglobal/nestview/internal/nestapi"
	"github.com/nestingglobal/nestview/internal/prefs"
	"github.com/nestingglobal/nestview/internal/query"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewDetail
	ViewFavorites
	ViewContacts
	ViewDiagnostics
)

// viewCycle is the tab order. Detail is only reachable from a listing.
var viewCycle = []View{ViewCatalog, ViewFavorites, ViewContacts, ViewDiagnostics}

func (v View) String() string {
	switch v {
	case ViewDetail:
		return "Detail"
	case ViewFavorites:
		return "Favorites"
	case ViewContacts:
		return "Contacts"
	case ViewDiagnostics:
		return "Diagnostics"
	default:
		return "Catalog"
	}
}

// CatalogSource is the part of the catalog store the UI reads.
type CatalogSource interface {
	Snapshot() catalog.Snapshot
	Lookup(id string) (listing.Listing, bool)
	LoadFromRemote(ctx context.Context) error
}

// ContactsAPI is the part of the remote API the UI calls directly.
type ContactsAPI interface {
	FetchContacts(ctx context.Context) ([]nestapi.Contact, error)
	SubmitInquiry(ctx context.Context, in nestapi.Inquiry) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     CatalogSource
	API       ContactsAPI
	Changes   <-chan uint64
	Contacts  <-chan nestapi.Contact
	Favorites *favorites.Tracker
	LogPath   string
	ThemeName string
	PrefsPath string
	Logger    *slog.Logger
	Tick      time.Duration
}

var errNoAPI = errors.New("remote api not configured")

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      CatalogSource
	api        ContactsAPI
	changes    <-chan uint64
	contactsCh <-chan nestapi.Contact
	favs       *favorites.Tracker
	logPath    string
	prefsPath  string
	logger     *slog.Logger
	tick       time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	flash       string
	flashAt     time.Time

	// Data state
	snapshot    catalog.Snapshot
	lastUpdated time.Time
	reloading   bool

	// Catalog state
	spec         query.Spec
	visible      []listing.Listing
	queryErr     error
	selectedRow  int
	searchActive bool
	searchInput  textinput.Model

	// Detail state
	detailID       string
	galleryIdx     int
	similar        []listing.Listing
	detailViewport viewport.Model

	// Favorites state
	favRow int

	// Contacts state
	contacts        []nestapi.Contact
	contactsLoaded  bool
	contactsLoading bool
	contactsErr     error
	contactRow      int

	// Diagnostics state
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logLevel    slog.Level
	logErr      error
	logReadAt   time.Time
	logLoading  bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Defaults().Theme
	}

	favs := opts.Favorites
	if favs == nil {
		favs = &favorites.Tracker{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Placeholder = "Search title or location..."
	ti.CharLimit = 80

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		api:         opts.API,
		changes:     opts.Changes,
		contactsCh:  opts.Contacts,
		favs:        favs,
		logPath:     opts.LogPath,
		prefsPath:   opts.PrefsPath,
		logger:      logger.With("component", "ui"),
		tick:        tick,
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		currentView: ViewCatalog,
		spec:        query.DefaultSpec(),
		visible:     []listing.Listing{},
		searchInput: ti,
		logLevel:    slog.LevelInfo,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChangeCmd(m.store, m.changes))
	}
	if m.contactsCh != nil {
		cmds = append(cmds, waitForContactCmd(m.contactsCh))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
			m.initLogViewport()
		}
		m.ready = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(catalog.Snapshot(msg))
		return m, nil

	case catalogChangedMsg:
		m.applySnapshot(msg.snapshot)
		return m, waitForChangeCmd(m.store, m.changes)

	case reloadDoneMsg:
		m.reloading = false
		if msg.err != nil {
			m.setFlash("Reload failed")
		}
		if m.store != nil {
			m.applySnapshot(m.store.Snapshot())
		}
		return m, nil

	case contactsLoadedMsg:
		m.handleContactsLoaded(msg)
		return m, nil

	case contactMsg:
		m.prependContact(nestapi.Contact(msg))
		return m, waitForContactCmd(m.contactsCh)

	case logsLoadedMsg:
		m.handleLogsLoaded(msg)
		return m, nil

	case inquiryResultMsg:
		if msg.err != nil {
			m.logger.Warn("inquiry submission failed", "error", msg.err)
		}
		if m.modal == nil {
			return m, nil
		}
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = ternaryModal(closed, nil, modal)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		m.modal = ternaryModal(closed, nil, modal)
		return m, cmd
	}

	if m.searchActive {
		return m.handleSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m, m.setView(nextView(m.currentView, 1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.setView(nextView(m.currentView, -1))

	case key.Matches(msg, m.keys.Escape):
		return m, m.setView(ViewCatalog)

	case key.Matches(msg, m.keys.ViewFavorites):
		return m, m.setView(ViewFavorites)

	case key.Matches(msg, m.keys.ViewContacts):
		return m, m.setView(ViewContacts)

	case key.Matches(msg, m.keys.ViewDiagnostics):
		return m, m.setView(ViewDiagnostics)
	}

	switch m.currentView {
	case ViewCatalog:
		return m.handleCatalogKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewContacts:
		return m.handleContactsKey(msg)
	case ViewDiagnostics:
		return m.handleDiagnosticsKey(msg)
	}

	return m, nil
}

// setView switches views. Leaving the catalog, including into a listing's
// detail, resets every filter to its default.
func (m *Model) setView(v View) tea.Cmd {
	if m.currentView == ViewCatalog && v != ViewCatalog {
		m.resetFilters()
	}
	if m.currentView != v {
		m.logger.Debug("view changed", "from", m.currentView.String(), "to", v.String())
	}
	m.currentView = v

	switch v {
	case ViewContacts:
		if !m.contactsLoaded && !m.contactsLoading {
			return m.refreshContacts()
		}
	case ViewDiagnostics:
		return m.refreshLogs()
	case ViewDetail:
		m.updateDetailViewport()
	}
	return nil
}

func nextView(current View, step int) View {
	if current == ViewDetail {
		current = ViewCatalog
	}
	for i, v := range viewCycle {
		if v == current {
			n := len(viewCycle)
			return viewCycle[((i+step)%n+n)%n]
		}
	}
	return ViewCatalog
}

// cycleTheme switches to the next theme and persists the choice.
func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("saving preferences failed", "error", err)
		m.setFlash("Theme not saved")
	}
}

// applySnapshot adopts a new catalog snapshot and re-derives everything that
// depends on it.
func (m *Model) applySnapshot(snap catalog.Snapshot) {
	m.snapshot = snap
	if !snap.LastUpdated.IsZero() {
		m.lastUpdated = snap.LastUpdated
	}
	m.recompute()
	m.updateDetailViewport()
}

// reload asks the store for a fresh remote copy.
func (m *Model) reload() tea.Cmd {
	if m.store == nil || m.reloading {
		return nil
	}
	m.reloading = true
	return reloadCmd(m.ctx, m.store)
}

func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashAt = time.Now()
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}

	if m.flash != "" && time.Since(m.flashAt) > FlashDuration {
		m.flash = ""
	}

	if m.currentView == ViewDiagnostics {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCatalog:
		return m.renderCatalog()
	case ViewDetail:
		return m.renderDetail()
	case ViewFavorites:
		return m.renderFavorites()
	case ViewContacts:
		return m.renderContacts()
	case ViewDiagnostics:
		return m.renderDiagnostics()
	default:
		return ""
	}
}

func ternaryModal(cond bool, a, b Modal) Modal {
	if cond {
		return a
	}
	return b
}

// Messages

type tickMsg time.Time

type snapshotMsg catalog.Snapshot

type catalogChangedMsg struct {
	snapshot catalog.Snapshot
}

type reloadDoneMsg struct {
	err error
}

type contactMsg nestapi.Contact

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store CatalogSource) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForChangeCmd blocks until the store reports a new version. A closed
// channel ends the loop.
func waitForChangeCmd(store CatalogSource, changes <-chan uint64) tea.Cmd {
	if store == nil || changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return catalogChangedMsg{snapshot: store.Snapshot()}
	}
}

func waitForContactCmd(ch <-chan nestapi.Contact) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return contactMsg(c)
	}
}

func reloadCmd(ctx context.Context, store CatalogSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RemoteTimeout)
		defer cancel()
		return reloadDoneMsg{err: store.LoadFromRemote(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx ends.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
