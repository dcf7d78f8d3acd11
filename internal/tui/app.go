package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baton-remote/baton/internal/core"
	"github.com/baton-remote/baton/internal/remote"
	"github.com/baton-remote/baton/internal/state"
	"github.com/baton-remote/baton/internal/tail"
	"github.com/baton-remote/baton/internal/tui/components"
	"github.com/baton-remote/baton/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelPlaylists
	PanelDevices
	PanelActivity
)

const (
	searchDebounce = 300 * time.Millisecond
	requestTimeout = 5 * time.Second
	maxActivity    = 50
)

// App holds the TUI application state
type App struct {
	client      *remote.Client
	reconciler  *state.Reconciler
	fingerprint string
	volumeStep  int
	seekStep    int
}

// NewApp creates a new TUI application over an already connected
// reconciler.
func NewApp(client *remote.Client, rec *state.Reconciler, fingerprint string, volumeStep, seekStep int) *App {
	if volumeStep <= 0 {
		volumeStep = 5
	}
	if seekStep <= 0 {
		seekStep = 10
	}
	return &App{
		client:      client,
		reconciler:  rec,
		fingerprint: fingerprint,
		volumeStep:  volumeStep,
		seekStep:    seekStep,
	}
}

// searchResult represents a search result item
type searchResult struct {
	Kind     core.SearchKind
	Title    string
	Subtitle string
	ID       string
}

// Model is the main TUI model
type Model struct {
	app          *App
	width        int
	height       int
	focusedPanel Panel

	// State
	update    *state.Update
	playlists []string
	devices   []components.DeviceEntry
	activity  []components.HistoryEntry
	formatter *tail.Formatter

	// Components
	nowPlaying    *components.NowPlaying
	playlistsView *components.Playlists
	devicesView   *components.Devices
	activityView  *components.History

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []searchResult
	searchCursor  int
	searchKind    core.SearchKind
	searching     bool
	lastQuery     string
	searchErr     error

	// Error handling
	lastError   error
	errorExpiry time.Time

	// Quit flag
	quitting bool
}

// NewModel creates a new TUI model
func NewModel(app *App) Model {
	ti := textinput.New()
	ti.Placeholder = "Search tracks, albums, artists..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		app:           app,
		focusedPanel:  PanelNowPlaying,
		formatter:     tail.NewFormatter(tail.WithEmoji(true)),
		nowPlaying:    components.NewNowPlaying(),
		playlistsView: components.NewPlaylists(),
		devicesView:   components.NewDevices(),
		activityView:  components.NewHistory(),
		activity:      make([]components.HistoryEntry, 0),
		searchInput:   ti,
		searchKind:    core.SearchTracks,
	}
}

// Messages
type updateMsg state.Update
type playlistsMsg []string
type devicesMsg []components.DeviceEntry
type errMsg error
type refreshAfterActionMsg struct{}

// Search messages
type searchDebounceMsg struct{ query string }
type searchResultsMsg struct {
	results []searchResult
	err     error
}

// waitForUpdate blocks on the reconciler's update stream.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.app.reconciler.Updates()
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func (m Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		playlists, err := m.app.client.Playlists(ctx)
		if err != nil {
			return errMsg(err)
		}
		return playlistsMsg(playlists)
	}
}

func (m Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := m.app.client.ListDevices(ctx)
		if err != nil {
			return errMsg(err)
		}
		return devicesMsg(components.SortDevices(resp.Devices))
	}
}

func (m Model) doSearch(query string) tea.Cmd {
	kind := m.searchKind
	return func() tea.Msg {
		if query == "" {
			return searchResultsMsg{results: nil}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		found, err := m.app.client.Search(ctx, query, kind)
		if err != nil {
			return searchResultsMsg{err: err}
		}

		results := make([]searchResult, 0, len(found))
		for _, r := range found {
			subtitle := r.Artist
			if r.Album != "" {
				if subtitle != "" {
					subtitle += " — "
				}
				subtitle += r.Album
			}
			results = append(results, searchResult{
				Kind:     r.Kind,
				Title:    r.Name,
				Subtitle: subtitle,
				ID:       r.ID,
			})
		}
		return searchResultsMsg{results: results}
	}
}

func (m Model) playSearchResult(result searchResult) tea.Cmd {
	return func() tea.Msg {
		if result.ID == "" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if _, err := m.app.client.PlayTrack(ctx, result.ID); err != nil {
			return errMsg(err)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) playSelectedPlaylist() tea.Cmd {
	idx := m.playlistsView.Selected()
	if idx < 0 || idx >= len(m.playlists) {
		return nil
	}
	name := m.playlists[idx]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := m.app.client.PlayPlaylist(ctx, name); err != nil {
			return errMsg(err)
		}
		return refreshAfterActionMsg{}
	}
}

func (m Model) removeSelectedDevice() tea.Cmd {
	idx := m.devicesView.Selected()
	if idx < 0 || idx >= len(m.devices) {
		return nil
	}
	fingerprint := m.devices[idx].Fingerprint
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := m.app.client.RemoveDevice(ctx, fingerprint); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForUpdate(),
		m.fetchPlaylists(),
		m.fetchDevices(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case updateMsg:
		if time.Now().After(m.errorExpiry) {
			m.lastError = nil
		}
		u := state.Update(msg)
		m.addActivity(tail.DiffUpdates(m.update, &u))
		m.update = &u
		return m, m.waitForUpdate()

	case playlistsMsg:
		m.playlists = msg
		return m, nil

	case devicesMsg:
		m.devices = msg
		return m, nil

	case errMsg:
		m.lastError = msg
		m.errorExpiry = time.Now().Add(5 * time.Second)
		return m, nil

	case refreshAfterActionMsg:
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			if err := m.app.reconciler.Refresh(ctx); err != nil {
				return errMsg(err)
			}
			return nil
		}

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query)
		}

	case searchResultsMsg:
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	// Forward other messages to textinput when search is active
	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

// addActivity prepends formatted events, newest first.
func (m *Model) addActivity(events []tail.Event) {
	for _, e := range events {
		entry := components.HistoryEntry{At: e.Timestamp, Line: m.formatter.Format(e)}
		m.activity = append([]components.HistoryEntry{entry}, m.activity...)
	}
	if len(m.activity) > maxActivity {
		m.activity = m.activity[:maxActivity]
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	// Search overlay
	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	// Normal mode
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showSearch = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searchResults = nil
		m.searchCursor = 0
		m.searchKind = core.SearchTracks
		m.lastQuery = ""
		m.searchErr = nil
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 4
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 3) % 4
		return m, nil
	}

	// Playback controls
	switch msg.String() {
	case " ":
		return m, m.togglePlayPause()
	case "n":
		return m, m.command(m.app.reconciler.Next)
	case "p":
		return m, m.command(m.app.reconciler.Prev)
	case "+", "=":
		return m, m.adjustVolume(m.app.volumeStep)
	case "-":
		return m, m.adjustVolume(-m.app.volumeStep)
	case "left":
		return m, m.seekRelative(-float64(m.app.seekStep))
	case "right":
		return m, m.seekRelative(float64(m.app.seekStep))
	case "s":
		return m, m.toggleShuffle()
	case "r":
		return m, m.cycleRepeat()
	case "R":
		return m, tea.Batch(m.refresh(), m.fetchPlaylists(), m.fetchDevices())
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelPlaylists:
		switch msg.String() {
		case "j", "down":
			m.playlistsView.SelectNext(len(m.playlists))
		case "k", "up":
			m.playlistsView.SelectPrev()
		case "enter":
			return m, m.playSelectedPlaylist()
		}
	case PanelDevices:
		switch msg.String() {
		case "j", "down":
			m.devicesView.SelectNext(len(m.devices))
		case "k", "up":
			m.devicesView.SelectPrev()
		case "x":
			return m, tea.Sequence(m.removeSelectedDevice(), m.fetchDevices())
		}
	}

	return m, nil
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if len(m.searchResults) > 0 && m.searchCursor < len(m.searchResults) {
			result := m.searchResults[m.searchCursor]
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.playSearchResult(result)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil

	case "ctrl+t":
		// Cycle through search kinds
		switch m.searchKind {
		case core.SearchTracks:
			m.searchKind = core.SearchAlbums
		case core.SearchAlbums:
			m.searchKind = core.SearchArtists
		default:
			m.searchKind = core.SearchTracks
		}
		if m.searchInput.Value() != "" {
			m.searching = true
			return m, m.doSearch(m.searchInput.Value())
		}
		return m, nil
	}

	// Handle text input
	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	// Debounce search
	if m.searchInput.Value() != m.lastQuery {
		value := m.searchInput.Value()
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: value}
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) togglePlayPause() tea.Cmd {
	playing := m.update != nil && m.update.Snapshot != nil && m.update.Snapshot.State.IsPlaying()
	if playing {
		return m.command(m.app.reconciler.Pause)
	}
	return m.command(m.app.reconciler.Play)
}

func (m Model) command(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) adjustVolume(delta int) tea.Cmd {
	current := 0
	if m.update != nil {
		current = m.update.Volume
	}
	target := core.ClampVolume(current + delta)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.app.reconciler.SetVolume(ctx, target); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) seekRelative(delta float64) tea.Cmd {
	if m.update == nil || m.update.Snapshot == nil || !m.update.Snapshot.HasTrack() {
		return nil
	}
	target := m.update.Snapshot.Position + delta
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.app.reconciler.SeekTo(ctx, target); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) toggleShuffle() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if _, err := m.app.reconciler.ToggleShuffle(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) cycleRepeat() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if _, err := m.app.reconciler.CycleRepeat(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.app.reconciler.Refresh(ctx); err != nil {
			return errMsg(err)
		}
		return nil
	}
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showSearch {
		return m.renderSearch()
	}

	// Main layout: two columns
	// Left: Now Playing (top), Playlists (bottom)
	// Right: Trusted Devices (top), Activity (bottom)

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	var snap *core.Snapshot
	volume := 0
	repeat := core.RepeatOff
	shuffle := false
	if m.update != nil {
		snap = m.update.Snapshot
		volume = m.update.Volume
		repeat = m.update.Repeat
		shuffle = m.update.Shuffle
	}

	nowPlaying := m.nowPlaying.Render(snap, volume, repeat, shuffle, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	playlistsView := m.playlistsView.Render(m.playlists, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelPlaylists)
	devicesView := m.devicesView.Render(m.devices, m.app.fingerprint, rightWidth-2, topHeight-2, m.focusedPanel == PanelDevices)
	activityView := m.activityView.Render(m.activity, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelActivity)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, playlistsView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, devicesView, activityView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) renderStatusBar() string {
	conn := core.Disconnected
	if m.update != nil {
		conn = m.update.Connection
	}
	badge := styles.ConnectionBadge(conn.String())

	status := styles.Dim.Render("q:quit  ?:help  /:search  space:play/pause  n:next  p:prev  +/-:volume  ←/→:seek  tab:panel")

	if m.lastError != nil {
		status = styles.Paused.Render("Error: " + m.lastError.Error())
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(badge + "  " + status)
}

func (m Model) renderHelp() string {
	title := "Baton - Keyboard Shortcuts"
	divider := styles.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Global
  ──────
  q, Ctrl+C    Quit
  ?            Toggle help
  /            Search
  Tab          Next panel
  Shift+Tab    Previous panel
  R            Refresh everything

  Playback
  ────────
  Space        Play/Pause
  n            Next track
  p            Previous track
  +/=          Volume up
  -            Volume down
  ←/→          Seek back/forward
  s            Toggle shuffle
  r            Cycle repeat mode

  Playlists Panel
  ───────────────
  j/↓          Select next
  k/↑          Select previous
  Enter        Play playlist

  Devices Panel
  ─────────────
  j/↓          Select next
  k/↑          Select previous
  x            Remove device

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderSearch() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	b.WriteString(titleStyle.Render("Search"))
	b.WriteString("\n\n")

	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	// Kind filter tabs
	tabs := []struct {
		label string
		kind  core.SearchKind
	}{
		{"Tracks", core.SearchTracks},
		{"Albums", core.SearchAlbums},
		{"Artists", core.SearchArtists},
	}
	activeTabStyle := lipgloss.NewStyle().Padding(0, 1).Background(styles.Primary).Foreground(lipgloss.Color("0"))
	tabStyle := lipgloss.NewStyle().Padding(0, 1).Foreground(styles.TextDim)
	for _, tab := range tabs {
		if tab.kind == m.searchKind {
			b.WriteString(activeTabStyle.Render(tab.label))
		} else {
			b.WriteString(tabStyle.Render(tab.label))
		}
	}
	b.WriteString("\n\n")

	subtitleStyle := lipgloss.NewStyle().Foreground(styles.TextDim)
	selectedStyle := lipgloss.NewStyle().Background(styles.Surface)
	errorStyle := lipgloss.NewStyle().Foreground(styles.Error)

	if m.searchErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.searchErr.Error()))
	} else if m.searching {
		b.WriteString(subtitleStyle.Render("Searching..."))
	} else if len(m.searchResults) == 0 && m.searchInput.Value() != "" && m.lastQuery != "" {
		b.WriteString(subtitleStyle.Render("No results found"))
	} else {
		maxResults := 10
		for i, result := range m.searchResults {
			if i >= maxResults {
				b.WriteString(subtitleStyle.Render("  ...and more"))
				break
			}

			line := result.Title
			if result.Subtitle != "" {
				line += " " + subtitleStyle.Render(result.Subtitle)
			}

			if i == m.searchCursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Ctrl+t:filter  ↑/↓:nav  Enter:play  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the TUI application
func Run(app *App) error {
	model := NewModel(app)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
