// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bizdesk/internal/config"
	"github.com/jmylchreest/bizdesk/internal/directory"
	"github.com/jmylchreest/bizdesk/internal/model"
	"github.com/jmylchreest/bizdesk/internal/store"
	"github.com/jmylchreest/bizdesk/internal/theme"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeAdd
	ModeSearch
	ModeHelp
)

// ClientService is the part of the client directory the TUI drives.
type ClientService interface {
	List(ctx context.Context) ([]model.Client, error)
	Create(ctx context.Context, in directory.ClientInput) (*model.Client, error)
	Delete(ctx context.Context, id string) error
}

// ToastFeed is the toast queue as seen by a renderer.
type ToastFeed interface {
	Subscribe() <-chan []model.Notification
	Unsubscribe(ch <-chan []model.Notification)
	Dismiss(id string)
	Clear()
}

var (
	_ ClientService = (*directory.Clients)(nil)
	_ ToastFeed     = (*toast.Manager)(nil)
)

// Add form fields, in focus order.
const (
	fieldName = iota
	fieldEmail
	fieldCompany
	fieldTags
	fieldCount
)

// Model is the main TUI model.
type Model struct {
	// ctx carries the toast provider used by the services and the TUI itself.
	ctx     context.Context
	cfg     *config.Config
	clients ClientService
	feed    ToastFeed

	mode Mode

	// Components
	list        list.Model
	inputs      []textinput.Model
	focus       int
	searchInput textinput.Model
	help        help.Model

	// State
	all         []model.Client
	searchQuery string
	toasts      []model.Notification
	width       int
	height      int
	ready       bool

	keys   KeyMap
	styles styles

	toastCh <-chan []model.Notification
	changes <-chan store.ChangeEvent
	themes  <-chan *theme.Theme
}

// clientItem wraps a client for the list component.
type clientItem struct {
	client model.Client
}

func (i clientItem) Title() string {
	return i.client.Name
}

func (i clientItem) Description() string {
	var parts []string
	if i.client.Company != "" {
		parts = append(parts, i.client.Company)
	}
	if i.client.Email != "" {
		parts = append(parts, i.client.Email)
	}
	if len(i.client.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(i.client.Tags, " #"))
	}
	if !i.client.CreatedAt.IsZero() {
		parts = append(parts, "added "+humanize.Time(i.client.CreatedAt))
	}
	return strings.Join(parts, " · ")
}

func (i clientItem) FilterValue() string {
	return i.client.Name + " " + i.client.Company + " " + i.client.Email
}

// Options configures a Model.
type Options struct {
	Context context.Context
	Config  *config.Config
	Clients ClientService
	Feed    ToastFeed
	Changes <-chan store.ChangeEvent // Optional store change feed
	Theme   *theme.Theme             // Nil = bundled default
	Themes  <-chan *theme.Theme      // Optional theme reload feed
	Title   string
}

// New creates a new TUI model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = opts.Title
	if l.Title == "" {
		l.Title = "Clients"
	}
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search... (or tag=vip,company=acme)"
	searchInput.CharLimit = 100

	m := Model{
		ctx:         ctx,
		cfg:         cfg,
		clients:     opts.Clients,
		feed:        opts.Feed,
		mode:        ModeList,
		list:        l,
		inputs:      newFormInputs(),
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
		styles:      newStyles(opts.Theme),
		changes:     opts.Changes,
		themes:      opts.Themes,
	}

	if m.feed != nil {
		m.toastCh = m.feed.Subscribe()
	}

	return m
}

func newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{
		fieldName:    "Name (required)",
		fieldEmail:   "Email",
		fieldCompany: "Company",
		fieldTags:    "Tags, comma separated",
	}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 120
		ti.Prompt = "  "
		inputs[i] = ti
	}
	return inputs
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadClients,
		waitForToasts(m.toastCh),
		m.watchForChanges,
		m.watchForTheme,
	)
}

type clientsLoadedMsg struct {
	clients []model.Client
	err     error
}

type refreshMsg struct{}

type themeMsg struct {
	theme *theme.Theme
}

type toastsMsg []model.Notification

type toastFeedClosedMsg struct{}

type clientSavedMsg struct {
	client *model.Client
	err    error
}

type clientDeletedMsg struct {
	err error
}

type copyResultMsg struct {
	err error
}

// loadClients fetches the signed-in user's clients.
func (m Model) loadClients() tea.Msg {
	if m.clients == nil {
		return clientsLoadedMsg{}
	}
	clients, err := m.clients.List(m.ctx)
	return clientsLoadedMsg{clients: clients, err: err}
}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return refreshMsg{}
}

// watchForTheme waits for the next theme reload.
func (m Model) watchForTheme() tea.Msg {
	if m.themes == nil {
		return nil
	}
	t, ok := <-m.themes
	if !ok {
		return nil
	}
	return themeMsg{theme: t}
}

// waitForToasts waits for the next snapshot of the toast queue.
func waitForToasts(ch <-chan []model.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return toastFeedClosedMsg{}
		}
		return toastsMsg(snapshot)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case clientsLoadedMsg:
		if msg.err != nil {
			toast.Error(m.ctx, "Could not load clients: "+directory.Message(msg.err, "client"))
			return m, nil
		}
		m.all = msg.clients
		m.list.SetItems(m.buildListItems())
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.loadClients, m.watchForChanges)

	case themeMsg:
		m.styles = newStyles(msg.theme)
		return m, m.watchForTheme

	case toastsMsg:
		m.toasts = msg
		m.resize()
		return m, waitForToasts(m.toastCh)

	case toastFeedClosedMsg:
		m.toasts = nil
		m.toastCh = nil
		m.resize()
		return m, nil

	case clientSavedMsg:
		// Failures were already reported as error toasts by the service.
		if msg.err != nil {
			return m, nil
		}
		m.mode = ModeList
		m.resetForm()
		return m, m.loadClients

	case clientDeletedMsg:
		return m, m.loadClients

	case copyResultMsg:
		if msg.err != nil {
			toast.Error(m.ctx, "Copy failed: "+msg.err.Error())
		} else {
			toast.Info(m.ctx, "Copied to clipboard")
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeAdd:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeAdd:
		return m.handleFormKey(msg)
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeHelp:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Help):
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.resetForm()
		m.mode = ModeAdd
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(clientItem); ok {
			return m, m.deleteClient(item.client.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.list.SelectedItem().(clientItem); ok {
			text := item.client.Email
			if text == "" {
				text = item.client.Name
			}
			return m, m.copyToClipboard(text)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllYAML):
		data, err := yaml.Marshal(m.visibleClients())
		if err != nil {
			toast.Error(m.ctx, "Failed to marshal YAML: "+err.Error())
			return m, nil
		}
		return m, m.copyToClipboard(string(data))

	case key.Matches(msg, m.keys.Search):
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		m.mode = ModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadClients

	case key.Matches(msg, m.keys.DismissToast):
		if len(m.toasts) > 0 && m.feed != nil {
			m.feed.Dismiss(m.toasts[0].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearToasts):
		if m.feed != nil {
			m.feed.Clear()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleFormKey handles keys in the add-client form.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.resetForm()
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.setFocus(m.focus + 1)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.PrevField):
		m.setFocus(m.focus - 1)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		if m.focus < fieldCount-1 {
			m.setFocus(m.focus + 1)
			return m, textinput.Blink
		}
		return m, m.createClient(m.formInput())
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.list.SetItems(m.buildListItems())
		return m, nil

	case tea.KeyEnter:
		// Keep the filter and return to the list.
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering on each keystroke
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(m.buildListItems())

	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.focus = (i + fieldCount) % fieldCount
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(fieldName)
}

// formInput reads the add form.
func (m Model) formInput() directory.ClientInput {
	return directory.ClientInput{
		Name:    m.inputs[fieldName].Value(),
		Email:   m.inputs[fieldEmail].Value(),
		Company: m.inputs[fieldCompany].Value(),
		Tags:    strings.Split(m.inputs[fieldTags].Value(), ","),
	}
}

func (m Model) createClient(in directory.ClientInput) tea.Cmd {
	return func() tea.Msg {
		if m.clients == nil {
			return clientSavedMsg{err: fmt.Errorf("no client service")}
		}
		client, err := m.clients.Create(m.ctx, in)
		return clientSavedMsg{client: client, err: err}
	}
}

func (m Model) deleteClient(id string) tea.Cmd {
	return func() tea.Msg {
		if m.clients == nil {
			return clientDeletedMsg{err: fmt.Errorf("no client service")}
		}
		return clientDeletedMsg{err: m.clients.Delete(m.ctx, id)}
	}
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.cfg.Clipboard.Command
	ctx := m.ctx
	return func() tea.Msg {
		return copyResultMsg{err: copyText(ctx, text, command)}
	}
}

func (m Model) visibleClients() []model.Client {
	return filterClients(m.all, m.searchQuery)
}

// buildListItems creates list items from the filtered clients.
func (m Model) buildListItems() []list.Item {
	clients := m.visibleClients()
	items := make([]list.Item, len(clients))
	for i, c := range clients {
		items[i] = clientItem{client: c}
	}
	return items
}

func (m Model) maxVisibleToasts() int {
	if m.cfg.Toast.MaxVisible > 0 {
		return m.cfg.Toast.MaxVisible
	}
	return config.DefaultMaxVisible
}

// resize fits the list between the header and the toast stack.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	reserved := 2 + len(m.toastLines())
	height := m.height - reserved
	if height < 3 {
		height = 3
	}
	m.list.SetSize(m.width, height)
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var body string
	switch m.mode {
	case ModeList:
		body = m.list.View() + "\n" + m.buildKeybindBar(m.width, "list")
	case ModeAdd:
		body = m.viewForm()
	case ModeSearch:
		body = m.viewSearch()
	case ModeHelp:
		body = m.viewHelp()
	}

	if toasts := m.toastLines(); len(toasts) > 0 {
		body += "\n" + strings.Join(toasts, "\n")
	}
	return body
}

func (m Model) viewForm() string {
	titleStyle := m.styles.title.Padding(0, 1)
	labelStyle := m.styles.label

	labels := [fieldCount]string{
		fieldName:    "Name",
		fieldEmail:   "Email",
		fieldCompany: "Company",
		fieldTags:    "Tags",
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("New client") + "\n\n")
	for i := range m.inputs {
		sb.WriteString(labelStyle.Render(labels[i]) + "\n")
		sb.WriteString(m.inputs[i].View() + "\n")
	}
	sb.WriteString("\n" + m.buildKeybindBar(m.width, "form"))
	return sb.String()
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
	searchBar := "Search: " + m.searchInput.View() + " " +
		m.styles.muted.Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.buildKeybindBar(m.width, "search")
}

func (m Model) viewHelp() string {
	titleStyle := m.styles.title.MarginBottom(1)

	h := m.help
	h.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" + h.View(m.keys) + "\n\n" +
		m.styles.muted.Render("Press ? or esc to return")
}

// toastLines renders the active toasts oldest first, capped at max_visible.
func (m Model) toastLines() []string {
	if len(m.toasts) == 0 {
		return nil
	}

	limit := m.maxVisibleToasts()
	shown := m.toasts
	if len(shown) > limit {
		shown = shown[:limit]
	}

	maxLen := m.width - 4
	if maxLen <= 0 {
		maxLen = 80
	}

	lines := make([]string, 0, len(shown)+1)
	for i := range shown {
		n := &shown[i]
		sev := model.ParseSeverity(string(n.Severity))
		lines = append(lines, m.styles.toasts[sev].Render(m.styles.toastPrefix(sev)+n.MessageTruncated(maxLen)))
	}
	if extra := len(m.toasts) - len(shown); extra > 0 {
		lines = append(lines, m.styles.muted.Render(fmt.Sprintf("  +%d more", extra)))
	}
	return lines
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
// mode determines which keybinds are shown: "list", "form", "search"
func (m Model) buildKeybindBar(width int, mode string) string {
	style := m.styles.muted
	keyStyle := m.styles.key

	var binds []keybind

	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit", 1},
			{"a", "add", 2},
			{"?", "help", 3},
			{"/", "search", 4},
			{"x", "dismiss toast", 5},
			{"D", "delete", 6},
			{"c", "copy", 7},
			{"r", "refresh", 8},
		}
	case "form":
		binds = []keybind{
			{"enter", "next/save", 1},
			{"esc", "cancel", 2},
			{"tab", "next field", 3},
		}
	case "search":
		binds = []keybind{
			{"enter", "apply", 1},
			{"esc", "clear", 2},
			{"↑/↓", "navigate", 3},
		}
	}

	// Add keybinds until we run out of space
	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := len(b.key) + 1 + len(b.desc)
		if result != "" {
			testLen += lipgloss.Width(result) + len(separator)
		}

		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	if m.feed != nil {
		defer m.feed.Unsubscribe(m.toastCh)
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
