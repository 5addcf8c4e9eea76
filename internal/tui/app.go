package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/contextclips/internal/clips"
	"github.com/user/contextclips/internal/notify"
)

// Store is what the panel reads and changes.
type Store interface {
	Query(ctx context.Context, query string, f clips.Filter) ([]clips.Clip, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
}

type model struct {
	ctx         context.Context
	store       Store
	sub         *notify.Subscription
	copy        func(string) error
	now         func() time.Time
	searchInput textinput.Model
	list        list.Model
	clips       []clips.Clip
	types       map[clips.ContentType]bool // content type filter toggles
	width       int
	height      int
	searching   bool
	status      string
	err         error
}

type clipItem struct {
	clip clips.Clip
	now  time.Time
}

func (c clipItem) Title() string {
	pin := ""
	if c.clip.Pinned {
		pin = "* "
	}
	return fmt.Sprintf("%s %s%s", typeIcon(c.clip.ContentType), pin, firstLine(c.clip.Content, 80))
}

func (c clipItem) Description() string {
	parts := []string{ago(c.clip.Time(), c.now)}
	if c.clip.Domain != "" {
		parts = append(parts, c.clip.Domain)
	}
	if len(c.clip.Tags) > 0 {
		parts = append(parts, "#"+strings.Join(c.clip.Tags, " #"))
	}
	return strings.Join(parts, " · ")
}

func (c clipItem) FilterValue() string {
	return c.clip.Content + " " + c.clip.PageTitle + " " + c.clip.Domain
}

func typeIcon(t clips.ContentType) string {
	switch t {
	case clips.TypeText:
		return "[T]"
	case clips.TypeCode:
		return "[C]"
	case clips.TypeURL:
		return "[L]"
	case clips.TypeImage:
		return "[I]"
	case clips.TypeHTML:
		return "[H]"
	default:
		return "[?]"
	}
}

func firstLine(s string, limit int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	if r := []rune(s); len(r) > limit {
		s = string(r[:limit]) + "..."
	}
	return s
}

func ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func initialModel(ctx context.Context, store Store, sub *notify.Subscription) model {
	ti := textinput.New()
	ti.Placeholder = "Search clips..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Context Clips"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	types := make(map[clips.ContentType]bool, len(clips.ContentTypes))
	for _, t := range clips.ContentTypes {
		types[t] = true
	}

	return model{
		ctx:         ctx,
		store:       store,
		sub:         sub,
		copy:        clipboard.WriteAll,
		now:         time.Now,
		searchInput: ti,
		list:        l,
		types:       types,
	}
}

type clipsMsg struct {
	clips []clips.Clip
	err   error
}

// changedMsg is sent when the store publishes a change.
type changedMsg struct {
	reason string
}

type statusMsg string

func (m model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

func (m model) load() tea.Cmd {
	query := m.searchInput.Value()
	return func() tea.Msg {
		found, err := m.store.Query(m.ctx, query, clips.Filter{})
		return clipsMsg{clips: found, err: err}
	}
}

func (m model) waitForChange() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-m.sub.C()
		if !ok {
			return nil
		}
		return changedMsg{reason: ev.Reason}
	}
}

func (m model) selected() (clips.Clip, bool) {
	item, ok := m.list.SelectedItem().(clipItem)
	return item.clip, ok
}

func (m model) togglePin(c clips.Clip) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.SetPinned(m.ctx, c.ID, !c.Pinned); err != nil {
			return clipsMsg{err: err}
		}
		return m.load()()
	}
}

func (m model) remove(c clips.Clip) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.store.Delete(m.ctx, c.ID); err != nil {
			return clipsMsg{err: err}
		}
		return m.load()()
	}
}

func (m model) copyClip(c clips.Clip) tea.Cmd {
	return func() tea.Msg {
		if err := m.copy(c.Content); err != nil {
			return statusMsg("copy failed: " + err.Error())
		}
		return statusMsg("Copied to clipboard")
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc", "enter":
				m.searching = false
				m.searchInput.Blur()
				return m, m.load()
			}
		} else {
			return m.handleListKey(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.searchInput.Width = msg.Width - 20

	case clipsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.clips = msg.clips
		return m, m.list.SetItems(m.clipsToItems(msg.clips))

	case changedMsg:
		return m, tea.Batch(m.load(), m.waitForChange())

	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	if m.searching {
		before := m.searchInput.Value()
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)

		// Live search on input change
		if m.searchInput.Value() != before {
			cmds = append(cmds, m.load())
		}
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleListKey handles keys while the list, not the search box, has focus.
func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			return m, m.load()
		}
		return m, nil
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "g":
		m.list.Select(0)
		return m, nil
	case "G":
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(n - 1)
		}
		return m, nil
	case "enter", "y":
		if c, ok := m.selected(); ok {
			return m, m.copyClip(c)
		}
		return m, nil
	case "p":
		if c, ok := m.selected(); ok {
			return m, m.togglePin(c)
		}
		return m, nil
	case "d":
		if c, ok := m.selected(); ok {
			return m, m.remove(c)
		}
		return m, nil
	case "o":
		if c, ok := m.selected(); ok && c.SourceURL != "" {
			openBrowser(c.SourceURL)
		}
		return m, nil
	case "1", "2", "3", "4", "5":
		t := clips.ContentTypes[msg.String()[0]-'1']
		m.types[t] = !m.types[t]
		return m, m.list.SetItems(m.clipsToItems(m.clips))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) clipsToItems(all []clips.Clip) []list.Item {
	now := m.now()
	items := make([]list.Item, 0, len(all))
	for _, c := range all {
		if m.types[c.ContentType] {
			items = append(items, clipItem{clip: c, now: now})
		}
	}
	return items
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder

	// Header with search and filters
	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	activeFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	inactiveFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	filters := make([]string, 0, len(clips.ContentTypes))
	for i, t := range clips.ContentTypes {
		label := fmt.Sprintf("%d:%s", i+1, t.Label())
		if m.types[t] {
			filters = append(filters, activeFilter.Render(label))
		} else {
			filters = append(filters, inactiveFilter.Render(label))
		}
	}

	searchBox := searchStyle.Render(m.searchInput.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, searchBox, "  ", strings.Join(filters, " ")))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)

	help := "[j/k]nav [/]search [enter/y]copy [p]in [d]elete [o]pen [1-5]types [q]uit"
	if m.status != "" {
		help = m.status + "  " + help
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the clip panel. It refreshes whenever hub publishes a change;
// hub may be nil.
func Run(ctx context.Context, store Store, hub *notify.Hub) error {
	var sub *notify.Subscription
	if hub != nil {
		sub = hub.Subscribe()
		defer sub.Close()
	}

	p := tea.NewProgram(initialModel(ctx, store, sub), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
