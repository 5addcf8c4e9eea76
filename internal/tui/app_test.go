package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/contextclips/internal/clips"
	"github.com/user/contextclips/internal/db"
	"github.com/user/contextclips/internal/notify"
)

func newTestModel(t *testing.T, hub *notify.Hub, contents ...string) (model, *clips.Store) {
	t.Helper()
	ctx := context.Background()

	store := clips.NewStore(db.NewMemory(), hub)
	for _, c := range contents {
		if _, err := store.Add(ctx, clips.CaptureRequest{Content: c, Domain: "example.com"}); err != nil {
			t.Fatalf("add %q: %v", c, err)
		}
	}

	var sub *notify.Subscription
	if hub != nil {
		sub = hub.Subscribe()
		t.Cleanup(sub.Close)
	}

	m := initialModel(ctx, store, sub)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, store
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

// loaded runs the model's load command and feeds the result back in.
func loaded(t *testing.T, m model) model {
	t.Helper()
	return update(t, m, m.load()())
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestInitialModel_ListFocused(t *testing.T) {
	m, _ := newTestModel(t, nil)

	// TUI should start with list focused (searching=false)
	if m.searching {
		t.Error("expected searching=false on init, got true")
	}

	// Search input should be blurred
	if m.searchInput.Focused() {
		t.Error("expected search input blurred on init, got focused")
	}
}

func TestUpdate_SlashFocusesSearch(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = update(t, m, key('/'))

	if !m.searching {
		t.Error("expected searching=true after pressing /, got false")
	}
	if !m.searchInput.Focused() {
		t.Error("expected search input focused after pressing /")
	}
}

func TestUpdate_EscUnfocusesSearch(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m.searching = true
	m.searchInput.Focus()

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})

	if m.searching {
		t.Error("expected searching=false after pressing Esc, got true")
	}
	if m.searchInput.Focused() {
		t.Error("expected search input blurred after pressing Esc")
	}
}

func TestUpdate_QQuitsOnlyFromList(t *testing.T) {
	m, _ := newTestModel(t, nil)

	_, cmd := m.Update(key('q'))
	if cmd == nil {
		t.Fatal("expected quit command when pressing q from list mode")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg from q in list mode")
	}

	m.searching = true
	m.searchInput.Focus()
	next, _ := m.Update(key('q'))
	m = next.(model)
	if m.searchInput.Value() != "q" {
		t.Errorf("expected q typed into search, got %q", m.searchInput.Value())
	}
}

func TestLoad_ShowsNewestFirst(t *testing.T) {
	m, _ := newTestModel(t, nil, "first", "second")
	m = loaded(t, m)

	items := m.list.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := items[0].(clipItem).clip.Content; got != "second" {
		t.Errorf("expected newest clip first, got %q", got)
	}
}

func TestSearch_FiltersByQuery(t *testing.T) {
	m, _ := newTestModel(t, nil, "golang channels", "rust traits")
	m.searchInput.SetValue("golang")
	m = loaded(t, m)

	if n := len(m.list.Items()); n != 1 {
		t.Fatalf("expected 1 match, got %d", n)
	}
}

func TestTypeToggle_HidesType(t *testing.T) {
	m, _ := newTestModel(t, nil, "https://go.dev", "plain words")
	m = loaded(t, m)

	// 3 toggles the third type in clips.ContentTypes (url)
	m = update(t, m, key('3'))

	items := m.list.Items()
	if len(items) != 1 {
		t.Fatalf("expected url clip hidden, got %d items", len(items))
	}
	if items[0].(clipItem).clip.ContentType != clips.TypeText {
		t.Errorf("expected text clip to remain")
	}

	m = update(t, m, key('3'))
	if len(m.list.Items()) != 2 {
		t.Error("expected toggle to restore url clips")
	}
}

func TestPinAndDelete(t *testing.T) {
	ctx := context.Background()
	m, store := newTestModel(t, nil, "keep")
	m = loaded(t, m)

	_, cmd := m.Update(key('p'))
	m = update(t, m, cmd())
	list, _ := store.List(ctx)
	if !list[0].Pinned {
		t.Fatal("expected clip pinned after p")
	}
	if !m.list.Items()[0].(clipItem).clip.Pinned {
		t.Error("expected list to reflect pin")
	}

	_, cmd = m.Update(key('d'))
	m = update(t, m, cmd())
	list, _ = store.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected clip deleted, %d left", len(list))
	}
	if len(m.list.Items()) != 0 {
		t.Error("expected list emptied after delete")
	}
}

func TestCopy_WritesClipboard(t *testing.T) {
	m, _ := newTestModel(t, nil, "copy me")
	m = loaded(t, m)

	var copied string
	m.copy = func(s string) error { copied = s; return nil }

	_, cmd := m.Update(key('y'))
	m = update(t, m, cmd())
	if copied != "copy me" {
		t.Errorf("expected clip content copied, got %q", copied)
	}
	if m.status == "" {
		t.Error("expected status after copy")
	}
}

func TestHubChange_TriggersReload(t *testing.T) {
	hub := notify.New()
	m, store := newTestModel(t, hub)
	m = loaded(t, m)

	if _, err := store.Add(context.Background(), clips.CaptureRequest{Content: "from elsewhere"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- m.waitForChange()() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(time.Second):
		t.Fatal("no change message")
	}
	if c, ok := msg.(changedMsg); !ok || c.reason != "add" {
		t.Fatalf("expected changedMsg{add}, got %#v", msg)
	}

	m = loaded(t, update(t, m, msg))
	if len(m.list.Items()) != 1 {
		t.Error("expected reload to show the new clip")
	}
}

func TestForeignWrite_TriggersReload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	openSQLite := func() db.Backend {
		b, err := db.NewSQLite(context.Background(), dir)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { b.Close() })
		return b
	}

	hub := notify.New()
	panelStore := clips.NewStore(openSQLite(), hub)
	otherProcess := clips.NewStore(openSQLite(), nil)

	sub := hub.Subscribe()
	t.Cleanup(sub.Close)
	m := loaded(t, initialModel(ctx, panelStore, sub))

	followed := make(chan struct{})
	go func() {
		panelStore.Follow(ctx, 5*time.Millisecond)
		close(followed)
	}()
	defer func() {
		cancel()
		<-followed
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := otherProcess.Add(context.Background(), clips.CaptureRequest{Content: "copied in another terminal"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- m.waitForChange()() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(time.Second):
		t.Fatal("panel never heard about the write from another store")
	}
	if c, ok := msg.(changedMsg); !ok || c.reason != "sync" {
		t.Fatalf("expected changedMsg{sync}, got %#v", msg)
	}

	m = loaded(t, update(t, m, msg))
	if len(m.list.Items()) != 1 {
		t.Errorf("expected reload to show the foreign clip, got %d items", len(m.list.Items()))
	}
}

func TestFirstLineAndAgo(t *testing.T) {
	if got := firstLine("a\nb", 80); got != "a ..." {
		t.Errorf("firstLine = %q", got)
	}
	now := time.Unix(10_000, 0)
	if got := ago(now.Add(-90*time.Minute), now); got != "1h ago" {
		t.Errorf("ago = %q", got)
	}
}
