package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/contextclips/internal/clips"
)

const testDelay = 20 * time.Millisecond

type fakeStore struct {
	mu    sync.Mutex
	calls []clips.CaptureRequest
	err   error
	block chan struct{}
}

func (f *fakeStore) Add(_ context.Context, req clips.CaptureRequest) (clips.Clip, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err := f.err
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return clips.Clip{}, err
	}
	return clips.Clip{ID: "id-" + req.Content, Content: req.Content, Domain: req.Domain}, nil
}

func (f *fakeStore) contents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Content
	}
	return out
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func outcomes() (func(Outcome), <-chan Outcome) {
	ch := make(chan Outcome, 16)
	return func(o Outcome) { ch <- o }, ch
}

func waitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(time.Second):
		t.Fatal("no outcome reported")
		return Outcome{}
	}
}

func TestOnCopy_DebounceKeepsLatest(t *testing.T) {
	store := &fakeStore{}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))
	defer c.Close()

	page := Page{URL: "https://a.com/x", Title: "X", Domain: "a.com"}
	c.OnCopy("first", page)
	c.OnCopy("second", page)
	c.OnCopy("third", page)
	assert.Equal(t, Pending, c.State())

	out := waitOutcome(t, ch)
	assert.Equal(t, Created, out.Kind)
	assert.Equal(t, "third", out.Clip.Content)
	assert.Equal(t, "a.com", out.Clip.Domain)

	require.Eventually(t, func() bool { return c.State() == Idle }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"third"}, store.contents())
}

func TestOnCopy_SeparatedSignalsBothDispatch(t *testing.T) {
	store := &fakeStore{}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))
	defer c.Close()

	c.OnCopy("one", Page{})
	waitOutcome(t, ch)
	c.OnCopy("two", Page{})
	waitOutcome(t, ch)

	assert.Equal(t, []string{"one", "two"}, store.contents())
}

func TestOnCopy_BlankNeverReachesStore(t *testing.T) {
	store := &fakeStore{}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))
	defer c.Close()

	c.OnCopy("  \n\t ", Page{})

	out := waitOutcome(t, ch)
	assert.Equal(t, RejectedEmpty, out.Kind)
	assert.Empty(t, store.contents())
}

func TestOnCopy_QueuedDuringDispatch(t *testing.T) {
	store := &fakeStore{block: make(chan struct{})}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))
	defer c.Close()

	c.OnCopy("a", Page{})
	require.Eventually(t, func() bool { return c.State() == Dispatching }, time.Second, time.Millisecond)

	c.OnCopy("b", Page{})
	c.OnCopy("c", Page{})
	assert.Equal(t, Dispatching, c.State(), "signals during dispatch do not interrupt it")

	store.mu.Lock()
	release := store.block
	store.block = nil
	store.mu.Unlock()
	close(release)

	assert.Equal(t, "a", waitOutcome(t, ch).Clip.Content)
	assert.Equal(t, "c", waitOutcome(t, ch).Clip.Content)
	assert.Equal(t, []string{"a", "c"}, store.contents())
}

func TestOnCopy_FailureDoesNotStopLaterCaptures(t *testing.T) {
	store := &fakeStore{err: clips.ErrStorageUnavailable}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))
	defer c.Close()

	c.OnCopy("lost", Page{})
	out := waitOutcome(t, ch)
	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Err, clips.ErrStorageUnavailable)

	store.setErr(nil)
	c.OnCopy("kept", Page{})
	assert.Equal(t, Created, waitOutcome(t, ch).Kind)
}

func TestClose_CancelsPending(t *testing.T) {
	store := &fakeStore{}
	handler, ch := outcomes()
	c := New(store, WithDebounce(testDelay), WithOutcomeHandler(handler))

	c.OnCopy("never", Page{})
	c.Close()
	c.OnCopy("ignored", Page{})

	select {
	case o := <-ch:
		t.Fatalf("unexpected outcome %v", o.Kind)
	case <-time.After(3 * testDelay):
	}
	assert.Empty(t, store.contents())
}

func TestCapture_Outcomes(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	c := New(store)

	out := c.Capture(ctx, "  hello  ", Page{Domain: "a.com"})
	require.Equal(t, Created, out.Kind)
	assert.Equal(t, "hello", out.Clip.Content)

	out = c.Capture(ctx, "hello", Page{})
	assert.Equal(t, RejectedDuplicate, out.Kind, "same as last successful capture")
	assert.Len(t, store.contents(), 1)

	out = c.Capture(ctx, "", Page{})
	assert.Equal(t, RejectedEmpty, out.Kind)

	store.setErr(clips.ErrDuplicateContent)
	out = c.Capture(ctx, "other", Page{})
	assert.Equal(t, RejectedDuplicate, out.Kind)

	boom := errors.New("boom")
	store.setErr(boom)
	out = c.Capture(ctx, "third", Page{})
	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Err, boom)
}

func TestCapture_GuardOnlyTracksSuccess(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{err: errors.New("down")}
	c := New(store)

	assert.Equal(t, Failed, c.Capture(ctx, "x", Page{}).Kind)

	store.setErr(nil)
	assert.Equal(t, Created, c.Capture(ctx, "x", Page{}).Kind, "a failed capture can be retried")
}

func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "rejected_duplicate", RejectedDuplicate.String())
	assert.Equal(t, "dispatching", Dispatching.String())
}
