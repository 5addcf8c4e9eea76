// Package capture turns "text was copied on a page" signals into clips.
// Rapid repeated signals are debounced; only the latest one in a quiet
// period reaches the store.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/user/contextclips/internal/clips"
)

const (
	DefaultDebounce        = 100 * time.Millisecond
	DefaultDispatchTimeout = 10 * time.Second
)

// Page is the context of the page a copy happened on.
type Page struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// Adder is the part of clips.Store the coordinator needs.
type Adder interface {
	Add(ctx context.Context, req clips.CaptureRequest) (clips.Clip, error)
}

type OutcomeKind int

const (
	Created OutcomeKind = iota
	RejectedEmpty
	RejectedDuplicate
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Created:
		return "created"
	case RejectedEmpty:
		return "rejected_empty"
	case RejectedDuplicate:
		return "rejected_duplicate"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Outcome is the result of one capture. Clip is set for Created, Err for Failed.
type Outcome struct {
	Kind OutcomeKind
	Clip clips.Clip
	Err  error
}

// State is the debounce state of a Coordinator.
type State int

const (
	Idle State = iota
	Pending
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Dispatching:
		return "dispatching"
	}
	return "unknown"
}

type signal struct {
	text string
	page Page
}

// Coordinator forwards copy signals to the store.
type Coordinator struct {
	store     Adder
	delay     time.Duration
	timeout   time.Duration
	onOutcome func(Outcome)

	mu           sync.Mutex
	state        State
	pending      *signal
	queued       *signal
	timer        *time.Timer
	gen          uint64
	lastCaptured string
	closed       bool
	inflight     sync.WaitGroup
}

type Option func(*Coordinator)

// WithDebounce sets the quiet period before a signal is dispatched.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.delay = d }
}

// WithDispatchTimeout bounds each store call made for a debounced signal.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// WithOutcomeHandler receives the outcome of every dispatched signal.
// Cancelled signals never reach it. It runs on the dispatch goroutine.
func WithOutcomeHandler(fn func(Outcome)) Option {
	return func(c *Coordinator) { c.onOutcome = fn }
}

func New(store Adder, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:   store,
		delay:   DefaultDebounce,
		timeout: DefaultDispatchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnCopy records a copy signal. It never blocks on the store: the signal is
// dispatched after the debounce delay unless a newer one replaces it.
func (c *Coordinator) OnCopy(selectedText string, page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	sig := &signal{text: selectedText, page: page}
	switch c.state {
	case Idle:
		c.pending = sig
		c.state = Pending
		c.scheduleLocked()
	case Pending:
		c.timer.Stop()
		c.pending = sig
		c.scheduleLocked()
	case Dispatching:
		// restarts its own debounce once the in-flight call returns
		c.queued = sig
	}
}

func (c *Coordinator) scheduleLocked() {
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
}

func (c *Coordinator) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || c.gen != gen || c.state != Pending {
		c.mu.Unlock()
		return
	}
	sig := c.pending
	c.pending = nil
	c.state = Dispatching
	c.inflight.Add(1)
	c.mu.Unlock()

	defer c.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	out := c.Capture(ctx, sig.text, sig.page)
	cancel()

	if c.onOutcome != nil {
		c.onOutcome(out)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queued != nil && !c.closed {
		c.pending = c.queued
		c.queued = nil
		c.state = Pending
		c.scheduleLocked()
		return
	}
	c.queued = nil
	c.state = Idle
}

// Capture applies the capture guards and calls the store immediately,
// without debouncing.
func (c *Coordinator) Capture(ctx context.Context, selectedText string, page Page) Outcome {
	content := strings.TrimSpace(selectedText)
	if content == "" {
		slog.Debug("capture skipped: empty selection", "domain", page.Domain)
		return Outcome{Kind: RejectedEmpty}
	}

	c.mu.Lock()
	last := c.lastCaptured
	c.mu.Unlock()
	if content == last {
		slog.Debug("capture skipped: same as last capture", "domain", page.Domain)
		return Outcome{Kind: RejectedDuplicate}
	}

	clip, err := c.store.Add(ctx, clips.CaptureRequest{
		Content:   content,
		SourceURL: page.URL,
		PageTitle: page.Title,
		Domain:    page.Domain,
	})
	switch {
	case err == nil:
		c.mu.Lock()
		c.lastCaptured = content
		c.mu.Unlock()
		slog.Info("clip captured", "id", clip.ID, "type", clip.ContentType, "domain", clip.Domain)
		return Outcome{Kind: Created, Clip: clip}
	case errors.Is(err, clips.ErrDuplicateContent):
		slog.Debug("capture suppressed by duplicate window", "domain", page.Domain)
		return Outcome{Kind: RejectedDuplicate}
	case errors.Is(err, clips.ErrEmptyContent):
		return Outcome{Kind: RejectedEmpty}
	default:
		slog.Error("capture failed", "domain", page.Domain, "err", err)
		return Outcome{Kind: Failed, Err: err}
	}
}

// State returns the current debounce state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels any pending signal and waits for an in-flight dispatch.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.pending = nil
	c.queued = nil
	c.mu.Unlock()

	c.inflight.Wait()
}
