package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedClipboard struct {
	mu     sync.Mutex
	values []string
	errs   []error
}

// read returns the next scripted value and repeats the last one forever.
func (s *scriptedClipboard) read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[0]
	var err error
	if len(s.errs) > 0 {
		err = s.errs[0]
		s.errs = s.errs[1:]
	}
	if len(s.values) > 1 {
		s.values = s.values[1:]
	}
	return v, err
}

func TestWatcher_ForwardsChanges(t *testing.T) {
	store := &fakeStore{}
	c := New(store, WithDebounce(time.Millisecond))
	defer c.Close()

	cb := &scriptedClipboard{
		values: []string{"startup", "startup", "copied", "copied", "again"},
		errs:   []error{nil, nil, errors.New("transient")},
	}
	w := NewWatcher(c, 5*time.Millisecond, cb.read)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(store.contents()) == 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"copied", "again"}, store.contents(), "initial clipboard content is not captured")
}

func TestNewWatcher_Defaults(t *testing.T) {
	w := NewWatcher(New(&fakeStore{}), 0, nil)
	assert.Equal(t, DefaultWatchInterval, w.interval)
	assert.NotNil(t, w.read)
	assert.True(t, w.system)

	w = NewWatcher(New(&fakeStore{}), time.Second, func() (string, error) { return "", nil })
	assert.False(t, w.system, "an injected reader does not depend on the system clipboard")
}

func TestWatcher_InitialReadErrorIsNotCaptured(t *testing.T) {
	store := &fakeStore{}
	c := New(store, WithDebounce(time.Millisecond))
	defer c.Close()

	cb := &scriptedClipboard{
		values: []string{"", "", "later"},
		errs:   []error{errors.New("locked")},
	}
	w := NewWatcher(c, 5*time.Millisecond, cb.read)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(store.contents()) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"later"}, store.contents())
}
