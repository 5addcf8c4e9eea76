package message

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/user/contextclips/internal/notify"
)

// MaxMessageSize is the largest request line we will read (16 MiB).
const MaxMessageSize = 16 * 1024 * 1024

// Bridge serves the extension protocol over a byte stream, typically the
// stdin/stdout pair of a native messaging host.
type Bridge struct {
	router *Router
	hub    *notify.Hub
}

// NewBridge builds a Bridge. hub may be nil, in which case no
// CLIPS_UPDATED pushes are sent.
func NewBridge(router *Router, hub *notify.Hub) *Bridge {
	return &Bridge{router: router, hub: hub}
}

// Serve reads requests from r and writes responses and pushes to w until r
// hits EOF or ctx is done. Writes to w are serialized. A blocked read on r
// is only interrupted by closing r.
func (b *Bridge) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	out := &writer{w: w}

	var wg sync.WaitGroup
	if b.hub != nil {
		sub := b.hub.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range sub.C() {
				push := Response{Type: TypeClipsUpdated, Success: true, Data: UpdatedEvent{Reason: ev.Reason}}
				if err := out.write(&push); err != nil {
					slog.Debug("push failed", "err", err)
				}
			}
		}()
		defer wg.Wait()
		defer sub.Close()
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), MaxMessageSize)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read request: %w", err)
			}
			return nil
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			resp := b.handle(ctx, line)
			if err := out.write(&resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
		}
	}
}

func (b *Bridge) handle(ctx context.Context, line []byte) Response {
	req, err := Decode(line)
	if err != nil {
		return Response{Error: err.Error(), Code: CodeBadRequest}
	}
	resp := b.router.Handle(ctx, req)
	if !resp.Success {
		slog.Debug("request failed", "type", req.Type, "code", resp.Code, "err", resp.Error)
	}
	return resp
}

type writer struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *writer) write(resp *Response) error {
	b, err := resp.Encode()
	if err != nil {
		return err
	}
	b = append(b, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.w.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}
