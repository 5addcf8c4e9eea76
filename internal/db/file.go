package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetry = 10 * time.Millisecond

// File keeps every key in one JSON document on disk, so values must be JSON.
// The document also carries a write counter per key. Writes go to a temp
// file that is renamed over the original, so a Set is all-or-nothing. Every
// operation holds contextclips.json.lock, so several processes can share one
// data directory.
type File struct {
	mu   sync.RWMutex
	path string
}

func NewFile(dataDir string) (*File, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("file: data directory can not be empty")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{path: filepath.Join(dataDir, "contextclips.json")}, nil
}

func (f *File) Close() error { return nil }

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	unlock, err := f.lock(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	return doc.Values[key], nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	return f.Update(ctx, key, func([]byte) ([]byte, error) { return value, nil })
}

func (f *File) Update(ctx context.Context, key string, fn UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lock(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	next, err := fn(doc.Values[key])
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	doc.Values[key] = json.RawMessage(next)
	doc.Revisions[key]++
	return f.write(doc)
}

func (f *File) Revision(ctx context.Context, key string) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	unlock, err := f.lock(ctx, false)
	if err != nil {
		return 0, err
	}
	defer unlock()

	doc, err := f.load()
	if err != nil {
		return 0, err
	}
	return doc.Revisions[key], nil
}

// lock takes the cross-process lock file. Each call opens its own handle,
// since flock locks are per open file and must also exclude other goroutines.
func (f *File) lock(ctx context.Context, exclusive bool) (func(), error) {
	fl := flock.New(f.path + ".lock")
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = fl.TryLockContext(ctx, lockRetry)
	} else {
		ok, err = fl.TryRLockContext(ctx, lockRetry)
	}
	if err != nil {
		return nil, fmt.Errorf("lock store file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock store file: %w", ctx.Err())
	}
	return func() { fl.Unlock() }, nil
}

func (f *File) write(doc *fileDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".contextclips-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

type fileDoc struct {
	Values    map[string]json.RawMessage `json:"values"`
	Revisions map[string]int64           `json:"revisions"`
}

// load reads the whole document; a missing file is an empty document.
func (f *File) load() (*fileDoc, error) {
	doc := &fileDoc{}

	data, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("decode store file: %w", err)
		}
	}

	if doc.Values == nil {
		doc.Values = make(map[string]json.RawMessage)
	}
	if doc.Revisions == nil {
		doc.Revisions = make(map[string]int64)
	}
	return doc, nil
}
