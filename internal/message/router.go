package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/user/contextclips/internal/capture"
	"github.com/user/contextclips/internal/clips"
)

// Store is the part of clips.Store the router serves.
type Store interface {
	List(ctx context.Context) ([]clips.Clip, error)
	Query(ctx context.Context, query string, f clips.Filter) ([]clips.Clip, error)
	Delete(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, clip clips.Clip) error
	Clear(ctx context.Context) error
}

// Capturer saves clips on behalf of the extension.
type Capturer interface {
	Capture(ctx context.Context, selectedText string, page capture.Page) capture.Outcome
}

// Router dispatches requests to the store and the capture coordinator.
type Router struct {
	store    Store
	capturer Capturer
}

func NewRouter(store Store, capturer Capturer) *Router {
	return &Router{store: store, capturer: capturer}
}

// Handle answers req. It never returns a transport error: every failure is
// encoded in the response.
func (r *Router) Handle(ctx context.Context, req *Request) Response {
	switch req.Type {
	case TypeSaveClip:
		return r.save(ctx, req)

	case TypeGetClips:
		list, err := r.store.List(ctx)
		if err != nil {
			return fail(req, CodeOf(err), err)
		}
		return ok(req, list)

	case TypeSearchClips:
		f, err := req.Filter.Filter()
		if err != nil {
			return fail(req, CodeBadRequest, err)
		}
		found, err := r.store.Query(ctx, req.Query, f)
		if err != nil {
			return fail(req, CodeOf(err), err)
		}
		return ok(req, found)

	case TypeDeleteClip:
		if req.ClipID == "" {
			return fail(req, CodeBadRequest, errors.New("clipId is required"))
		}
		removed, err := r.store.Delete(ctx, req.ClipID)
		if err != nil {
			return fail(req, CodeOf(err), err)
		}
		return ok(req, DeleteResult{Removed: removed})

	case TypeUpdateClip:
		if req.Clip == nil || req.Clip.ID == "" {
			return fail(req, CodeBadRequest, errors.New("clip with id is required"))
		}
		if err := r.store.Update(ctx, *req.Clip); err != nil {
			return fail(req, CodeOf(err), err)
		}
		return ok(req, nil)

	case TypeClearAll:
		if err := r.store.Clear(ctx); err != nil {
			return fail(req, CodeOf(err), err)
		}
		return ok(req, nil)
	}

	return fail(req, CodeBadRequest, fmt.Errorf("unknown message type %q", req.Type))
}

func (r *Router) save(ctx context.Context, req *Request) Response {
	if req.Data == nil {
		return fail(req, CodeBadRequest, errors.New("data is required"))
	}
	page := capture.Page{URL: req.Data.URL, Title: req.Data.Title, Domain: req.Data.Domain}

	out := r.capturer.Capture(ctx, req.Data.Content, page)
	switch out.Kind {
	case capture.Created:
		return ok(req, out.Clip)
	case capture.RejectedEmpty:
		return fail(req, CodeEmptyContent, clips.ErrEmptyContent)
	case capture.RejectedDuplicate:
		return fail(req, CodeDuplicateContent, clips.ErrDuplicateContent)
	default:
		slog.Warn("save from extension failed", "domain", page.Domain, "err", out.Err)
		return fail(req, CodeOf(out.Err), out.Err)
	}
}
