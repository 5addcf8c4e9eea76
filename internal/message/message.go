// Package message defines the protocol spoken with the browser extension.
//
// All messages are newline-delimited JSON, one message per line. Every
// request gets exactly one response carrying the request's type and id; the
// bridge additionally pushes CLIPS_UPDATED whenever the store changes.
package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/user/contextclips/internal/clips"
)

// Type identifies the kind of message.
type Type string

const (
	TypeSaveClip     Type = "SAVE_CLIP"
	TypeGetClips     Type = "GET_CLIPS"
	TypeSearchClips  Type = "SEARCH_CLIPS"
	TypeDeleteClip   Type = "DELETE_CLIP"
	TypeUpdateClip   Type = "UPDATE_CLIP"
	TypeClearAll     Type = "CLEAR_ALL"
	TypeClipsUpdated Type = "CLIPS_UPDATED"
)

// Code is a machine-readable failure reason.
type Code string

const (
	CodeEmptyContent       Code = "empty_content"
	CodeDuplicateContent   Code = "duplicate_content"
	CodeNotFound           Code = "not_found"
	CodeStorageUnavailable Code = "storage_unavailable"
	CodeBadRequest         Code = "bad_request"
)

// SaveData is the payload of SAVE_CLIP.
type SaveData struct {
	Content string `json:"content"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Domain  string `json:"domain"`
}

// FilterData is the optional filter of SEARCH_CLIPS.
type FilterData struct {
	Domain      string `json:"domain,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Pinned      *bool  `json:"pinned,omitempty"`
	Range       string `json:"dateRange,omitempty"`
}

// Filter converts f into a clips.Filter, rejecting unknown enum values.
func (f *FilterData) Filter() (clips.Filter, error) {
	if f == nil {
		return clips.Filter{}, nil
	}
	ct, err := clips.ParseContentType(f.ContentType)
	if err != nil {
		return clips.Filter{}, err
	}
	r, err := clips.ParseRange(f.Range)
	if err != nil {
		return clips.Filter{}, err
	}
	return clips.Filter{Domain: f.Domain, ContentType: ct, Pinned: f.Pinned, Range: r}, nil
}

// Request is the envelope sent by the extension.
type Request struct {
	ID   string `json:"id,omitempty"`
	Type Type   `json:"type"`

	// SAVE_CLIP
	Data *SaveData `json:"data,omitempty"`

	// SEARCH_CLIPS
	Query  string      `json:"query,omitempty"`
	Filter *FilterData `json:"filter,omitempty"`

	// DELETE_CLIP
	ClipID string `json:"clipId,omitempty"`

	// UPDATE_CLIP
	Clip *clips.Clip `json:"clip,omitempty"`
}

// Response answers one Request, or is a CLIPS_UPDATED push.
type Response struct {
	ID      string `json:"id,omitempty"`
	Type    Type   `json:"type"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    Code   `json:"code,omitempty"`
}

// DeleteResult is the data of a successful DELETE_CLIP.
type DeleteResult struct {
	Removed bool `json:"removed"`
}

// UpdatedEvent is the data of a CLIPS_UPDATED push.
type UpdatedEvent struct {
	Reason string `json:"reason"`
}

// Decode deserialises a request from one line of JSON.
func Decode(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &r, nil
}

// Encode serialises the response to JSON without a trailing newline.
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

func ok(req *Request, data any) Response {
	return Response{ID: req.ID, Type: req.Type, Success: true, Data: data}
}

func fail(req *Request, code Code, err error) Response {
	return Response{ID: req.ID, Type: req.Type, Error: err.Error(), Code: code}
}

// CodeOf maps a store error to its wire code.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, clips.ErrEmptyContent):
		return CodeEmptyContent
	case errors.Is(err, clips.ErrDuplicateContent):
		return CodeDuplicateContent
	case errors.Is(err, clips.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, clips.ErrStorageUnavailable):
		return CodeStorageUnavailable
	default:
		return CodeBadRequest
	}
}
