package clips

import "time"

// ContentType is a coarse classification of a clip's payload.
type ContentType string

const (
	TypeText  ContentType = "text"
	TypeCode  ContentType = "code"
	TypeURL   ContentType = "url"
	TypeHTML  ContentType = "html"
	TypeImage ContentType = "image"
)

// ContentTypes lists every classification in display order.
var ContentTypes = []ContentType{TypeText, TypeCode, TypeURL, TypeImage, TypeHTML}

// Valid reports whether t is one of the known classifications.
func (t ContentType) Valid() bool {
	switch t {
	case TypeText, TypeCode, TypeURL, TypeHTML, TypeImage:
		return true
	}
	return false
}

// Label is the human-readable group title for t.
func (t ContentType) Label() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeCode:
		return "Code"
	case TypeURL:
		return "Links"
	case TypeImage:
		return "Images"
	case TypeHTML:
		return "HTML"
	}
	return string(t)
}

// Clip is one stored unit of copied content plus where it was copied from.
// Only Pinned and Tags are expected to change after creation.
type Clip struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	CreatedAt   int64       `json:"createdAt"` // ms since epoch
	SourceURL   string      `json:"sourceUrl"`
	PageTitle   string      `json:"pageTitle"`
	Domain      string      `json:"domain"`
	ContentType ContentType `json:"contentType"`
	Pinned      bool        `json:"pinned"`
	Tags        []string    `json:"tags"`
}

// Time returns CreatedAt as a time.Time.
func (c Clip) Time() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// CaptureRequest is the input to Store.Add.
type CaptureRequest struct {
	Content   string `json:"content"`
	SourceURL string `json:"url"`
	PageTitle string `json:"title"`
	Domain    string `json:"domain"`
	// MIME is set only by the clipboard-read path; text captures leave it empty.
	MIME string `json:"mime,omitempty"`
}
