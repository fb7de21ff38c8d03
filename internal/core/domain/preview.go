package domain

import "time"

// PreviewHint is a best-effort check of whether a preview clip can be played.
type PreviewHint struct {
	URL         string    `json:"url"`
	Playable    bool      `json:"playable"`
	ContentType string    `json:"contentType,omitempty"`
	Seconds     float64   `json:"seconds,omitempty"`
	Error       string    `json:"error,omitempty"`
	CheckedAt   time.Time `json:"checkedAt"`
}
