package domain

import "time"

// StoryDraft is what the user submits from the add-story form.
type StoryDraft struct {
	Description      string
	Photo            []byte
	PhotoName        string
	PhotoContentType string
	Lat              float64
	Lon              float64
	Token            string
}

// PendingSubmission is a draft queued while offline. It carries the token
// and the fully encoded request so it can be replayed by a process that
// never saw the original form.
type PendingSubmission struct {
	ID             int64     `json:"id"`
	IdempotencyKey string    `json:"idempotencyKey"`
	Description    string    `json:"description"`
	Photo          []byte    `json:"-"`
	PhotoName      string    `json:"photoName"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Token          string    `json:"-"`
	Payload        []byte    `json:"-"`
	ContentType    string    `json:"-"`
	Timestamp      time.Time `json:"timestamp"`
	Synced         bool      `json:"synced"`
}

// SyncResult aggregates the outcome of one sync pass.
type SyncResult struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (r SyncResult) Total() int {
	return r.Succeeded + r.Failed
}
