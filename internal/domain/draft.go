package domain

import "time"

// DraftEntry is a locally persisted document snapshot. Dirty means
// the snapshot has not been confirmed persisted remotely.
type DraftEntry struct {
	DocumentID string          `json:"document_id"`
	Content    *ProjectContent `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	Dirty      bool            `json:"dirty"`
}

// ConflictReport is an advisory signal, not an error: the local
// draft is strictly newer than the remote copy and resolution is the
// caller's decision.
type ConflictReport struct {
	DocumentID      string    `json:"document_id"`
	Conflict        bool      `json:"conflict"`
	LocalTimestamp  time.Time `json:"local_timestamp"`
	RemoteTimestamp time.Time `json:"remote_timestamp"`
	LocalDirty      bool      `json:"local_dirty"`
}
