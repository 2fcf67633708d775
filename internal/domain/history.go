package domain

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one committed, undoable unit. Forward and Inverse
// hold one RFC 6902 patch document per coalesced mutation, in
// mutation order. Applying Inverse in reverse order to the state
// immediately after the entry yields the state immediately before
// it; Forward applied in order does the opposite.
type HistoryEntry struct {
	Forward     []json.RawMessage `json:"forward"`
	Inverse     []json.RawMessage `json:"inverse"`
	Timestamp   time.Time         `json:"timestamp"`
	Description string            `json:"description,omitempty"`
}
