package domain

import "time"

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncLoading SyncStatus = "loading"
	SyncSaving  SyncStatus = "saving"
	SyncSaved   SyncStatus = "saved"
	SyncError   SyncStatus = "error"
)

var syncTransitions = map[SyncStatus][]SyncStatus{
	SyncIdle:    {SyncLoading, SyncSaving},
	SyncLoading: {SyncSaved, SyncError},
	SyncSaved:   {SyncSaving, SyncLoading},
	SyncError:   {SyncSaving, SyncLoading},
	SyncSaving:  {SyncSaved, SyncError},
}

// CanTransition reports whether the status machine permits moving
// from s to next.
func (s SyncStatus) CanTransition(next SyncStatus) bool {
	for _, allowed := range syncTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type SyncState struct {
	Status       SyncStatus `json:"status"`
	Message      string     `json:"message,omitempty"`
	LastSyncedAt time.Time  `json:"last_synced_at,omitzero"`
}
