// Package history converts the mutation stream into bounded,
// patch-based undo entries. Each recorded mutation is diffed into a
// forward patch and its inverse; rapid mutations coalesce in a
// pending buffer that a debounce window commits as one entry.
package history

import (
	"encoding/json"
	"sync"
	"time"

	"synoptic-engine/internal/domain"
	"synoptic-engine/pkg/debounce"

	applypatch "github.com/evanphx/json-patch/v5"
	"github.com/rs/zerolog"
	"github.com/snorwin/jsonpatch"
)

type Recorder struct {
	mu sync.Mutex

	limit   int
	entries []*domain.HistoryEntry
	// index points at the entry Undo would apply next; -1 when
	// nothing is undoable.
	index int

	pendingFwd  []json.RawMessage
	pendingInv  []json.RawMessage
	pendingDesc string

	deb *debounce.Debouncer
	log zerolog.Logger
}

func NewRecorder(limit int, flushAfter time.Duration, log zerolog.Logger) *Recorder {
	return &Recorder{
		limit: limit,
		index: -1,
		deb:   debounce.New(flushAfter),
		log:   log.With().Str("component", "history").Logger(),
	}
}

// Record diffs prev against next and buffers the resulting patch
// pair. Mutations that produced no observable change are skipped.
// The recorder never reconstructs prior state on its own: the caller
// hands it the exact (prev, next) pair, and any path that bypasses
// Record must Reset instead.
func (r *Recorder) Record(prev, next *domain.ProjectContent, description string) {
	forward, err := jsonpatch.CreateJSONPatch(next, prev)
	if err != nil {
		r.log.Error().Err(err).Msg("forward diff failed, dropping history step")
		return
	}
	if forward.Empty() {
		return
	}
	inverse, err := jsonpatch.CreateJSONPatch(prev, next)
	if err != nil {
		r.log.Error().Err(err).Msg("inverse diff failed, dropping history step")
		return
	}

	r.mu.Lock()
	r.pendingFwd = append(r.pendingFwd, json.RawMessage(forward.Raw()))
	r.pendingInv = append(r.pendingInv, json.RawMessage(inverse.Raw()))
	if r.pendingDesc == "" {
		r.pendingDesc = description
	}
	r.mu.Unlock()

	r.deb.Trigger(r.Flush)
}

// Flush commits the pending buffer as one history entry immediately.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitLocked()
}

func (r *Recorder) commitLocked() {
	if len(r.pendingFwd) == 0 {
		return
	}
	r.deb.Cancel()

	entry := &domain.HistoryEntry{
		Forward:     r.pendingFwd,
		Inverse:     r.pendingInv,
		Timestamp:   time.Now(),
		Description: r.pendingDesc,
	}
	r.pendingFwd = nil
	r.pendingInv = nil
	r.pendingDesc = ""

	// Committing off the tip discards the redo tail: linear history.
	r.entries = append(r.entries[:r.index+1], entry)
	if len(r.entries) > r.limit {
		r.entries = r.entries[1:]
	}
	r.index = len(r.entries) - 1
}

// Undo applies the current entry's inverse patches to the given
// document and returns the resulting snapshot. A pending buffer is
// committed first so sub-debounce edits stay reachable.
func (r *Recorder) Undo(current *domain.ProjectContent) (*domain.ProjectContent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitLocked()

	if r.index < 0 {
		return nil, false
	}
	entry := r.entries[r.index]
	doc, err := applyPatchSets(current, entry.Inverse, true)
	if err != nil {
		r.log.Error().Err(err).Msg("undo patch application failed")
		return nil, false
	}
	r.index--
	return doc, true
}

// Redo re-applies the next entry's forward patches.
func (r *Recorder) Redo(current *domain.ProjectContent) (*domain.ProjectContent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitLocked()

	if r.index >= len(r.entries)-1 {
		return nil, false
	}
	entry := r.entries[r.index+1]
	doc, err := applyPatchSets(current, entry.Forward, false)
	if err != nil {
		r.log.Error().Err(err).Msg("redo patch application failed")
		return nil, false
	}
	r.index++
	return doc, true
}

// Reset discards all entries and the pending buffer. Required on any
// bulk load or replace: a mutation that bypasses Record would
// otherwise leave entries whose base state no longer exists.
func (r *Recorder) Reset() {
	r.deb.Cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.index = -1
	r.pendingFwd = nil
	r.pendingInv = nil
	r.pendingDesc = ""
}

func (r *Recorder) CanUndo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index >= 0 || len(r.pendingFwd) > 0
}

func (r *Recorder) CanRedo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index < len(r.entries)-1
}

// Len reports the number of committed entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// applyPatchSets applies one RFC 6902 patch document per coalesced
// mutation. Forward sets apply in mutation order, inverse sets in
// reverse.
func applyPatchSets(doc *domain.ProjectContent, sets []json.RawMessage, reverse bool) (*domain.ProjectContent, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	ordered := sets
	if reverse {
		ordered = make([]json.RawMessage, len(sets))
		for i, s := range sets {
			ordered[len(sets)-1-i] = s
		}
	}
	for _, raw := range ordered {
		patch, err := applypatch.DecodePatch(raw)
		if err != nil {
			return nil, err
		}
		data, err = patch.Apply(data)
		if err != nil {
			return nil, err
		}
	}
	out := domain.NewProjectContent()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}
