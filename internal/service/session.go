package service

import (
	"context"
	"sync"
	"time"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/draft"
	"synoptic-engine/internal/history"
	"synoptic-engine/internal/store"
	"synoptic-engine/internal/syncer"

	"github.com/rs/zerolog"
)

// Session is the engine context for one open document: the canonical
// store, its history recorder, the sync coordinator, and the draft
// cache, wired together per document open. All mutations funnel
// through the session, which serializes them (single logical writer)
// and records each applied one into history.
type Session struct {
	// mu serializes mutations: the store assumes a single logical
	// writer, and HTTP dispatch is concurrent.
	mu sync.Mutex

	documentID string

	store   *store.Store
	history *history.Recorder
	syncer  *syncer.Coordinator
	drafts  *draft.Cache

	conflict *domain.ConflictReport

	stopDraftTimer chan struct{}
	log            zerolog.Logger
}

func (s *Session) DocumentID() string { return s.documentID }

func (s *Session) Document() *domain.ProjectContent { return s.store.Document() }

func (s *Session) Settings() *domain.ProjectSettings { return s.store.Settings() }

func (s *Session) SyncState() domain.SyncState { return s.syncer.State() }

// Conflict returns the advisory report computed at open time, or nil
// when no local draft predated the session.
func (s *Session) Conflict() *domain.ConflictReport { return s.conflict }

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// apply runs one mutation against the store and, when it applied,
// records the (prev, next) pair into history. Mutations rejected by
// the store (missing targets) record nothing.
func (s *Session) apply(description string, fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.store.Document()
	if !fn() {
		return false
	}
	s.history.Record(prev, s.store.Document(), description)
	return true
}

func (s *Session) AddPage(req *domain.AddPageRequest) bool {
	return s.apply("add page", func() bool { return s.store.AddPage(req) })
}

func (s *Session) UpdatePage(index int, req *domain.UpdatePageRequest) bool {
	return s.apply("update page", func() bool { return s.store.UpdatePage(index, req) })
}

func (s *Session) DeletePage(index int) bool {
	return s.apply("delete page", func() bool { return s.store.DeletePage(index) })
}

func (s *Session) MovePage(from, to int) bool {
	return s.apply("move page", func() bool { return s.store.MovePage(from, to) })
}

func (s *Session) AddBlock(pageIndex int, req *domain.AddBlockRequest) bool {
	return s.apply("add block", func() bool { return s.store.AddBlock(pageIndex, req) })
}

func (s *Session) UpdateBlock(pageIndex int, blockID string, req *domain.UpdateBlockRequest) bool {
	return s.apply("update block", func() bool { return s.store.UpdateBlock(pageIndex, blockID, req) })
}

func (s *Session) DeleteBlock(pageIndex int, blockID string) bool {
	return s.apply("delete block", func() bool { return s.store.DeleteBlock(pageIndex, blockID) })
}

func (s *Session) ReorderBlock(pageIndex, from, to int) bool {
	return s.apply("reorder block", func() bool { return s.store.ReorderBlock(pageIndex, from, to) })
}

func (s *Session) ApplyPreset(pageIndex int, blockID, presetID string) bool {
	return s.apply("apply preset", func() bool { return s.store.ApplyPreset(pageIndex, blockID, presetID) })
}

func (s *Session) AddWordGroup(req *domain.AddWordGroupRequest) bool {
	return s.apply("add word group", func() bool { return s.store.AddWordGroup(req) })
}

func (s *Session) UpdateWordGroup(id string, req *domain.UpdateWordGroupRequest) bool {
	return s.apply("update word group", func() bool { return s.store.UpdateWordGroup(id, req) })
}

func (s *Session) DeleteWordGroup(id string) bool {
	return s.apply("delete word group", func() bool { return s.store.DeleteWordGroup(id) })
}

func (s *Session) AddArrow(req *domain.AddArrowRequest) bool {
	return s.apply("add arrow", func() bool { return s.store.AddArrow(req) })
}

func (s *Session) UpdateArrow(id string, req *domain.UpdateArrowRequest) bool {
	return s.apply("update arrow", func() bool { return s.store.UpdateArrow(id, req) })
}

func (s *Session) DeleteArrow(id string) bool {
	return s.apply("delete arrow", func() bool { return s.store.DeleteArrow(id) })
}

func (s *Session) AddNote(req *domain.AddNoteRequest) bool {
	return s.apply("add note", func() bool { return s.store.AddNote(req) })
}

func (s *Session) UpdateNote(id string, req *domain.UpdateNoteRequest) bool {
	return s.apply("update note", func() bool { return s.store.UpdateNote(id, req) })
}

func (s *Session) DeleteNote(id string) bool {
	return s.apply("delete note", func() bool { return s.store.DeleteNote(id) })
}

func (s *Session) AddStylePreset(req *domain.AddStylePresetRequest) bool {
	return s.apply("add style preset", func() bool { return s.store.AddStylePreset(req) })
}

func (s *Session) UpdateStylePreset(id string, req *domain.UpdateStylePresetRequest) bool {
	return s.apply("update style preset", func() bool { return s.store.UpdateStylePreset(id, req) })
}

func (s *Session) DeleteStylePreset(id string) bool {
	return s.apply("delete style preset", func() bool { return s.store.DeleteStylePreset(id) })
}

func (s *Session) ReorderStylePreset(from, to int) bool {
	return s.apply("reorder style preset", func() bool { return s.store.ReorderStylePreset(from, to) })
}

func (s *Session) AddStamp(req *domain.AddStampRequest) bool {
	return s.apply("add stamp", func() bool { return s.store.AddStamp(req) })
}

func (s *Session) DeleteStamp(id string) bool {
	return s.apply("delete stamp", func() bool { return s.store.DeleteStamp(id) })
}

func (s *Session) AppendAnnotations(payload *domain.AnnotationPayload) bool {
	return s.apply("append annotations", func() bool { return s.store.AppendAnnotations(payload) })
}

// UpdateSettings bypasses history: settings are not part of the
// undoable document value.
func (s *Session) UpdateSettings(req *domain.UpdateSettingsRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.UpdateSettings(req)
}

func (s *Session) OrphanedAnnotations() *domain.AnnotationPayload {
	return s.store.OrphanedAnnotations()
}

// Undo applies the most recent history entry's inverse patches and
// swaps the result in as the current document. The replacement flows
// through the normal observer fan-out, so undone state syncs and
// persists like any edit.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.history.Undo(s.store.Document())
	if !ok {
		return false
	}
	s.store.Replace(doc)
	return true
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.history.Redo(s.store.Document())
	if !ok {
		return false
	}
	s.store.Replace(doc)
	return true
}

// ForceSave cancels any pending save debounce and pushes the current
// state immediately.
func (s *Session) ForceSave(ctx context.Context) error {
	return s.syncer.ForceSave(ctx)
}

// Close performs the final forced flush and stops background work.
func (s *Session) Close(ctx context.Context) error {
	close(s.stopDraftTimer)
	err := s.syncer.ForceSave(ctx)
	s.drafts.Flush()
	s.drafts.Prune(s.documentID)
	return err
}

func (s *Session) runDraftTimer(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.drafts.Put(s.documentID, s.store.Document())
		case <-s.stopDraftTimer:
			return
		}
	}
}
