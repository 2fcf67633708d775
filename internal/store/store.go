// Package store owns the canonical in-memory document value for one
// editing session and exposes the typed mutation surface over it.
//
// Mutations are clone-on-write: each applied mutation produces a new
// snapshot, so a snapshot handed to a caller never changes after the
// fact. Mutations addressing a missing target are logged no-ops.
//
// The session layer serializes mutations (single logical writer);
// the store's own lock makes the snapshot accessors safe against
// concurrent readers, who otherwise race the pointer swap in mutate.
package store

import (
	"sync"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/rs/zerolog"
)

type Store struct {
	// mu guards the snapshot pointers. Mutations swap them under the
	// write lock; accessors used by concurrent request handlers take
	// the read lock.
	mu       sync.RWMutex
	doc      *domain.ProjectContent
	settings *domain.ProjectSettings

	subs         []func(*domain.ProjectContent)
	settingsSubs []func(*domain.ProjectSettings)

	log zerolog.Logger
	now func() time.Time
}

func New(log zerolog.Logger) *Store {
	return &Store{
		doc:      domain.NewProjectContent(),
		settings: domain.DefaultProjectSettings(),
		log:      log.With().Str("component", "store").Logger(),
		now:      time.Now,
	}
}

// Document returns the current snapshot. Callers must treat it as
// read-only; the store never mutates a returned value.
func (s *Store) Document() *domain.ProjectContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Store) Settings() *domain.ProjectSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Subscribe registers an observer invoked with the new snapshot
// after every applied document mutation. Observers are independent:
// they are invoked in registration order but none can veto or block
// another's view of the sequence.
func (s *Store) Subscribe(fn func(*domain.ProjectContent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) SubscribeSettings(fn func(*domain.ProjectSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settingsSubs = append(s.settingsSubs, fn)
}

// Load replaces both content and settings wholesale, as on document
// open. Callers are responsible for resetting any history recorder:
// a bulk load invalidates its notion of previous state.
func (s *Store) Load(content *domain.ProjectContent, settings *domain.ProjectSettings) {
	if content == nil {
		content = domain.NewProjectContent()
	}
	if settings == nil {
		settings = domain.DefaultProjectSettings()
	}
	s.mu.Lock()
	s.doc = content.Clone()
	s.settings = settings.Clone()
	doc, set := s.doc, s.settings
	s.mu.Unlock()
	s.notify(doc)
	s.notifySettings(set)
}

// Replace swaps in a full document snapshot. Used by undo/redo,
// which construct the replacement by patch application.
func (s *Store) Replace(content *domain.ProjectContent) {
	if content == nil {
		return
	}
	s.mu.Lock()
	s.doc = content
	s.mu.Unlock()
	s.notify(content)
}

func (s *Store) UpdateSettings(req *domain.UpdateSettingsRequest) bool {
	if req == nil {
		return false
	}
	next := s.Settings().Clone()
	if req.SourceLang != nil {
		next.SourceLang = *req.SourceLang
	}
	if req.TargetLang != nil {
		next.TargetLang = *req.TargetLang
	}
	if req.PageSize != nil {
		next.PageSize = *req.PageSize
	}
	if req.HeaderText != nil {
		next.HeaderText = *req.HeaderText
	}
	if req.FooterText != nil {
		next.FooterText = *req.FooterText
	}
	if req.ShowHeader != nil {
		next.ShowHeader = *req.ShowHeader
	}
	if req.ShowFooter != nil {
		next.ShowFooter = *req.ShowFooter
	}
	if req.Theme != nil {
		next.Theme = *req.Theme
	}
	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
	s.notifySettings(next)
	return true
}

// mutate clones the current document, applies fn to the clone, and
// commits the clone only when fn reports the target was found. A
// false return leaves the previous snapshot untouched and observers
// silent.
func (s *Store) mutate(op string, fn func(doc *domain.ProjectContent) bool) bool {
	next := s.Document().Clone()
	if !fn(next) {
		s.log.Warn().Str("op", op).Msg("mutation target missing, ignoring")
		return false
	}
	s.mu.Lock()
	s.doc = next
	s.mu.Unlock()
	s.notify(next)
	return true
}

// notify runs outside the lock so an observer may read the store.
func (s *Store) notify(doc *domain.ProjectContent) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(doc)
	}
}

func (s *Store) notifySettings(set *domain.ProjectSettings) {
	s.mu.RLock()
	subs := s.settingsSubs
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(set)
	}
}
