package service

import (
	"context"
	"sync"
	"time"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/draft"
	"synoptic-engine/internal/history"
	"synoptic-engine/internal/repository"
	"synoptic-engine/internal/store"
	"synoptic-engine/internal/syncer"

	"github.com/rs/zerolog"
)

// EventSink receives engine events for the upward subscribe
// interface. A nil sink disables broadcasting.
type EventSink interface {
	DocumentChanged(documentID string, content *domain.ProjectContent)
	SettingsChanged(documentID string, settings *domain.ProjectSettings)
	SyncStatusChanged(documentID string, state domain.SyncState)
	ConflictDetected(documentID string, report *domain.ConflictReport)
}

type Options struct {
	HistoryLimit    int
	HistoryDebounce time.Duration
	SaveDebounce    time.Duration
	OpTimeout       time.Duration
	DraftInterval   time.Duration
}

// Manager opens and tracks document sessions, one active session per
// document.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	repo   repository.ProjectRepository
	drafts *draft.Cache
	sink   EventSink
	opts   Options
	log    zerolog.Logger
}

func NewManager(repo repository.ProjectRepository, drafts *draft.Cache, sink EventSink, opts Options, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
		drafts:   drafts,
		sink:     sink,
		opts:     opts,
		log:      log.With().Str("component", "sessions").Logger(),
	}
}

// Open loads the document from remote storage, hydrates a fresh
// session, computes the draft conflict report, and wires the
// observer fan-out (history recording, debounced sync, draft
// persistence, event broadcast). Reopening an already open document
// returns the existing session.
func (m *Manager) Open(ctx context.Context, documentID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[documentID]; ok {
		return existing, nil
	}

	log := m.log.With().Str("document_id", documentID).Logger()
	st := store.New(log)
	rec := history.NewRecorder(m.opts.HistoryLimit, m.opts.HistoryDebounce, log)
	coord := syncer.NewCoordinator(documentID, m.repo, m.opts.SaveDebounce, m.opts.OpTimeout, log)

	project, err := coord.Load(ctx)
	if err != nil {
		return nil, err
	}

	// Hydrate before subscribing so the load itself does not echo
	// back into a save or a draft write.
	st.Load(project.Content, project.Settings)
	rec.Reset()

	session := &Session{
		documentID:     documentID,
		store:          st,
		history:        rec,
		syncer:         coord,
		drafts:         m.drafts,
		conflict:       m.drafts.Conflict(documentID, project.UpdatedAt),
		stopDraftTimer: make(chan struct{}),
		log:            log,
	}

	st.Subscribe(func(next *domain.ProjectContent) {
		coord.DocumentChanged(next)
	})
	st.Subscribe(func(next *domain.ProjectContent) {
		m.drafts.Put(documentID, next)
	})
	st.SubscribeSettings(func(settings *domain.ProjectSettings) {
		coord.SettingsChanged(settings)
		m.drafts.PutSettings(documentID, settings)
	})
	coord.OnSaved(func(time.Time) {
		m.drafts.MarkSynced(documentID)
	})
	if m.sink != nil {
		st.Subscribe(func(next *domain.ProjectContent) {
			m.sink.DocumentChanged(documentID, next)
		})
		st.SubscribeSettings(func(settings *domain.ProjectSettings) {
			m.sink.SettingsChanged(documentID, settings)
		})
		coord.Subscribe(func(state domain.SyncState) {
			m.sink.SyncStatusChanged(documentID, state)
		})
		if session.conflict != nil && session.conflict.Conflict {
			m.sink.ConflictDetected(documentID, session.conflict)
		}
	}

	go session.runDraftTimer(m.opts.DraftInterval)

	m.sessions[documentID] = session
	log.Info().Msg("session opened")
	return session, nil
}

func (m *Manager) Get(documentID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[documentID]
	return s, ok
}

// Close flushes and discards the session for the document.
func (m *Manager) Close(ctx context.Context, documentID string) error {
	m.mu.Lock()
	session, ok := m.sessions[documentID]
	delete(m.sessions, documentID)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	err := session.Close(ctx)
	m.log.Info().Str("document_id", documentID).Msg("session closed")
	return err
}

// CloseAll force-flushes every open session, used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Close(ctx); err != nil {
			m.log.Error().Err(err).Str("document_id", s.DocumentID()).Msg("final flush failed")
		}
	}
}

// ConflictStatus reports whether the local draft for a document is
// strictly newer than the given remote timestamp. Works with or
// without an open session.
func (m *Manager) ConflictStatus(documentID string, remoteUpdatedAt time.Time) *domain.ConflictReport {
	return m.drafts.Conflict(documentID, remoteUpdatedAt)
}
