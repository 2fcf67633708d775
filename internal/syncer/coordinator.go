// Package syncer bridges the document store to remote persistence:
// load on open, debounced full-snapshot saves on change, at most one
// save in flight per document.
package syncer

import (
	"context"
	"sync"
	"time"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/repository"
	"synoptic-engine/pkg/debounce"

	"github.com/rs/zerolog"
)

type Coordinator struct {
	mu sync.Mutex

	docID string
	repo  repository.ProjectRepository
	state domain.SyncState

	deb       *debounce.Debouncer
	opTimeout time.Duration

	inFlight bool
	// pending records that a change arrived while a save was in
	// flight; exactly one follow-up save fires once it resolves.
	pending  bool
	saveDone chan struct{}

	latestContent  *domain.ProjectContent
	latestSettings *domain.ProjectSettings

	// subscribers and onSaved hooks are invoked while the lock is
	// held and must not call back into the coordinator.
	subs    []func(domain.SyncState)
	onSaved []func(savedAt time.Time)

	log zerolog.Logger
}

func NewCoordinator(docID string, repo repository.ProjectRepository, saveDebounce, opTimeout time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		docID:     docID,
		repo:      repo,
		state:     domain.SyncState{Status: domain.SyncIdle},
		deb:       debounce.New(saveDebounce),
		opTimeout: opTimeout,
		log:       log.With().Str("component", "syncer").Str("document_id", docID).Logger(),
	}
}

func (c *Coordinator) State() domain.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Subscribe(fn func(domain.SyncState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// OnSaved registers a hook fired after each confirmed remote save
// (drives the draft cache's mark-synced).
func (c *Coordinator) OnSaved(fn func(savedAt time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSaved = append(c.onSaved, fn)
}

// Load fetches the remote snapshot within the operation timeout. On
// failure the coordinator lands in the error state and the caller
// decides whether to retry; there is no automatic retry.
func (c *Coordinator) Load(ctx context.Context) (*domain.RemoteProject, error) {
	c.mu.Lock()
	c.setStatusLocked(domain.SyncLoading, "")
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	project, err := c.repo.Fetch(ctx, c.docID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setStatusLocked(domain.SyncError, err.Error())
		return nil, err
	}
	c.latestContent = project.Content
	c.latestSettings = project.Settings
	c.state.LastSyncedAt = project.UpdatedAt
	c.setStatusLocked(domain.SyncSaved, "")
	return project, nil
}

// DocumentChanged captures the latest snapshot and restarts the save
// debounce window. Changes inside the window coalesce into a single
// push carrying the full current state.
func (c *Coordinator) DocumentChanged(content *domain.ProjectContent) {
	c.mu.Lock()
	c.latestContent = content
	c.mu.Unlock()
	c.deb.Trigger(c.flush)
}

func (c *Coordinator) SettingsChanged(settings *domain.ProjectSettings) {
	c.mu.Lock()
	c.latestSettings = settings
	c.mu.Unlock()
	c.deb.Trigger(c.flush)
}

func (c *Coordinator) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status == domain.SyncLoading {
		// Load still resolving; try again after another window.
		c.deb.Trigger(c.flush)
		return
	}
	if c.inFlight {
		c.pending = true
		return
	}
	c.startSaveLocked()
}

func (c *Coordinator) startSaveLocked() {
	content := c.latestContent
	settings := c.latestSettings
	if content == nil {
		return
	}
	c.inFlight = true
	done := make(chan struct{})
	c.saveDone = done
	c.setStatusLocked(domain.SyncSaving, "")

	go func() {
		err := c.save(context.Background(), content, settings)
		c.finishSave(err, done)
	}()
}

func (c *Coordinator) save(ctx context.Context, content *domain.ProjectContent, settings *domain.ProjectSettings) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.repo.Save(ctx, c.docID, content, settings)
}

func (c *Coordinator) finishSave(err error, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false
	close(done)

	if err != nil {
		c.log.Error().Err(err).Msg("remote save failed")
		c.setStatusLocked(domain.SyncError, err.Error())
	} else {
		savedAt := time.Now()
		c.state.LastSyncedAt = savedAt
		c.setStatusLocked(domain.SyncSaved, "")
		for _, fn := range c.onSaved {
			fn(savedAt)
		}
	}

	if c.pending {
		c.pending = false
		c.startSaveLocked()
	}
}

// ForceSave cancels the debounce window and saves immediately. An
// in-flight save is awaited first: saves are never concurrent and
// never reordered.
func (c *Coordinator) ForceSave(ctx context.Context) error {
	c.deb.Cancel()

	for {
		c.mu.Lock()
		if !c.inFlight {
			break
		}
		done := c.saveDone
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	content := c.latestContent
	settings := c.latestSettings
	if content == nil {
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	done := make(chan struct{})
	c.saveDone = done
	c.pending = false
	c.setStatusLocked(domain.SyncSaving, "")
	c.mu.Unlock()

	err := c.save(ctx, content, settings)
	c.finishSave(err, done)
	return err
}

func (c *Coordinator) setStatusLocked(next domain.SyncStatus, message string) {
	if c.state.Status == next {
		c.state.Message = message
		return
	}
	if !c.state.Status.CanTransition(next) {
		c.log.Warn().
			Str("from", string(c.state.Status)).
			Str("to", string(next)).
			Msg("unexpected sync status transition")
	}
	c.state.Status = next
	c.state.Message = message
	for _, fn := range c.subs {
		fn(c.state)
	}
}
