// Package draft keeps durable local document snapshots independent
// of remote sync, so unsynced edits survive reloads, crashes, and
// lost connectivity. Writes go through an async channel so slow disk
// I/O never stalls the mutation path. When the backing store cannot
// be opened, every operation degrades to a logged no-op.
package draft

import (
	"database/sql"
	"encoding/json"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS drafts (
	document_id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	dirty INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_ts ON drafts(timestamp);
CREATE TABLE IF NOT EXISTS draft_settings (
	document_id TEXT PRIMARY KEY,
	settings TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
`

type op struct {
	documentID string
	content    []byte
	settings   []byte
	timestamp  time.Time
	markSynced bool
	barrier    chan struct{}
}

type Cache struct {
	db        *sql.DB
	retention int
	ch        chan op
	done      chan struct{}
	log       zerolog.Logger
}

// Open creates the cache at path (":memory:" works for tests). On
// failure it returns a disabled cache whose operations are no-ops,
// never an error: local caching is a best-effort tier.
func Open(path string, retention int, log zerolog.Logger) *Cache {
	l := log.With().Str("component", "draft").Logger()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		l.Error().Err(err).Str("path", path).Msg("draft cache unavailable, disabling")
		return &Cache{log: l}
	}
	// Single connection: sqlite has one writer anyway, and a pooled
	// ":memory:" database would otherwise differ per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		l.Error().Err(err).Msg("draft schema init failed, disabling")
		db.Close()
		return &Cache{log: l}
	}

	c := &Cache{
		db:        db,
		retention: retention,
		ch:        make(chan op, 256),
		done:      make(chan struct{}),
		log:       l,
	}
	go c.flushLoop()
	return c
}

func (c *Cache) Enabled() bool { return c.db != nil }

// Put queues a dirty snapshot for the document. Non-blocking; if the
// buffer is full the snapshot is dropped (a newer one is coming).
func (c *Cache) Put(documentID string, content *domain.ProjectContent) {
	if c.db == nil {
		return
	}
	data, err := json.Marshal(content)
	if err != nil {
		c.log.Error().Err(err).Msg("draft snapshot marshal failed")
		return
	}
	c.enqueue(op{documentID: documentID, content: data, timestamp: time.Now()})
}

// PutSettings persists document settings in their own namespace.
func (c *Cache) PutSettings(documentID string, settings *domain.ProjectSettings) {
	if c.db == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		c.log.Error().Err(err).Msg("draft settings marshal failed")
		return
	}
	c.enqueue(op{documentID: documentID, settings: data, timestamp: time.Now()})
}

// MarkSynced flips the draft's dirty flag after a confirmed remote
// save. The snapshot itself is retained for later comparison.
func (c *Cache) MarkSynced(documentID string) {
	if c.db == nil {
		return
	}
	c.enqueue(op{documentID: documentID, markSynced: true})
}

// Flush blocks until every previously queued write has been applied.
func (c *Cache) Flush() {
	if c.db == nil {
		return
	}
	barrier := make(chan struct{})
	c.ch <- op{barrier: barrier}
	<-barrier
}

func (c *Cache) enqueue(o op) {
	select {
	case c.ch <- o:
	default:
		c.log.Warn().Msg("draft write buffer full, dropping snapshot")
	}
}

func (c *Cache) flushLoop() {
	defer close(c.done)
	for o := range c.ch {
		switch {
		case o.barrier != nil:
			close(o.barrier)
		case o.markSynced:
			c.exec(`UPDATE drafts SET dirty = 0 WHERE document_id = ?`, o.documentID)
		case o.settings != nil:
			c.exec(`INSERT INTO draft_settings (document_id, settings, timestamp) VALUES (?, ?, ?)
				ON CONFLICT(document_id) DO UPDATE SET settings = excluded.settings, timestamp = excluded.timestamp`,
				o.documentID, string(o.settings), o.timestamp.UnixMilli())
		default:
			c.exec(`INSERT INTO drafts (document_id, content, timestamp, dirty) VALUES (?, ?, ?, 1)
				ON CONFLICT(document_id) DO UPDATE SET content = excluded.content, timestamp = excluded.timestamp, dirty = 1`,
				o.documentID, string(o.content), o.timestamp.UnixMilli())
		}
	}
}

func (c *Cache) exec(query string, args ...interface{}) {
	if _, err := c.db.Exec(query, args...); err != nil {
		c.log.Error().Err(err).Msg("draft write failed")
	}
}

// Get returns the stored draft for the document, or nil when absent
// or the cache is disabled.
func (c *Cache) Get(documentID string) *domain.DraftEntry {
	if c.db == nil {
		return nil
	}
	var (
		data  string
		ts    int64
		dirty int
	)
	err := c.db.QueryRow(`SELECT content, timestamp, dirty FROM drafts WHERE document_id = ?`, documentID).
		Scan(&data, &ts, &dirty)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		c.log.Error().Err(err).Msg("draft read failed")
		return nil
	}
	content := domain.NewProjectContent()
	if err := json.Unmarshal([]byte(data), content); err != nil {
		c.log.Error().Err(err).Msg("draft snapshot corrupt")
		return nil
	}
	return &domain.DraftEntry{
		DocumentID: documentID,
		Content:    content,
		Timestamp:  time.UnixMilli(ts),
		Dirty:      dirty != 0,
	}
}

func (c *Cache) GetSettings(documentID string) *domain.ProjectSettings {
	if c.db == nil {
		return nil
	}
	var data string
	err := c.db.QueryRow(`SELECT settings FROM draft_settings WHERE document_id = ?`, documentID).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Error().Err(err).Msg("draft settings read failed")
		}
		return nil
	}
	var settings domain.ProjectSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		c.log.Error().Err(err).Msg("draft settings corrupt")
		return nil
	}
	return &settings
}

// Conflict compares the local draft against the remote timestamp. A
// strictly newer local draft is reported as a conflict; resolution
// is always the caller's decision.
func (c *Cache) Conflict(documentID string, remoteUpdatedAt time.Time) *domain.ConflictReport {
	report := &domain.ConflictReport{
		DocumentID:      documentID,
		RemoteTimestamp: remoteUpdatedAt,
	}
	entry := c.Get(documentID)
	if entry == nil {
		return report
	}
	report.LocalTimestamp = entry.Timestamp
	report.LocalDirty = entry.Dirty
	report.Conflict = entry.Timestamp.After(remoteUpdatedAt)
	return report
}

// Prune deletes drafts beyond the retention cap, newest first kept.
// The draft for the active document is never pruned.
func (c *Cache) Prune(activeDocumentID string) {
	if c.db == nil {
		return
	}
	_, err := c.db.Exec(`
		DELETE FROM drafts WHERE document_id != ? AND document_id NOT IN (
			SELECT document_id FROM drafts ORDER BY timestamp DESC LIMIT ?
		)`, activeDocumentID, c.retention)
	if err != nil {
		c.log.Error().Err(err).Msg("draft prune failed")
	}
}

// Delete removes a document's draft and cached settings outright
// (explicit "discard local copy" resolution).
func (c *Cache) Delete(documentID string) {
	if c.db == nil {
		return
	}
	c.exec(`DELETE FROM drafts WHERE document_id = ?`, documentID)
	c.exec(`DELETE FROM draft_settings WHERE document_id = ?`, documentID)
}

// Close drains queued writes and shuts the cache down.
func (c *Cache) Close() {
	if c.db == nil {
		return
	}
	close(c.ch)
	<-c.done
	c.db.Close()
}
