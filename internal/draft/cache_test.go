package draft

import (
	"testing"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/rs/zerolog"
)

func newTestCache(t *testing.T, retention int) *Cache {
	t.Helper()
	c := Open(":memory:", retention, zerolog.Nop())
	if !c.Enabled() {
		t.Fatal("in-memory cache failed to open")
	}
	t.Cleanup(c.Close)
	return c
}

func draftDoc(pageID string) *domain.ProjectContent {
	doc := domain.NewProjectContent()
	doc.Pages = append(doc.Pages, &domain.Page{ID: pageID, Number: 1, Blocks: []*domain.Block{}})
	return doc
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("doc-1", draftDoc("p1"))
	c.Flush()

	entry := c.Get("doc-1")
	if entry == nil {
		t.Fatal("draft missing after flush")
	}
	if !entry.Dirty {
		t.Error("fresh draft should be dirty")
	}
	if len(entry.Content.Pages) != 1 || entry.Content.Pages[0].ID != "p1" {
		t.Errorf("draft content corrupted: %+v", entry.Content)
	}
	if time.Since(entry.Timestamp) > time.Minute {
		t.Errorf("implausible draft timestamp %v", entry.Timestamp)
	}
}

func TestCache_LatestPutWins(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("doc-1", draftDoc("old"))
	c.Put("doc-1", draftDoc("new"))
	c.Flush()

	entry := c.Get("doc-1")
	if entry == nil {
		t.Fatal("draft missing")
	}
	if entry.Content.Pages[0].ID != "new" {
		t.Errorf("stale draft survived: %s", entry.Content.Pages[0].ID)
	}
}

func TestCache_MarkSyncedRetainsSnapshot(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("doc-1", draftDoc("p1"))
	c.MarkSynced("doc-1")
	c.Flush()

	entry := c.Get("doc-1")
	if entry == nil {
		t.Fatal("draft missing")
	}
	if entry.Dirty {
		t.Error("dirty flag not cleared")
	}
	if len(entry.Content.Pages) != 1 {
		t.Error("snapshot dropped on mark-synced")
	}
}

func TestCache_MissingDraft(t *testing.T) {
	c := newTestCache(t, 10)
	if c.Get("nope") != nil {
		t.Error("expected nil for unknown document")
	}
}

func TestCache_ConflictDetection(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("doc-1", draftDoc("p1"))
	c.Flush()
	local := c.Get("doc-1").Timestamp

	// Remote older than the local draft: local edits would be lost.
	report := c.Conflict("doc-1", local.Add(-time.Minute))
	if !report.Conflict {
		t.Error("newer local draft not reported as conflict")
	}
	if !report.LocalDirty {
		t.Error("dirty flag missing from report")
	}

	// Remote newer: the draft is stale, no conflict.
	report = c.Conflict("doc-1", local.Add(time.Minute))
	if report.Conflict {
		t.Error("older local draft reported as conflict")
	}

	// No draft at all.
	report = c.Conflict("doc-2", time.Now())
	if report.Conflict || report.LocalDirty {
		t.Error("absent draft reported as conflict")
	}
}

func TestCache_SettingsNamespace(t *testing.T) {
	c := newTestCache(t, 10)

	settings := domain.DefaultProjectSettings()
	settings.TargetLang = "fr"
	c.PutSettings("doc-1", settings)
	c.Flush()

	got := c.GetSettings("doc-1")
	if got == nil || got.TargetLang != "fr" {
		t.Errorf("settings draft not restored: %+v", got)
	}
	if c.Get("doc-1") != nil {
		t.Error("settings write leaked into the content namespace")
	}
}

func TestCache_PruneKeepsNewestAndActive(t *testing.T) {
	c := newTestCache(t, 2)

	for _, id := range []string{"d1", "d2", "d3", "d4"} {
		c.Put(id, draftDoc(id))
		c.Flush()
		time.Sleep(2 * time.Millisecond) // distinct millisecond timestamps
	}

	c.Prune("d1") // active document, oldest draft

	if c.Get("d1") == nil {
		t.Error("active document draft pruned")
	}
	if c.Get("d2") != nil {
		t.Error("draft beyond retention survived")
	}
	if c.Get("d3") == nil || c.Get("d4") == nil {
		t.Error("newest drafts within retention pruned")
	}
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("doc-1", draftDoc("p1"))
	c.PutSettings("doc-1", domain.DefaultProjectSettings())
	c.Flush()

	c.Delete("doc-1")

	if c.Get("doc-1") != nil || c.GetSettings("doc-1") != nil {
		t.Error("delete left draft data behind")
	}
}

func TestCache_DisabledIsNoOp(t *testing.T) {
	c := Open("/nonexistent-dir/sub/drafts.db", 10, zerolog.Nop())
	if c.Enabled() {
		t.Fatal("cache opened against an unwritable path")
	}

	// Every operation must degrade silently.
	c.Put("doc-1", draftDoc("p1"))
	c.PutSettings("doc-1", domain.DefaultProjectSettings())
	c.MarkSynced("doc-1")
	c.Flush()
	c.Prune("doc-1")
	c.Delete("doc-1")
	c.Close()

	if c.Get("doc-1") != nil || c.GetSettings("doc-1") != nil {
		t.Error("disabled cache returned data")
	}
	report := c.Conflict("doc-1", time.Now())
	if report == nil || report.Conflict {
		t.Error("disabled cache should report no conflict")
	}
}
