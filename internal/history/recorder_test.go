package history

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/rs/zerolog"
)

// longDebounce keeps the timer from firing during a test so commits
// happen only where the test asks for them.
const longDebounce = time.Hour

func makeDoc(pageIDs ...string) *domain.ProjectContent {
	doc := domain.NewProjectContent()
	for i, id := range pageIDs {
		doc.Pages = append(doc.Pages, &domain.Page{ID: id, Number: i + 1, Blocks: []*domain.Block{}})
	}
	return doc
}

func mustEqual(t *testing.T, got, want *domain.ProjectContent) {
	t.Helper()
	gb, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}
	wb, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("marshal want: %v", err)
	}
	if string(gb) != string(wb) {
		t.Fatalf("documents differ\ngot:  %s\nwant: %s", gb, wb)
	}
}

func TestRecorder_UndoRedoRoundTrip(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1")
	v1 := makeDoc("p1", "p2")

	r.Record(v0, v1, "add page")
	r.Flush()

	undone, ok := r.Undo(v1)
	if !ok {
		t.Fatal("Undo failed")
	}
	mustEqual(t, undone, v0)

	redone, ok := r.Redo(undone)
	if !ok {
		t.Fatal("Redo failed")
	}
	mustEqual(t, redone, v1)
}

func TestRecorder_RoundTripAcrossMutationShapes(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1", "p2")
	v0.Pages[0].Blocks = append(v0.Pages[0].Blocks, &domain.Block{
		ID: "b1", Kind: domain.BlockKindText, Text: &domain.TextContent{Source: "hello"},
	})
	v0.WordGroups = append(v0.WordGroups, &domain.WordGroup{ID: "w1", BlockID: "b1"})

	// Edit block content.
	v1 := v0.Clone()
	v1.Pages[0].Blocks[0].Text.Target = "bonjour"
	// Delete a page.
	v2 := v1.Clone()
	v2.Pages = v2.Pages[:1]
	// Remove the word group.
	v3 := v2.Clone()
	v3.WordGroups = nil

	states := []*domain.ProjectContent{v0, v1, v2, v3}
	for i := 1; i < len(states); i++ {
		r.Record(states[i-1], states[i], fmt.Sprintf("step %d", i))
		r.Flush()
	}

	current := v3
	for i := len(states) - 2; i >= 0; i-- {
		undone, ok := r.Undo(current)
		if !ok {
			t.Fatalf("Undo to state %d failed", i)
		}
		mustEqual(t, undone, states[i])
		current = undone
	}
	for i := 1; i < len(states); i++ {
		redone, ok := r.Redo(current)
		if !ok {
			t.Fatalf("Redo to state %d failed", i)
		}
		mustEqual(t, redone, states[i])
		current = redone
	}
}

func TestRecorder_CoalescesWithinDebounceWindow(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1")
	v1 := makeDoc("p1", "p2")
	v2 := makeDoc("p1", "p2", "p3")

	r.Record(v0, v1, "add page")
	r.Record(v1, v2, "add page")
	if r.Len() != 0 {
		t.Fatalf("entries committed before flush: %d", r.Len())
	}
	if !r.CanUndo() {
		t.Error("pending buffer should be undoable")
	}
	r.Flush()

	if r.Len() != 1 {
		t.Fatalf("expected 1 coalesced entry, got %d", r.Len())
	}
	undone, ok := r.Undo(v2)
	if !ok {
		t.Fatal("Undo failed")
	}
	mustEqual(t, undone, v0)
}

func TestRecorder_DebounceTimerCommits(t *testing.T) {
	r := NewRecorder(50, 30*time.Millisecond, zerolog.Nop())

	r.Record(makeDoc("p1"), makeDoc("p1", "p2"), "add page")
	if r.Len() != 0 {
		t.Fatal("entry committed before debounce elapsed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Len() != 1 {
		t.Fatalf("expected timer commit, got %d entries", r.Len())
	}
}

func TestRecorder_EmptyDiffSkipped(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1")
	r.Record(v0, v0.Clone(), "noop")
	r.Flush()

	if r.Len() != 0 || r.CanUndo() {
		t.Error("no-change mutation produced a history entry")
	}
}

func TestRecorder_CapEvictsOldest(t *testing.T) {
	const limit = 50
	r := NewRecorder(limit, longDebounce, zerolog.Nop())

	states := []*domain.ProjectContent{makeDoc()}
	ids := []string{}
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("p%d", i))
		states = append(states, makeDoc(ids...))
		r.Record(states[i], states[i+1], "add page")
		r.Flush()
	}

	if r.Len() != limit {
		t.Fatalf("expected %d entries, got %d", limit, r.Len())
	}

	current := states[len(states)-1]
	for i := 0; i < limit; i++ {
		undone, ok := r.Undo(current)
		if !ok {
			t.Fatalf("undo %d failed", i)
		}
		current = undone
	}
	// Ten oldest steps were evicted; the floor is state 10.
	mustEqual(t, current, states[10])

	if _, ok := r.Undo(current); ok {
		t.Error("undo past the evicted floor succeeded")
	}
}

func TestRecorder_NewEditTruncatesRedoTail(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1")
	v1 := makeDoc("p1", "p2")
	v2 := makeDoc("p1", "p2", "p3")

	r.Record(v0, v1, "a")
	r.Flush()
	r.Record(v1, v2, "b")
	r.Flush()

	undone, ok := r.Undo(v2)
	if !ok {
		t.Fatal("Undo failed")
	}
	if !r.CanRedo() {
		t.Fatal("redo should be available after undo")
	}

	// Diverge: a fresh edit from the undone state.
	v1b := makeDoc("p1", "px")
	r.Record(undone, v1b, "diverge")
	r.Flush()

	if r.CanRedo() {
		t.Error("redo tail survived a divergent edit")
	}
	if r.Len() != 2 {
		t.Errorf("expected linear history of 2, got %d", r.Len())
	}
	back, ok := r.Undo(v1b)
	if !ok {
		t.Fatal("Undo after divergence failed")
	}
	mustEqual(t, back, v1)
	back, ok = r.Undo(back)
	if !ok {
		t.Fatal("second Undo failed")
	}
	mustEqual(t, back, v0)
}

func TestRecorder_UndoCommitsPendingFirst(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	v0 := makeDoc("p1")
	v1 := makeDoc("p1", "p2")
	r.Record(v0, v1, "add page")

	// No explicit Flush: Undo must still see the buffered step.
	undone, ok := r.Undo(v1)
	if !ok {
		t.Fatal("Undo skipped the pending buffer")
	}
	mustEqual(t, undone, v0)
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder(50, longDebounce, zerolog.Nop())

	r.Record(makeDoc("p1"), makeDoc("p1", "p2"), "add page")
	r.Flush()
	r.Record(makeDoc("p1", "p2"), makeDoc("p1", "p2", "p3"), "add page")

	r.Reset()

	if r.CanUndo() || r.CanRedo() || r.Len() != 0 {
		t.Error("reset left history behind")
	}
	if _, ok := r.Undo(makeDoc("p1")); ok {
		t.Error("undo succeeded after reset")
	}
}
