package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/draft"

	"github.com/rs/zerolog"
)

type mockProjectRepo struct {
	mu       sync.Mutex
	project  *domain.RemoteProject
	fetchErr error
	saves    []*domain.ProjectContent
}

func newMockProjectRepo() *mockProjectRepo {
	content := domain.NewProjectContent()
	content.Pages = append(content.Pages, &domain.Page{ID: "remote-p1", Number: 1, Blocks: []*domain.Block{}})
	return &mockProjectRepo{
		project: &domain.RemoteProject{
			ID:        "doc-1",
			Content:   content,
			Settings:  domain.DefaultProjectSettings(),
			UpdatedAt: time.Now().Add(-time.Hour),
		},
	}
}

func (m *mockProjectRepo) Fetch(ctx context.Context, id string) (*domain.RemoteProject, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.project, nil
}

func (m *mockProjectRepo) Save(ctx context.Context, id string, content *domain.ProjectContent, settings *domain.ProjectSettings) error {
	m.mu.Lock()
	m.saves = append(m.saves, content)
	m.mu.Unlock()
	return nil
}

func (m *mockProjectRepo) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *mockProjectRepo) lastSave() *domain.ProjectContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

type mockSink struct {
	mu         sync.Mutex
	docEvents  int
	setEvents  int
	syncEvents int
	conflicts  int
}

func (s *mockSink) DocumentChanged(string, *domain.ProjectContent) {
	s.mu.Lock()
	s.docEvents++
	s.mu.Unlock()
}

func (s *mockSink) SettingsChanged(string, *domain.ProjectSettings) {
	s.mu.Lock()
	s.setEvents++
	s.mu.Unlock()
}

func (s *mockSink) SyncStatusChanged(string, domain.SyncState) {
	s.mu.Lock()
	s.syncEvents++
	s.mu.Unlock()
}

func (s *mockSink) ConflictDetected(string, *domain.ConflictReport) {
	s.mu.Lock()
	s.conflicts++
	s.mu.Unlock()
}

// testOptions picks hour-long debounces so nothing fires on a timer
// mid-test.
func testOptions() Options {
	return Options{
		HistoryLimit:    50,
		HistoryDebounce: time.Hour,
		SaveDebounce:    time.Hour,
		OpTimeout:       time.Second,
		DraftInterval:   0,
	}
}

func newTestManager(t *testing.T, repo *mockProjectRepo, sink EventSink) *Manager {
	t.Helper()
	drafts := draft.Open(":memory:", 10, zerolog.Nop())
	if !drafts.Enabled() {
		t.Fatal("draft cache failed to open")
	}
	t.Cleanup(drafts.Close)
	return NewManager(repo, drafts, sink, testOptions(), zerolog.Nop())
}

func contentJSON(t *testing.T, doc *domain.ProjectContent) string {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestManager_OpenHydratesSession(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)

	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	doc := session.Document()
	if len(doc.Pages) != 1 || doc.Pages[0].ID != "remote-p1" {
		t.Errorf("session not hydrated from remote: %+v", doc.Pages)
	}
	if session.CanUndo() {
		t.Error("hydration must not be an undoable step")
	}
	if session.SyncState().Status != domain.SyncSaved {
		t.Errorf("status after open = %s", session.SyncState().Status)
	}
	if repo.saveCount() != 0 {
		t.Error("opening a document triggered a save")
	}
}

func TestManager_OpenReturnsExistingSession(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)

	first, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("reopening returned a different session")
	}
}

func TestManager_OpenFailsWhenRemoteDown(t *testing.T) {
	repo := newMockProjectRepo()
	repo.fetchErr = errors.New("remote unavailable")
	m := newTestManager(t, repo, nil)

	if _, err := m.Open(context.Background(), "doc-1"); err == nil {
		t.Fatal("expected Open to fail")
	}
	if _, ok := m.Get("doc-1"); ok {
		t.Error("failed open left a session registered")
	}
}

func TestSession_UndoRedoThroughSession(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}

	base := contentJSON(t, session.Document())

	if !session.AddPage(&domain.AddPageRequest{}) {
		t.Fatal("AddPage failed")
	}
	if !session.AddBlock(1, &domain.AddBlockRequest{
		Kind: domain.BlockKindText,
		Text: &domain.TextContent{Source: "hello", Target: "bonjour"},
	}) {
		t.Fatal("AddBlock failed")
	}
	afterEdits := contentJSON(t, session.Document())

	if !session.CanUndo() {
		t.Fatal("edits not recorded")
	}
	// Each mutation committed separately is undone separately; the
	// hour-long debounce keeps them in one pending buffer, so one
	// undo reverts both.
	if !session.Undo() {
		t.Fatal("Undo failed")
	}
	if got := contentJSON(t, session.Document()); got != base {
		t.Errorf("undo did not restore the loaded state\ngot:  %s\nwant: %s", got, base)
	}
	if !session.CanRedo() {
		t.Fatal("redo unavailable after undo")
	}
	if !session.Redo() {
		t.Fatal("Redo failed")
	}
	if got := contentJSON(t, session.Document()); got != afterEdits {
		t.Error("redo did not restore the edited state")
	}
}

func TestSession_RejectedMutationRecordsNothing(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}

	if session.DeletePage(9) {
		t.Error("out-of-range delete applied")
	}
	if session.CanUndo() {
		t.Error("rejected mutation is undoable")
	}
}

func TestSession_SettingsBypassHistory(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}

	lang := "fr"
	if !session.UpdateSettings(&domain.UpdateSettingsRequest{TargetLang: &lang}) {
		t.Fatal("UpdateSettings failed")
	}
	if session.Settings().TargetLang != "fr" {
		t.Error("settings not applied")
	}
	if session.CanUndo() {
		t.Error("settings change entered document history")
	}
}

func TestSession_UndoFlowsToObservers(t *testing.T) {
	repo := newMockProjectRepo()
	sink := &mockSink{}
	m := newTestManager(t, repo, sink)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}

	session.AddPage(&domain.AddPageRequest{})
	session.Undo()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	// The mutation and the undo replacement; hydration precedes the
	// subscription wiring and is never broadcast.
	if sink.docEvents != 2 {
		t.Errorf("expected 2 document events, got %d", sink.docEvents)
	}
}

func TestManager_CloseFlushesAndUnregisters(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	session.AddPage(&domain.AddPageRequest{})

	if err := m.Close(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if repo.saveCount() != 1 {
		t.Fatalf("expected exactly the final flush, got %d saves", repo.saveCount())
	}
	if got := repo.lastSave(); len(got.Pages) != 2 {
		t.Errorf("final flush carried %d pages, want 2", len(got.Pages))
	}
	if _, ok := m.Get("doc-1"); ok {
		t.Error("session still registered after close")
	}
	if err := m.Close(context.Background(), "doc-1"); err != ErrSessionNotFound {
		t.Errorf("second close = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_OpenReportsDraftConflict(t *testing.T) {
	repo := newMockProjectRepo()
	sink := &mockSink{}
	m := newTestManager(t, repo, sink)

	// A dirty local draft newer than the remote snapshot.
	m.drafts.Put("doc-1", domain.NewProjectContent())
	m.drafts.Flush()

	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	report := session.Conflict()
	if report == nil || !report.Conflict {
		t.Fatalf("expected conflict report, got %+v", report)
	}
	if !report.LocalDirty {
		t.Error("dirty flag missing")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.conflicts != 1 {
		t.Errorf("conflict event broadcasts = %d, want 1", sink.conflicts)
	}
}

func TestManager_ConflictStatusWithoutSession(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)

	report := m.ConflictStatus("doc-9", time.Now())
	if report == nil || report.Conflict {
		t.Errorf("absent draft should report no conflict: %+v", report)
	}
}

type mockProvider struct {
	payload *domain.AnnotationPayload
	err     error
}

func (p *mockProvider) Annotate(ctx context.Context, req *domain.AnnotationRequest) (*domain.AnnotationPayload, error) {
	return p.payload, p.err
}

func TestAnnotationService_Annotate(t *testing.T) {
	repo := newMockProjectRepo()
	m := newTestManager(t, repo, nil)
	session, err := m.Open(context.Background(), "doc-1")
	if err != nil {
		t.Fatal(err)
	}

	provider := &mockProvider{payload: &domain.AnnotationPayload{
		WordGroups: []*domain.WordGroup{{BlockID: "remote-b1", Label: "noun"}},
	}}
	svc := NewAnnotationService(provider, m)

	req := &domain.AnnotationRequest{
		SourceText: "hello", TargetText: "bonjour",
		SourceLang: "en", TargetLang: "fr",
	}
	if _, err := svc.Annotate(context.Background(), "doc-1", req); err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if len(session.Document().WordGroups) != 1 {
		t.Error("provider output not appended to document")
	}
	if !session.CanUndo() {
		t.Error("appended annotations should be one undoable step")
	}

	if _, err := svc.Annotate(context.Background(), "doc-missing", req); err != ErrSessionNotFound {
		t.Errorf("unknown document = %v, want ErrSessionNotFound", err)
	}

	none := NewAnnotationService(nil, m)
	if _, err := none.Annotate(context.Background(), "doc-1", req); err != ErrNoProvider {
		t.Errorf("missing provider = %v, want ErrNoProvider", err)
	}

	failing := NewAnnotationService(&mockProvider{err: errors.New("model overloaded")}, m)
	if _, err := failing.Annotate(context.Background(), "doc-1", req); err == nil {
		t.Error("provider failure swallowed")
	}
}
