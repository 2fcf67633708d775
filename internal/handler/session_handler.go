package handler

import (
	"net/http"
	"time"

	"synoptic-engine/internal/service"
	"synoptic-engine/pkg/response"

	"github.com/gorilla/mux"
)

type SessionHandler struct {
	sessions *service.Manager
}

func NewSessionHandler(sessions *service.Manager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionView struct {
	DocumentID string      `json:"document_id"`
	Content    interface{} `json:"content"`
	Settings   interface{} `json:"settings"`
	SyncState  interface{} `json:"sync_state"`
	Conflict   interface{} `json:"conflict,omitempty"`
	CanUndo    bool        `json:"can_undo"`
	CanRedo    bool        `json:"can_redo"`
}

func viewOf(s *service.Session) sessionView {
	v := sessionView{
		DocumentID: s.DocumentID(),
		Content:    s.Document(),
		Settings:   s.Settings(),
		SyncState:  s.SyncState(),
		CanUndo:    s.CanUndo(),
		CanRedo:    s.CanRedo(),
	}
	if c := s.Conflict(); c != nil && c.Conflict {
		v.Conflict = c
	}
	return v
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	if documentID == "" {
		response.BadRequest(w, "Document ID is required")
		return
	}

	session, err := h.sessions.Open(r.Context(), documentID)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to load document: "+err.Error())
		return
	}

	response.Success(w, viewOf(session))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	response.Success(w, viewOf(session))
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	if err := h.sessions.Close(r.Context(), documentID); err != nil {
		if err == service.ErrSessionNotFound {
			response.NotFound(w, "No open session for document")
			return
		}
		// Session is gone either way; the final flush failed.
		response.Error(w, http.StatusBadGateway, "Final save failed: "+err.Error())
		return
	}
	response.Success(w, map[string]string{"message": "Session closed"})
}

func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	applied := session.Undo()
	response.Success(w, map[string]interface{}{"applied": applied, "can_undo": session.CanUndo(), "can_redo": session.CanRedo()})
}

func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	applied := session.Redo()
	response.Success(w, map[string]interface{}{"applied": applied, "can_undo": session.CanUndo(), "can_redo": session.CanRedo()})
}

func (h *SessionHandler) ForceSave(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	if err := session.ForceSave(r.Context()); err != nil {
		response.Error(w, http.StatusBadGateway, "Save failed: "+err.Error())
		return
	}
	response.Success(w, session.SyncState())
}

// ConflictStatus compares the local draft timestamp to a remote
// updated_at supplied by the caller. Usable before opening a session.
func (h *SessionHandler) ConflictStatus(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	remoteRaw := r.URL.Query().Get("remote_updated_at")
	remoteUpdatedAt, err := time.Parse(time.RFC3339, remoteRaw)
	if err != nil {
		response.BadRequest(w, "remote_updated_at must be RFC 3339")
		return
	}
	response.Success(w, h.sessions.ConflictStatus(documentID, remoteUpdatedAt))
}

func (h *SessionHandler) Orphans(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	response.Success(w, session.OrphanedAnnotations())
}
