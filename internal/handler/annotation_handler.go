package handler

import (
	"encoding/json"
	"net/http"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/service"
	"synoptic-engine/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type AnnotationHandler struct {
	sessions    *service.Manager
	annotations *service.AnnotationService
	validate    *validator.Validate
}

func NewAnnotationHandler(sessions *service.Manager, annotations *service.AnnotationService) *AnnotationHandler {
	return &AnnotationHandler{
		sessions:    sessions,
		annotations: annotations,
		validate:    validator.New(),
	}
}

func (h *AnnotationHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
	}
	return session, ok
}

// Word groups

func (h *AnnotationHandler) AddWordGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddWordGroupRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddWordGroup(req), "Block not found")
}

func (h *AnnotationHandler) UpdateWordGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateWordGroupRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdateWordGroup(mux.Vars(r)["group"], req), "Word group not found")
}

func (h *AnnotationHandler) DeleteWordGroup(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	applied(w, session, session.DeleteWordGroup(mux.Vars(r)["group"]), "Word group not found")
}

// Arrows

func (h *AnnotationHandler) AddArrow(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddArrowRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddArrow(req), "Word group not found")
}

func (h *AnnotationHandler) UpdateArrow(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateArrowRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdateArrow(mux.Vars(r)["arrow"], req), "Arrow not found")
}

func (h *AnnotationHandler) DeleteArrow(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	applied(w, session, session.DeleteArrow(mux.Vars(r)["arrow"]), "Arrow not found")
}

// Notes

func (h *AnnotationHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddNoteRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddNote(req), "Block not found")
}

func (h *AnnotationHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateNoteRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdateNote(mux.Vars(r)["note"], req), "Note not found")
}

func (h *AnnotationHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	applied(w, session, session.DeleteNote(mux.Vars(r)["note"]), "Note not found")
}

// Append takes a pre-built batch of annotations and merges it in as a
// single history step.
func (h *AnnotationHandler) Append(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	var payload domain.AnnotationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if err := h.annotations.Append(documentID, &payload); err != nil {
		if err == service.ErrSessionNotFound {
			response.NotFound(w, "No open session for document")
			return
		}
		response.BadRequest(w, err.Error())
		return
	}
	response.Success(w, map[string]string{"message": "Annotations appended"})
}

// Generate runs the configured annotation provider against a block and
// merges whatever it returns.
func (h *AnnotationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	req, ok := decode[domain.AnnotationRequest](w, r, h.validate)
	if !ok {
		return
	}
	if _, err := h.annotations.Annotate(r.Context(), documentID, req); err != nil {
		switch err {
		case service.ErrNoProvider:
			response.Error(w, http.StatusNotImplemented, "No annotation provider configured")
		case service.ErrSessionNotFound:
			response.NotFound(w, "No open session for document")
		default:
			response.Error(w, http.StatusBadGateway, "Annotation failed: "+err.Error())
		}
		return
	}
	session, ok := h.sessions.Get(documentID)
	if !ok {
		response.NotFound(w, "No open session for document")
		return
	}
	response.Success(w, session.Document())
}
