package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"synoptic-engine/internal/domain"
	"synoptic-engine/internal/service"
	"synoptic-engine/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// MutationHandler exposes the editing operations of an open session.
// Every route takes the document id; a missing index or id inside the
// document is reported as 404 without touching the state.
type MutationHandler struct {
	sessions *service.Manager
	validate *validator.Validate
}

func NewMutationHandler(sessions *service.Manager) *MutationHandler {
	return &MutationHandler{
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *MutationHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	session, ok := h.sessions.Get(mux.Vars(r)["id"])
	if !ok {
		response.NotFound(w, "No open session for document")
	}
	return session, ok
}

func decode[T any](w http.ResponseWriter, r *http.Request, v *validator.Validate) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return nil, false
	}
	if err := v.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return nil, false
	}
	return &req, true
}

func pathInt(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		response.BadRequest(w, key+" must be an integer")
		return 0, false
	}
	return n, true
}

func applied(w http.ResponseWriter, s *service.Session, ok bool, missing string) {
	if !ok {
		response.NotFound(w, missing)
		return
	}
	response.Success(w, map[string]interface{}{"content": s.Document(), "can_undo": s.CanUndo(), "can_redo": s.CanRedo()})
}

// Pages

func (h *MutationHandler) AddPage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddPageRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddPage(req), "Insertion index out of range")
}

func (h *MutationHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	req, ok := decode[domain.UpdatePageRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdatePage(index, req), "Page not found")
}

func (h *MutationHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	applied(w, session, session.DeletePage(index), "Page not found")
}

func (h *MutationHandler) MovePage(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.MovePageRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.MovePage(req.From, req.To), "Page index out of range")
}

// Blocks

func (h *MutationHandler) AddBlock(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	req, ok := decode[domain.AddBlockRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddBlock(page, req), "Page not found")
}

func (h *MutationHandler) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateBlockRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdateBlock(page, mux.Vars(r)["block"], req), "Block not found")
}

func (h *MutationHandler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	applied(w, session, session.DeleteBlock(page, mux.Vars(r)["block"]), "Block not found")
}

func (h *MutationHandler) ReorderBlock(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	req, ok := decode[domain.ReorderBlockRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.ReorderBlock(page, req.From, req.To), "Block index out of range")
}

func (h *MutationHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	page, ok := pathInt(w, r, "page")
	if !ok {
		return
	}
	req, ok := decode[domain.ApplyPresetRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.ApplyPreset(page, mux.Vars(r)["block"], req.PresetID), "Block or preset not found")
}

// Style presets

func (h *MutationHandler) AddStylePreset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddStylePresetRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddStylePreset(req), "Preset not added")
}

func (h *MutationHandler) UpdateStylePreset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateStylePresetRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.UpdateStylePreset(mux.Vars(r)["preset"], req), "Preset not found")
}

func (h *MutationHandler) DeleteStylePreset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	applied(w, session, session.DeleteStylePreset(mux.Vars(r)["preset"]), "Preset not found")
}

func (h *MutationHandler) ReorderStylePreset(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.ReorderPresetRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.ReorderStylePreset(req.From, req.To), "Preset index out of range")
}

// Stamps

func (h *MutationHandler) AddStamp(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.AddStampRequest](w, r, h.validate)
	if !ok {
		return
	}
	applied(w, session, session.AddStamp(req), "Stamp not added")
}

func (h *MutationHandler) DeleteStamp(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	applied(w, session, session.DeleteStamp(mux.Vars(r)["stamp"]), "Stamp not found")
}

// Settings

func (h *MutationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	req, ok := decode[domain.UpdateSettingsRequest](w, r, h.validate)
	if !ok {
		return
	}
	session.UpdateSettings(req)
	response.Success(w, session.Settings())
}
