package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"synoptic-engine/internal/service"
	"synoptic-engine/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketHandler upgrades subscriber connections and answers the
// small set of client-initiated messages (ping, force_save).
type WebSocketHandler struct {
	manager  *websocket.Manager
	sessions *service.Manager
	upgrader ws.Upgrader
	log      zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, sessions *service.Manager, log zerolog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		manager:  manager,
		sessions: sessions,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
	manager.SetMessageHandler(h)
	return h
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	documentID := r.URL.Query().Get("document_id")
	if documentID == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}

	if _, ok := h.sessions.Get(documentID); !ok {
		http.Error(w, "no open session for document", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(uuid.New().String(), documentID, conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

func (h *WebSocketHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypePing:
		return h.reply(client, websocket.TypePong, nil)

	case websocket.TypeForceSave:
		session, ok := h.sessions.Get(client.DocumentID)
		if !ok {
			return service.ErrSessionNotFound
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := session.ForceSave(ctx); err != nil {
			return err
		}
		return h.reply(client, websocket.TypeAck, session.SyncState())

	default:
		return fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

func (h *WebSocketHandler) reply(client *websocket.Client, msgType websocket.MessageType, payload interface{}) error {
	out, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	data, err := out.Marshal()
	if err != nil {
		return err
	}
	select {
	case client.Send <- data:
		return nil
	default:
		return fmt.Errorf("subscriber send buffer full")
	}
}
