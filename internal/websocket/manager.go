package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"synoptic-engine/internal/domain"

	"github.com/rs/zerolog"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager tracks subscriber connections per document and fans engine
// events out to them. It implements the engine's event sink.
type Manager struct {
	clients      map[string]*Client
	docIndex     map[string]map[string]bool
	clientsMutex sync.RWMutex

	Register      chan *Client
	Unregister    chan *Client
	HandleMessage chan *ClientMessage

	maxConnPerDoc int
	writeWait     time.Duration
	pongWait      time.Duration
	pingPeriod    time.Duration

	messageHandler MessageHandler
	log            zerolog.Logger
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

func NewManager(maxConnPerDoc int, writeWait, pongWait, pingPeriod time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		clients:       make(map[string]*Client),
		docIndex:      make(map[string]map[string]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		HandleMessage: make(chan *ClientMessage),
		maxConnPerDoc: maxConnPerDoc,
		writeWait:     writeWait,
		pongWait:      pongWait,
		pingPeriod:    pingPeriod,
		log:           log.With().Str("component", "websocket").Logger(),
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.docIndex[client.DocumentID] == nil {
		m.docIndex[client.DocumentID] = make(map[string]bool)
	}

	if len(m.docIndex[client.DocumentID]) >= m.maxConnPerDoc {
		m.log.Warn().Str("document_id", client.DocumentID).Msg("max subscribers reached for document")
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.docIndex[client.DocumentID][client.ID] = true

	m.log.Debug().Str("client_id", client.ID).Str("document_id", client.DocumentID).Msg("subscriber registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.docIndex[client.DocumentID], client.ID)

		if len(m.docIndex[client.DocumentID]) == 0 {
			delete(m.docIndex, client.DocumentID)
		}

		close(client.Send)
		m.log.Debug().Str("client_id", client.ID).Msg("subscriber unregistered")
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.log.Error().Err(err).Msg("malformed subscriber message")
		return
	}

	if m.messageHandler != nil {
		if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, &msg); err != nil {
			m.log.Error().Err(err).Msg("subscriber message handling failed")
		}
	}
}

// BroadcastToDocument sends a message to every subscriber of the
// document. Subscribers with a full send buffer are dropped rather
// than allowed to backpressure the engine.
func (m *Manager) BroadcastToDocument(documentID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	clientIDs, exists := m.docIndex[documentID]
	if !exists {
		return nil
	}

	for clientID := range clientIDs {
		client := m.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			m.log.Warn().Str("client_id", clientID).Msg("subscriber send buffer full, disconnecting")
			go func(c *Client) { m.Unregister <- c }(client)
		}
	}

	return nil
}

func (m *Manager) SubscriberCount(documentID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.docIndex[documentID]; exists {
		return len(clients)
	}
	return 0
}

// DocumentChanged implements the engine event sink.
func (m *Manager) DocumentChanged(documentID string, content *domain.ProjectContent) {
	msg, err := NewMessage(TypeDocumentChanged, DocumentChangedPayload{DocumentID: documentID, Content: content})
	if err != nil {
		return
	}
	m.BroadcastToDocument(documentID, msg)
}

func (m *Manager) SettingsChanged(documentID string, settings *domain.ProjectSettings) {
	msg, err := NewMessage(TypeSettingsChanged, SettingsChangedPayload{DocumentID: documentID, Settings: settings})
	if err != nil {
		return
	}
	m.BroadcastToDocument(documentID, msg)
}

func (m *Manager) SyncStatusChanged(documentID string, state domain.SyncState) {
	msg, err := NewMessage(TypeSyncStatus, SyncStatusPayload{DocumentID: documentID, State: state})
	if err != nil {
		return
	}
	m.BroadcastToDocument(documentID, msg)
}

func (m *Manager) ConflictDetected(documentID string, report *domain.ConflictReport) {
	msg, err := NewMessage(TypeConflict, ConflictPayload{DocumentID: documentID, Report: report})
	if err != nil {
		return
	}
	m.BroadcastToDocument(documentID, msg)
}
