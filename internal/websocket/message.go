package websocket

import (
	"encoding/json"
	"time"

	"synoptic-engine/internal/domain"
)

type MessageType string

const (
	TypeDocumentChanged MessageType = "document_changed"
	TypeSettingsChanged MessageType = "settings_changed"
	TypeSyncStatus      MessageType = "sync_status"
	TypeConflict        MessageType = "conflict"
	TypeForceSave       MessageType = "force_save"
	TypeAck             MessageType = "ack"
	TypePing            MessageType = "ping"
	TypePong            MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type DocumentChangedPayload struct {
	DocumentID string                 `json:"document_id"`
	Content    *domain.ProjectContent `json:"content"`
}

type SettingsChangedPayload struct {
	DocumentID string                  `json:"document_id"`
	Settings   *domain.ProjectSettings `json:"settings"`
}

type SyncStatusPayload struct {
	DocumentID string           `json:"document_id"`
	State      domain.SyncState `json:"state"`
}

type ConflictPayload struct {
	DocumentID string                 `json:"document_id"`
	Report     *domain.ConflictReport `json:"report"`
}

type AckPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
