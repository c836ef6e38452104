package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/pokedex/internal/domain"
)

type MessageType string

const (
	MessageTypeConnected       MessageType = "CONNECTED"
	MessageTypeEntryCreated    MessageType = "ENTRY_CREATED"
	MessageTypeEntryUpdated    MessageType = "ENTRY_UPDATED"
	MessageTypeEntryRolledBack MessageType = "ENTRY_ROLLED_BACK"
	MessageTypeEntryDeleted    MessageType = "ENTRY_DELETED"
	MessageTypePageLoaded      MessageType = "PAGE_LOADED"
)

var eventMessageTypes = map[domain.EventType]MessageType{
	domain.EventEntryCreated:    MessageTypeEntryCreated,
	domain.EventEntryUpdated:    MessageTypeEntryUpdated,
	domain.EventEntryRolledBack: MessageTypeEntryRolledBack,
	domain.EventEntryDeleted:    MessageTypeEntryDeleted,
	domain.EventPageLoaded:      MessageTypePageLoaded,
}

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Seq       int             `json:"seq,omitempty"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// NewEventMessage wraps a domain event. Unknown event types pass through
// with their own name.
func NewEventMessage(event domain.Event) (*Message, error) {
	msgType, ok := eventMessageTypes[event.Type]
	if !ok {
		msgType = MessageType(event.Type)
	}
	return NewMessage(msgType, event)
}

type ConnectedPayload struct {
	ClientID string `json:"clientId"`
}
