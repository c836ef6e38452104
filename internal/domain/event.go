package domain

// EventType names a change pushed to connected view clients
type EventType string

const (
	EventEntryCreated    EventType = "entry.created"
	EventEntryUpdated    EventType = "entry.updated"
	EventEntryRolledBack EventType = "entry.rolled_back"
	EventEntryDeleted    EventType = "entry.deleted"
	EventPageLoaded      EventType = "list.page_loaded"
)

type Event struct {
	Type  EventType `json:"type"`
	ID    string    `json:"id,omitempty"`
	Entry *Entry    `json:"entry,omitempty"`
	Count int       `json:"count,omitempty"`
	Error string    `json:"error,omitempty"`
}
