package entity

import "time"

// EventType identifies a domain event published to the message broker.
type EventType string

const (
	EventUserRegistered  EventType = "user.registered"
	EventPasswordChanged EventType = "user.password_changed"
	EventArticleCreated  EventType = "article.created"
	EventArticleDeleted  EventType = "article.deleted"
	EventReactionAdded   EventType = "article.reaction_added"
	EventReactionRemoved EventType = "article.reaction_removed"
)

// Event is the envelope put on the wire for every domain event.
type Event struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Type:      t,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// AuditEntry is one row of the authentication audit trail.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}
