package service

import (
	"time"

	"github.com/google/uuid"
)

// Event actions broadcast after a write commits
const (
	ActionProductCreated = "product_created"
	ActionProductUpdated = "product_updated"
	ActionProductDeleted = "product_deleted"
	ActionCreditCreated  = "credit_created"
	ActionPaymentAdded   = "payment_added"
	ActionStatusChanged  = "product_status_changed"
)

// Event is the payload pushed to websocket clients
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Action    string      `json:"action"`
	Profile   string      `json:"profile"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher fans change events out to listeners. Publish must not block the caller.
type Publisher interface {
	Publish(event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// NopPublisher discards every event
var NopPublisher Publisher = nopPublisher{}

func newEvent(profile, kind, action, message string, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      kind,
		Action:    action,
		Profile:   profile,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}
}
