package activity

import (
	"time"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

// Kind names what happened.
type Kind string

const (
	KindSwipe              Kind = "swipe"
	KindEventCreated       Kind = "event_created"
	KindEventDeleted       Kind = "event_deleted"
	KindParticipantRemoved Kind = "participant_removed"
	KindProfileUpdated     Kind = "profile_updated"
)

// Event is the payload delivered to every sink.
type Event struct {
	Kind       Kind      `json:"kind"`
	UserID     string    `json:"user_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	Action     string    `json:"action,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with the current UTC time.
func NewEvent(kind Kind, userID, eventID string) Event {
	return Event{
		Kind:       kind,
		UserID:     userID,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
	}
}

// NewSwipe records a like or skip on a feed candidate.
func NewSwipe(userID, eventID string, action domain.FeedAction) Event {
	evt := NewEvent(KindSwipe, userID, eventID)
	evt.Action = string(action)
	return evt
}

// attributes are the routing hints sinks attach next to the JSON body.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"kind": string(e.Kind)}
	if e.Action != "" {
		attrs["action"] = e.Action
	}
	return attrs
}
