package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
)

const pathMyEvents = "/events/me"

// ErrMissingID is returned when an operation needs an id and got a blank one.
var ErrMissingID = errors.New("id is required")

// EventInput is the body of a create call. Nil optional fields are not sent.
type EventInput struct {
	Title       string
	Location    string
	StartsAt    string
	Capacity    int
	Description *string
	Image       *string
}

// Payload renders the input in the backend's field names.
func (in EventInput) Payload() Payload {
	return Payload{
		"title":       in.Title,
		"location":    in.Location,
		"starts_at":   in.StartsAt,
		"capacity":    in.Capacity,
		"description": optional(in.Description),
		"image":       optional(in.Image),
	}
}

// EventPatch is the body of an update call. Only non-nil fields are sent.
type EventPatch struct {
	Title       *string
	Location    *string
	StartsAt    *string
	Capacity    *int
	Description *string
	Image       *string
}

// Payload renders the patch in the backend's field names.
func (p EventPatch) Payload() Payload {
	out := Payload{
		"title":       optional(p.Title),
		"location":    optional(p.Location),
		"starts_at":   optional(p.StartsAt),
		"description": optional(p.Description),
		"image":       optional(p.Image),
		"capacity":    Undefined,
	}
	if p.Capacity != nil {
		out["capacity"] = *p.Capacity
	}
	return out
}

func optional(s *string) any {
	if s == nil {
		return Undefined
	}
	return *s
}

// EventsService manages the caller's own events.
type EventsService struct {
	client httpclient.Doer
	ex     executor
}

// NewEventsService builds the events façade over the private client.
func NewEventsService(private httpclient.Doer, log Logger) *EventsService {
	return &EventsService{client: private, ex: executor{service: "eventsService", log: ensureLogger(log)}}
}

// MyEvents lists events created by the current user.
func (s *EventsService) MyEvents(ctx context.Context) ([]domain.Event, error) {
	return execute(ctx, s.ex, "getMyEvents", func(ctx context.Context) ([]domain.Event, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodGet, Path: pathMyEvents})
		if err != nil {
			return nil, err
		}
		return NormalizeEvents(resp.Body())
	})
}

// Event fetches a single event by id.
func (s *EventsService) Event(ctx context.Context, id string) (domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Event{}, ErrMissingID
	}
	return execute(ctx, s.ex, "getEvent", func(ctx context.Context) (domain.Event, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodGet, Path: "/events/" + url.PathEscape(id)})
		if err != nil {
			return domain.Event{}, err
		}
		return NormalizeEvent(resp.Body())
	})
}

// Create posts a new event.
func (s *EventsService) Create(ctx context.Context, in EventInput) (domain.Event, error) {
	return s.CreatePayload(ctx, in.Payload())
}

// CreatePayload posts a new event from a raw payload; Undefined keys are dropped.
func (s *EventsService) CreatePayload(ctx context.Context, p Payload) (domain.Event, error) {
	return execute(ctx, s.ex, "createEvent", func(ctx context.Context) (domain.Event, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodPost, Path: pathMyEvents, Body: Clean(p)})
		if err != nil {
			return domain.Event{}, err
		}
		return NormalizeEvent(resp.Body())
	})
}

// Update patches one of the caller's events.
func (s *EventsService) Update(ctx context.Context, id string, patch EventPatch) (domain.Event, error) {
	return s.UpdatePayload(ctx, id, patch.Payload())
}

// UpdatePayload patches an event from a raw payload; Undefined keys are dropped.
func (s *EventsService) UpdatePayload(ctx context.Context, id string, p Payload) (domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Event{}, ErrMissingID
	}
	return execute(ctx, s.ex, "updateEvent", func(ctx context.Context) (domain.Event, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodPatch, Path: myEventPath(id), Body: Clean(p)})
		if err != nil {
			return domain.Event{}, err
		}
		return NormalizeEvent(resp.Body())
	})
}

// Delete removes one of the caller's events.
func (s *EventsService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	_, err := execute(ctx, s.ex, "deleteEvent", func(ctx context.Context) (struct{}, error) {
		_, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodDelete, Path: myEventPath(id)})
		return struct{}{}, err
	})
	return err
}

// RemoveParticipant drops a participant from one of the caller's events.
func (s *EventsService) RemoveParticipant(ctx context.Context, eventID, participantID string) error {
	if strings.TrimSpace(eventID) == "" || strings.TrimSpace(participantID) == "" {
		return ErrMissingID
	}
	_, err := execute(ctx, s.ex, "deleteParticipant", func(ctx context.Context) (struct{}, error) {
		path := myEventPath(eventID) + "/participants/" + url.PathEscape(participantID)
		_, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodDelete, Path: path})
		return struct{}{}, err
	})
	return err
}

func myEventPath(id string) string {
	return pathMyEvents + "/" + url.PathEscape(id)
}
