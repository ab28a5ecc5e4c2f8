package screens

import (
	"context"
	"sync"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

// EventsState is a snapshot of the "my events" view.
type EventsState struct {
	Events   []domain.Event
	Selected *domain.Event
	Loading  bool
	Error    string
}

// Events lists and manages the caller's own events.
type Events struct {
	base
	api    EventsAPI
	list   Effect[[]domain.Event]
	detail Effect[domain.Event]

	mu sync.Mutex
	st EventsState
}

// NewEvents starts in the Loading state.
func NewEvents(d Deps) *Events {
	return &Events{
		base: newBase("events", d),
		api:  d.Events,
		st:   EventsState{Loading: true, Events: []domain.Event{}},
	}
}

// Load fetches the list.
func (e *Events) Load(ctx context.Context) error {
	e.update(func(st *EventsState) {
		st.Loading = true
		st.Error = ""
	})
	return e.list.Run(ctx, e.api.MyEvents,
		func(events []domain.Event) {
			e.update(func(st *EventsState) {
				st.Loading = false
				st.Events = events
			})
		},
		func(err error) {
			msg := e.failure("load events", err)
			e.update(func(st *EventsState) {
				st.Loading = false
				st.Error = msg
			})
		},
	)
}

// Select shows an event from the loaded list.
func (e *Events) Select(id string) bool {
	var found bool
	e.update(func(st *EventsState) {
		for i := range st.Events {
			if st.Events[i].ID == id {
				evt := st.Events[i]
				st.Selected = &evt
				found = true
				return
			}
		}
	})
	return found
}

// Detail fetches a single event and selects it.
func (e *Events) Detail(ctx context.Context, id string) (domain.Event, error) {
	var out domain.Event
	err := e.detail.Run(ctx,
		func(ctx context.Context) (domain.Event, error) { return e.api.Event(ctx, id) },
		func(evt domain.Event) {
			out = evt
			e.update(func(st *EventsState) { st.Selected = &evt })
		},
		func(err error) {
			msg := e.failure("load event", err)
			e.update(func(st *EventsState) { st.Error = msg })
		},
	)
	return out, err
}

// Delete removes an event, drops it locally and refetches the list.
func (e *Events) Delete(ctx context.Context, id string) error {
	if err := e.api.Delete(ctx, id); err != nil {
		if !apierror.IsCanceled(err) {
			msg := e.failure("delete event", err)
			e.update(func(st *EventsState) { st.Error = msg })
		}
		return err
	}

	e.update(func(st *EventsState) {
		st.Events = withoutEvent(st.Events, id)
		if st.Selected != nil && st.Selected.ID == id {
			st.Selected = nil
		}
	})
	e.publish(ctx, activity.NewEvent(activity.KindEventDeleted, "", id))
	return e.Load(ctx)
}

// RemoveParticipant drops an attendee from one of the caller's events and
// updates the list and the selected event in place.
func (e *Events) RemoveParticipant(ctx context.Context, eventID, participantID string) error {
	if err := e.api.RemoveParticipant(ctx, eventID, participantID); err != nil {
		if !apierror.IsCanceled(err) {
			msg := e.failure("remove participant", err)
			e.update(func(st *EventsState) { st.Error = msg })
		}
		return err
	}

	e.update(func(st *EventsState) {
		for i := range st.Events {
			if st.Events[i].ID == eventID {
				st.Events[i].Attendees = withoutParticipant(st.Events[i].Attendees, participantID)
			}
		}
		if st.Selected != nil && st.Selected.ID == eventID {
			sel := *st.Selected
			sel.Attendees = withoutParticipant(sel.Attendees, participantID)
			st.Selected = &sel
		}
	})
	evt := activity.NewEvent(activity.KindParticipantRemoved, "", eventID)
	evt.Action = participantID
	e.publish(ctx, evt)
	return nil
}

// DismissError clears the error banner.
func (e *Events) DismissError() {
	e.update(func(st *EventsState) { st.Error = "" })
}

// Unmount cancels in-flight fetches.
func (e *Events) Unmount() {
	e.list.Stop()
	e.detail.Stop()
}

// State returns a snapshot.
func (e *Events) State() EventsState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.st
	st.Events = append([]domain.Event(nil), e.st.Events...)
	if e.st.Selected != nil {
		sel := *e.st.Selected
		st.Selected = &sel
	}
	return st
}

func (e *Events) update(fn func(*EventsState)) {
	e.mu.Lock()
	fn(&e.st)
	e.mu.Unlock()
}

func withoutEvent(events []domain.Event, id string) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, evt := range events {
		if evt.ID != id {
			out = append(out, evt)
		}
	}
	return out
}

func withoutParticipant(ps []domain.Participant, id string) []domain.Participant {
	out := make([]domain.Participant, 0, len(ps))
	for _, p := range ps {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
