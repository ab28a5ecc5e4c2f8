package screens

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/services"
)

// FormField names an input of the create-event form.
type FormField string

const (
	FieldTitle        FormField = "title"
	FieldDate         FormField = "date"
	FieldTime         FormField = "time"
	FieldLocation     FormField = "location"
	FieldMaxAttendees FormField = "maxAttendees"
	FieldDescription  FormField = "description"
	FieldImage        FormField = "image"
)

// EventForm holds raw user input. Date is YYYY-MM-DD and Time is HH:MM.
type EventForm struct {
	Title        string
	Date         string
	Time         string
	Location     string
	MaxAttendees string
	Description  string
	Image        string
}

// CreateEventState is a snapshot of the form screen.
type CreateEventState struct {
	Form    EventForm
	Loading bool
	Error   string
	Created *domain.Event
}

// CreateEvent validates the form and posts a new event.
type CreateEvent struct {
	base
	api EventsAPI

	mu sync.Mutex
	st CreateEventState
}

// NewCreateEvent starts with an empty form.
func NewCreateEvent(d Deps) *CreateEvent {
	return &CreateEvent{base: newBase("create_event", d), api: d.Events}
}

// Change sets one field and clears the error banner.
func (c *CreateEvent) Change(field FormField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &c.st.Form
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDate:
		f.Date = value
	case FieldTime:
		f.Time = value
	case FieldLocation:
		f.Location = value
	case FieldMaxAttendees:
		f.MaxAttendees = value
	case FieldDescription:
		f.Description = value
	case FieldImage:
		f.Image = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	c.st.Error = ""
	return nil
}

// SetForm replaces the whole form.
func (c *CreateEvent) SetForm(form EventForm) {
	c.mu.Lock()
	c.st.Form = form
	c.st.Error = ""
	c.mu.Unlock()
}

// Validate checks the form in display order and returns the first problem.
func (form EventForm) Validate() *apierror.ValidationError {
	switch {
	case strings.TrimSpace(form.Title) == "":
		return apierror.NewValidation(string(FieldTitle), "Title is required")
	case strings.TrimSpace(form.Date) == "":
		return apierror.NewValidation(string(FieldDate), "Date is required")
	case strings.TrimSpace(form.Time) == "":
		return apierror.NewValidation(string(FieldTime), "Time is required")
	case strings.TrimSpace(form.Location) == "":
		return apierror.NewValidation(string(FieldLocation), "Location is required")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(form.MaxAttendees)); err != nil || n < 1 {
		return apierror.NewValidation(string(FieldMaxAttendees), "Maximum attendees must be at least 1")
	}
	return nil
}

// Input converts a valid form to the create payload. starts_at is the local
// wall time "<date>T<time>:00"; description and image are sent only when set.
func (form EventForm) Input() services.EventInput {
	capacity, _ := strconv.Atoi(strings.TrimSpace(form.MaxAttendees))
	in := services.EventInput{
		Title:    strings.TrimSpace(form.Title),
		Location: strings.TrimSpace(form.Location),
		StartsAt: strings.TrimSpace(form.Date) + "T" + strings.TrimSpace(form.Time) + ":00",
		Capacity: capacity,
	}
	if d := strings.TrimSpace(form.Description); d != "" {
		in.Description = &d
	}
	if img := strings.TrimSpace(form.Image); img != "" {
		in.Image = &img
	}
	return in
}

// Submit validates and creates the event. Validation failures never reach
// the network.
func (c *CreateEvent) Submit(ctx context.Context) (domain.Event, error) {
	c.mu.Lock()
	if c.st.Loading {
		c.mu.Unlock()
		return domain.Event{}, apierror.NewValidation("", "Event is already being created")
	}
	form := c.st.Form
	c.st.Error = ""
	if verr := form.Validate(); verr != nil {
		c.st.Error = verr.Message
		c.mu.Unlock()
		return domain.Event{}, verr
	}
	c.st.Loading = true
	c.mu.Unlock()

	in := form.Input()
	c.log.DebugObj("creating event", "create_event", map[string]any{
		"title":     in.Title,
		"starts_at": in.StartsAt,
		"capacity":  in.Capacity,
	})

	evt, err := c.api.Create(ctx, in)

	c.mu.Lock()
	c.st.Loading = false
	if err != nil {
		if !apierror.IsCanceled(err) {
			c.st.Error = c.failure("create event", err)
		}
		c.mu.Unlock()
		return domain.Event{}, err
	}
	c.st.Created = &evt
	c.st.Form = EventForm{}
	c.mu.Unlock()

	c.publish(ctx, activity.NewEvent(activity.KindEventCreated, "", evt.ID))
	return evt, nil
}

// DismissError clears the error banner.
func (c *CreateEvent) DismissError() {
	c.mu.Lock()
	c.st.Error = ""
	c.mu.Unlock()
}

// State returns a snapshot.
func (c *CreateEvent) State() CreateEventState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.st
	if c.st.Created != nil {
		created := *c.st.Created
		st.Created = &created
	}
	return st
}
