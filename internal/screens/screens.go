// Package screens holds headless view models: the state each mini app view
// keeps and the rules for when fetched data may be applied to it.
package screens

import (
	"context"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/logger"
	"github.com/meetfeed/meetfeed-client/internal/session"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/services"
)

// Authenticator performs the Telegram login.
type Authenticator interface {
	LoginTelegram(ctx context.Context, initData string) (*domain.AuthSession, error)
}

// EventsAPI is the events façade as screens use it.
type EventsAPI interface {
	MyEvents(ctx context.Context) ([]domain.Event, error)
	Event(ctx context.Context, id string) (domain.Event, error)
	Create(ctx context.Context, in services.EventInput) (domain.Event, error)
	Delete(ctx context.Context, id string) error
	RemoveParticipant(ctx context.Context, eventID, participantID string) error
}

// FeedAPI is the feed façade as screens use it.
type FeedAPI interface {
	Next(ctx context.Context, townID, fromDay, toDay string) (domain.Event, error)
	RecordAction(ctx context.Context, eventID string, action domain.FeedAction) (services.ActionResult, error)
}

// ProfileAPI is the profile façade as screens use it.
type ProfileAPI interface {
	Me(ctx context.Context) ([]byte, error)
	Update(ctx context.Context, p services.Payload) ([]byte, error)
}

// TownResolver maps town names to feed hashes.
type TownResolver interface {
	HashFor(name string) (string, bool)
	Suggest(prefix string) []string
}

// Journal remembers which feed candidates each user already swiped.
type Journal interface {
	LookupSwipe(userID, eventID string) (domain.FeedAction, bool, error)
	RecordSwipe(userID, eventID string, action domain.FeedAction) error
}

// Publisher delivers activity events.
type Publisher interface {
	Publish(ctx context.Context, evt activity.Event) (int, error)
}

// Deps are the collaborators shared by every screen. Zero values are valid
// except for the API fields a given screen needs.
type Deps struct {
	Auth     Authenticator
	Events   EventsAPI
	Feed     FeedAPI
	Profile  ProfileAPI
	Towns    TownResolver
	Journal  Journal
	Activity Publisher
	Session  *session.Store
	Logger   logger.Logger
}

// base carries the cross-screen helpers.
type base struct {
	name     string
	log      logger.Logger
	activity Publisher
	session  *session.Store
}

func newBase(name string, d Deps) base {
	log := d.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	sess := d.Session
	if sess == nil {
		sess = session.New()
	}
	return base{name: name, log: log, activity: d.Activity, session: sess}
}

func (b base) userID() string {
	if s := b.session.Get(); s != nil {
		return s.UserID
	}
	return ""
}

// publish delivers an activity event. Delivery problems are logged and never
// surface to the screen.
func (b base) publish(ctx context.Context, evt activity.Event) {
	if b.activity == nil {
		return
	}
	if evt.UserID == "" {
		evt.UserID = b.userID()
	}
	if _, err := b.activity.Publish(ctx, evt); err != nil {
		b.log.WarnObj("activity publish failed", "screen_activity_error", map[string]any{
			"screen": b.name,
			"kind":   evt.Kind,
			"error":  err.Error(),
		})
	}
}

// failure logs a screen-level error and returns the message to display.
func (b base) failure(op string, err error) string {
	msg := apierror.Message(err)
	b.log.WarnObj(b.name+" "+op+" failed", "screen_error", map[string]any{
		"screen":    b.name,
		"operation": op,
		"class":     apierror.Classify(err),
		"message":   msg,
	})
	return msg
}
