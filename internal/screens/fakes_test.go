package screens

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/logger"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/services"
	"github.com/meetfeed/meetfeed-client/pkg/towns"
)

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.New(zap.New(core)), logs
}

func testTowns(t *testing.T) *towns.Registry {
	t.Helper()
	reg, err := towns.New([]towns.Town{
		{Name: "Москва", Hash: "msk"},
		{Name: "Казань", Hash: "kzn"},
	})
	if err != nil {
		t.Fatalf("towns.New: %v", err)
	}
	return reg
}

func errNotFound() error {
	return apierror.NewHTTPError(404, "GET", "/feed/me", []byte(`{"message":"No more events"}`))
}

func errBackend(status int, msg string) error {
	return apierror.NewHTTPError(status, "POST", "/x", []byte(`{"message":"`+msg+`"}`))
}

type fakeAuth struct {
	mu    sync.Mutex
	calls int
	sess  *domain.AuthSession
	err   error
}

func (f *fakeAuth) LoginTelegram(_ context.Context, initData string) (*domain.AuthSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.sess != nil {
		return f.sess, nil
	}
	return &domain.AuthSession{InitData: initData}, nil
}

type recordedAction struct {
	eventID string
	action  domain.FeedAction
}

type fakeFeed struct {
	mu        sync.Mutex
	queue     []domain.Event
	nextErr   error
	actionErr error
	towns     []string
	actions   []recordedAction
}

func (f *fakeFeed) Next(_ context.Context, townID, _, _ string) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.towns = append(f.towns, townID)
	if f.nextErr != nil {
		return domain.Event{}, f.nextErr
	}
	if len(f.queue) == 0 {
		return domain.Event{}, errNotFound()
	}
	evt := f.queue[0]
	f.queue = f.queue[1:]
	return evt, nil
}

func (f *fakeFeed) RecordAction(_ context.Context, eventID string, action domain.FeedAction) (services.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	f.actions = append(f.actions, recordedAction{eventID: eventID, action: action})
	return services.ActionResult{"ok": true}, nil
}

type fakeEvents struct {
	mu       sync.Mutex
	events   []domain.Event
	listErr  error
	opErr    error
	lists    int
	deleted  []string
	removed  [][2]string
	created  []services.EventInput
	detailed []string
}

func (f *fakeEvents) MyEvents(context.Context) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Event(nil), f.events...), nil
}

func (f *fakeEvents) Event(_ context.Context, id string) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailed = append(f.detailed, id)
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Event{}, errNotFound()
}

func (f *fakeEvents) Create(_ context.Context, in services.EventInput) (domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return domain.Event{}, f.opErr
	}
	f.created = append(f.created, in)
	return domain.Event{ID: "new-1", Title: in.Title, MaxAttendees: in.Capacity}, nil
}

func (f *fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return f.opErr
	}
	f.deleted = append(f.deleted, id)
	f.events = withoutEvent(f.events, id)
	return nil
}

func (f *fakeEvents) RemoveParticipant(_ context.Context, eventID, participantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return f.opErr
	}
	f.removed = append(f.removed, [2]string{eventID, participantID})
	return nil
}

type fakeProfile struct {
	mu       sync.Mutex
	me       []byte
	reply    []byte
	err      error
	loads    int
	payloads []services.Payload
}

func (f *fakeProfile) Me(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.me, nil
}

func (f *fakeProfile) Update(_ context.Context, p services.Payload) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, services.Clean(p))
	return f.reply, nil
}

type memJournal struct {
	mu    sync.Mutex
	swipe map[string]domain.FeedAction
}

func newMemJournal() *memJournal {
	return &memJournal{swipe: map[string]domain.FeedAction{}}
}

func (j *memJournal) LookupSwipe(userID, eventID string) (domain.FeedAction, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	a, ok := j.swipe[userID+"/"+eventID]
	return a, ok, nil
}

func (j *memJournal) RecordSwipe(userID, eventID string, action domain.FeedAction) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.swipe[userID+"/"+eventID] = action
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []activity.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, evt activity.Event) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}
