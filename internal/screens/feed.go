package screens

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

const (
	msgSelectTown  = "Please select a town"
	msgInvalidTown = "Invalid town selected"
)

// ErrNoCandidate is returned by Like and Skip when there is nothing to act on
// or an action is already in flight.
var ErrNoCandidate = errors.New("no feed candidate to act on")

// FeedState is a snapshot of the swipe feed.
type FeedState struct {
	Town              string
	Suggestions       []string
	Current           *domain.Event
	Fetching          bool
	Loading           bool
	NoEventsAvailable bool
	Error             string
}

// Feed serves one candidate event at a time for the selected town.
type Feed struct {
	base
	api     FeedAPI
	towns   TownResolver
	journal Journal
	effect  Effect[domain.Event]

	mu sync.Mutex
	st FeedState
}

// NewFeed builds the feed with an initial town (not fetched until Load).
func NewFeed(d Deps, town string) *Feed {
	return &Feed{
		base:    newBase("feed", d),
		api:     d.Feed,
		towns:   d.Towns,
		journal: d.Journal,
		st:      FeedState{Town: town},
	}
}

// SetTown switches towns, refreshes suggestions and loads the first candidate.
func (f *Feed) SetTown(ctx context.Context, town string) error {
	var suggestions []string
	if f.towns != nil {
		suggestions = f.towns.Suggest(town)
	}
	f.update(func(st *FeedState) {
		st.Town = town
		st.Suggestions = suggestions
		st.Error = ""
		st.NoEventsAvailable = false
		if strings.TrimSpace(town) == "" {
			st.Current = nil
		}
	})
	if strings.TrimSpace(town) == "" {
		return nil
	}
	return f.Load(ctx)
}

// Refresh clears the banners and loads again.
func (f *Feed) Refresh(ctx context.Context) error {
	f.update(func(st *FeedState) {
		st.Error = ""
		st.NoEventsAvailable = false
	})
	return f.Load(ctx)
}

// Load fetches the next candidate for the current town. A 404 means the feed
// is exhausted and is reported through NoEventsAvailable, not Error.
func (f *Feed) Load(ctx context.Context) error {
	if f.effect.Stopped() {
		return apierror.ErrCanceled
	}
	town := f.State().Town
	if strings.TrimSpace(town) == "" {
		f.update(func(st *FeedState) { st.Error = msgSelectTown })
		return apierror.NewValidation("town", msgSelectTown)
	}
	hash, ok := "", false
	if f.towns != nil {
		hash, ok = f.towns.HashFor(town)
	}
	if !ok {
		f.update(func(st *FeedState) { st.Error = msgInvalidTown })
		return apierror.NewValidation("town", msgInvalidTown)
	}

	f.update(func(st *FeedState) {
		st.Fetching = true
		st.Error = ""
		st.NoEventsAvailable = false
	})

	err := f.effect.Run(ctx,
		func(ctx context.Context) (domain.Event, error) {
			return f.api.Next(ctx, hash, "", "")
		},
		func(evt domain.Event) {
			f.update(func(st *FeedState) {
				st.Fetching = false
				if evt.ID == "" {
					st.Current = nil
					st.NoEventsAvailable = true
					return
				}
				st.Current = &evt
			})
		},
		func(err error) {
			if exhausted(err) {
				f.update(func(st *FeedState) {
					st.Fetching = false
					st.Current = nil
					st.NoEventsAvailable = true
				})
				return
			}
			msg := f.failure("load next event", err)
			f.update(func(st *FeedState) {
				st.Fetching = false
				st.Error = msg
			})
		},
	)
	if exhausted(err) {
		return nil
	}
	return err
}

// exhausted reports whether err means the feed has no more candidates.
func exhausted(err error) bool {
	if err == nil {
		return false
	}
	if apierror.IsNotFound(err) {
		return true
	}
	msg := strings.ToLower(apierror.Message(err))
	return strings.Contains(msg, "404") || strings.Contains(msg, "not found")
}

// Like records a like on the current candidate and moves to the next one.
func (f *Feed) Like(ctx context.Context) error { return f.act(ctx, domain.ActionLike) }

// Skip records a skip on the current candidate and moves to the next one.
func (f *Feed) Skip(ctx context.Context) error { return f.act(ctx, domain.ActionSkip) }

func (f *Feed) act(ctx context.Context, action domain.FeedAction) error {
	var current *domain.Event
	f.mu.Lock()
	if f.st.Current != nil && !f.st.Loading {
		current = f.st.Current
		f.st.Loading = true
	}
	f.mu.Unlock()
	if current == nil {
		return ErrNoCandidate
	}

	user := f.userID()
	if f.alreadySwiped(user, current.ID, action) {
		f.log.DebugObj("swipe already recorded", "feed_swipe", map[string]any{"user_id": user, "event_id": current.ID, "action": action})
	} else if _, err := f.api.RecordAction(ctx, current.ID, action); err != nil {
		if apierror.IsCanceled(err) {
			f.update(func(st *FeedState) { st.Loading = false })
			return err
		}
		msg := f.failure(string(action), err)
		f.update(func(st *FeedState) {
			st.Loading = false
			st.Error = msg
		})
		return err
	} else {
		if f.journal != nil {
			if err := f.journal.RecordSwipe(user, current.ID, action); err != nil {
				f.log.WarnObj("swipe journal write failed", "feed_journal_error", map[string]any{"user_id": user, "event_id": current.ID, "error": err.Error()})
			}
		}
		f.publish(ctx, activity.NewSwipe(user, current.ID, action))
	}

	f.update(func(st *FeedState) {
		st.Loading = false
		st.Current = nil
	})
	return f.Load(ctx)
}

// alreadySwiped reports whether this user already sent the same action for
// the event from this device.
func (f *Feed) alreadySwiped(userID, eventID string, action domain.FeedAction) bool {
	if f.journal == nil || userID == "" {
		return false
	}
	prev, found, err := f.journal.LookupSwipe(userID, eventID)
	if err != nil {
		f.log.WarnObj("swipe journal read failed", "feed_journal_error", map[string]any{"user_id": userID, "event_id": eventID, "error": err.Error()})
		return false
	}
	return found && prev == action
}

// DismissError clears the error banner.
func (f *Feed) DismissError() {
	f.update(func(st *FeedState) { st.Error = "" })
}

// Unmount cancels the in-flight fetch; its result is discarded.
func (f *Feed) Unmount() { f.effect.Stop() }

// State returns a snapshot.
func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.st
	st.Suggestions = append([]string(nil), f.st.Suggestions...)
	if f.st.Current != nil {
		cur := *f.st.Current
		st.Current = &cur
	}
	return st
}

func (f *Feed) update(fn func(*FeedState)) {
	f.mu.Lock()
	fn(&f.st)
	f.mu.Unlock()
}
