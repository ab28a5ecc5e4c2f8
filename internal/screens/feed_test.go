package screens

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/session"
	"github.com/meetfeed/meetfeed-client/internal/storage"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

func newTestFeed(t *testing.T, api *fakeFeed, town string) (*Feed, *memJournal, *capturePublisher) {
	t.Helper()
	store := session.New()
	store.Set(&domain.AuthSession{InitData: "raw", UserID: "u1"})
	journal := newMemJournal()
	pub := &capturePublisher{}
	f := NewFeed(Deps{
		Feed:     api,
		Towns:    testTowns(t),
		Journal:  journal,
		Activity: pub,
		Session:  store,
	}, town)
	return f, journal, pub
}

func TestFeedRejectsMissingOrUnknownTown(t *testing.T) {
	cases := []struct {
		town string
		want string
	}{
		{"", msgSelectTown},
		{"   ", msgSelectTown},
		{"Атлантида", msgInvalidTown},
	}
	for _, tc := range cases {
		api := &fakeFeed{}
		f, _, _ := newTestFeed(t, api, tc.town)
		err := f.Load(context.Background())
		if !apierror.IsValidation(err) {
			t.Fatalf("town %q: expected validation error, got %v", tc.town, err)
		}
		if got := f.State().Error; got != tc.want {
			t.Fatalf("town %q: error = %q, want %q", tc.town, got, tc.want)
		}
		if len(api.towns) != 0 {
			t.Fatalf("town %q: no request expected, got %v", tc.town, api.towns)
		}
	}
}

func TestFeedExhaustedIsNotAnError(t *testing.T) {
	log, logs := observedLogger()
	api := &fakeFeed{}
	f, _, _ := newTestFeed(t, api, "Москва")
	f.log = log

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	st := f.State()
	if !st.NoEventsAvailable || st.Error != "" || st.Current != nil || st.Fetching {
		t.Fatalf("unexpected state %+v", st)
	}
	if len(api.towns) != 1 || api.towns[0] != "msk" {
		t.Fatalf("expected one request with the town hash, got %v", api.towns)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len() + logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 0 {
		t.Fatalf("an exhausted feed must not log failures, got %d entries", n)
	}
}

func TestFeedNotFoundMessageCountsAsExhausted(t *testing.T) {
	api := &fakeFeed{nextErr: errBackend(500, "Event not found")}
	f, _, _ := newTestFeed(t, api, "Казань")
	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st := f.State(); !st.NoEventsAvailable || st.Error != "" {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestFeedLikeRecordsAndAdvances(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e1", Title: "Quiz"}, {ID: "e2", Title: "Hike"}}}
	f, journal, pub := newTestFeed(t, api, "Москва")

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cur := f.State().Current; cur == nil || cur.ID != "e1" {
		t.Fatalf("expected e1 as candidate, got %+v", cur)
	}

	if err := f.Like(context.Background()); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if len(api.actions) != 1 || api.actions[0] != (recordedAction{eventID: "e1", action: domain.ActionLike}) {
		t.Fatalf("unexpected actions %+v", api.actions)
	}
	if action, found, _ := journal.LookupSwipe("u1", "e1"); !found || action != domain.ActionLike {
		t.Fatalf("expected u1's like on e1 in journal, got %q found=%v", action, found)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one activity event, got %d", len(pub.events))
	}
	got := pub.events[0]
	if got.Kind != activity.KindSwipe || got.EventID != "e1" || got.Action != string(domain.ActionLike) || got.UserID != "u1" {
		t.Fatalf("unexpected activity event %+v", got)
	}
	if cur := f.State().Current; cur == nil || cur.ID != "e2" {
		t.Fatalf("expected e2 after like, got %+v", cur)
	}
}

func TestFeedSkipsRecordingForJournaledCandidate(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e1"}}}
	f, journal, pub := newTestFeed(t, api, "Москва")
	_ = journal.RecordSwipe("u1", "e1", domain.ActionSkip)

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.Skip(context.Background()); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if len(api.actions) != 0 {
		t.Fatalf("journaled candidate must not be recorded again, got %+v", api.actions)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no activity expected, got %+v", pub.events)
	}
	if st := f.State(); !st.NoEventsAvailable {
		t.Fatalf("expected the feed to move on, got %+v", st)
	}
}

func TestFeedActionFailureShowsMessage(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e1"}}, actionErr: errBackend(500, "Swipe rejected")}
	f, _, _ := newTestFeed(t, api, "Москва")
	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := f.Like(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	st := f.State()
	if st.Error != "Swipe rejected" || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if st.Current == nil || st.Current.ID != "e1" {
		t.Fatalf("candidate must stay after a failed action, got %+v", st.Current)
	}

	f.DismissError()
	if f.State().Error != "" {
		t.Fatalf("DismissError must clear the banner")
	}
}

func TestFeedActWithoutCandidate(t *testing.T) {
	f, _, _ := newTestFeed(t, &fakeFeed{}, "Москва")
	if err := f.Like(context.Background()); !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
}

func TestFeedSetTownSuggestsAndLoads(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e9"}}}
	f, _, _ := newTestFeed(t, api, "")

	if err := f.SetTown(context.Background(), "Каз"); !apierror.IsValidation(err) {
		t.Fatalf("partial name should not resolve, got %v", err)
	}
	if st := f.State(); len(st.Suggestions) != 1 || st.Suggestions[0] != "Казань" {
		t.Fatalf("unexpected suggestions %v", st.Suggestions)
	}

	if err := f.SetTown(context.Background(), "Казань"); err != nil {
		t.Fatalf("SetTown: %v", err)
	}
	if cur := f.State().Current; cur == nil || cur.ID != "e9" {
		t.Fatalf("expected e9, got %+v", cur)
	}
}

func TestFeedUnmountDropsPendingResult(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e1"}}}
	f, _, _ := newTestFeed(t, api, "Москва")
	f.Unmount()
	if err := f.Load(context.Background()); !apierror.IsCanceled(err) {
		t.Fatalf("expected canceled after unmount, got %v", err)
	}
	if st := f.State(); st.Current != nil || st.Error != "" {
		t.Fatalf("unmounted feed must not change, got %+v", st)
	}
}

func TestFeedJournalIsKeptPerUser(t *testing.T) {
	journal, err := storage.NewStore(storage.TypeBBolt, filepath.Join(t.TempDir(), "swipes.db"), storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer journal.Close()

	sent := map[string]int{}
	for _, user := range []string{"alice", "bob"} {
		api := &fakeFeed{queue: []domain.Event{{ID: "e1"}}}
		sess := session.New()
		sess.Set(&domain.AuthSession{InitData: "raw", UserID: user})
		f := NewFeed(Deps{Feed: api, Towns: testTowns(t), Journal: journal, Session: sess}, "Москва")

		if err := f.Load(context.Background()); err != nil {
			t.Fatalf("%s Load: %v", user, err)
		}
		if err := f.Like(context.Background()); err != nil {
			t.Fatalf("%s Like: %v", user, err)
		}
		sent[user] = len(api.actions)
	}
	if sent["alice"] != 1 || sent["bob"] != 1 {
		t.Fatalf("each user's like must reach the backend, sent=%v", sent)
	}
}

func TestFeedSendsChangedActionForJournaledCandidate(t *testing.T) {
	api := &fakeFeed{queue: []domain.Event{{ID: "e1"}}}
	f, journal, _ := newTestFeed(t, api, "Москва")
	_ = journal.RecordSwipe("u1", "e1", domain.ActionSkip)

	if err := f.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.Like(context.Background()); err != nil {
		t.Fatalf("Like: %v", err)
	}
	if len(api.actions) != 1 || api.actions[0].action != domain.ActionLike {
		t.Fatalf("expected the like to be sent, got %+v", api.actions)
	}
	if action, _, _ := journal.LookupSwipe("u1", "e1"); action != domain.ActionLike {
		t.Fatalf("journal action = %q, want like", action)
	}
}
