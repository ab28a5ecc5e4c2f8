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

const (
	pathFeedNext   = "/feed/me"
	pathFeedAction = "/feed/action"
)

var (
	// ErrInvalidAction is returned for actions other than skip and like.
	ErrInvalidAction = errors.New(`invalid action. Must be "skip" or "like"`)
	// ErrMissingTown is returned when the feed is requested without a town id.
	ErrMissingTown = errors.New("town id is required")
)

// ActionResult is the backend acknowledgement of a swipe.
type ActionResult map[string]any

// FeedService serves the swipe feed.
type FeedService struct {
	client httpclient.Doer
	ex     executor
}

// NewFeedService builds the feed façade over the private client.
func NewFeedService(private httpclient.Doer, log Logger) *FeedService {
	return &FeedService{client: private, ex: executor{service: "feedService", log: ensureLogger(log)}}
}

// Next returns the next candidate event for the town. fromDay and toDay are
// optional YYYY-MM-DD bounds. A 404 means there are no candidates left and is
// returned as an *apierror.HTTPError for the caller to interpret.
func (s *FeedService) Next(ctx context.Context, townID, fromDay, toDay string) (domain.Event, error) {
	townID = strings.TrimSpace(townID)
	if townID == "" {
		return domain.Event{}, ErrMissingTown
	}

	q := url.Values{}
	q.Set("town_id", townID)
	if d := strings.TrimSpace(fromDay); d != "" {
		q.Set("from_day", d)
	}
	if d := strings.TrimSpace(toDay); d != "" {
		q.Set("to_day", d)
	}

	return execute(ctx, s.ex, "getNextEvent", func(ctx context.Context) (domain.Event, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{Method: http.MethodGet, Path: pathFeedNext, Query: q})
		if err != nil {
			return domain.Event{}, err
		}
		return NormalizeEvent(resp.Body())
	})
}

// RecordAction records a like or skip on an event.
func (s *FeedService) RecordAction(ctx context.Context, eventID string, action domain.FeedAction) (ActionResult, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	if strings.TrimSpace(eventID) == "" {
		return nil, ErrMissingID
	}

	return execute(ctx, s.ex, "recordAction", func(ctx context.Context) (ActionResult, error) {
		resp, err := s.client.Do(ctx, httpclient.Call{
			Method: http.MethodPost,
			Path:   pathFeedAction,
			Body:   Payload{"event_id": eventID, "action": string(action)},
		})
		if err != nil {
			return nil, err
		}
		out := ActionResult{}
		if err := decode(resp, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}
