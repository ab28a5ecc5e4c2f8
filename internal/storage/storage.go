// Package storage keeps the local swipe journal: which feed candidates each
// user already liked or skipped on this device, so a retried swipe is not sent
// twice.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

// Store remembers swipes per user for a limited time.
type Store interface {
	Close() error
	// LookupSwipe returns the action userID recorded on eventID, if it has not expired.
	LookupSwipe(userID, eventID string) (domain.FeedAction, bool, error)
	RecordSwipe(userID, eventID string, action domain.FeedAction) error
}

// Options controls retention.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	TypeBBolt = "bbolt"
	TypeNone  = "none"

	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) LookupSwipe(string, string) (domain.FeedAction, bool, error) {
	return "", false, nil
}

func (noopStore) RecordSwipe(string, string, domain.FeedAction) error { return nil }
