package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/meetfeed/meetfeed-client/internal/domain"
)

// Layout: bucket "swipes" holds one nested bucket per user id. Inside it each
// key is an event id and each value is an 8-byte big-endian unix expiry
// followed by the action name.
const (
	rootBucket  = "swipes"
	expiryBytes = 8
)

var errRootMissing = errors.New("swipes bucket missing")

type boltStore struct {
	db              *bolt.DB
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu        sync.Mutex
	nextSweep time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init swipes bucket: %w", err)
	}

	s := &boltStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	s.nextSweep = s.now().Add(s.cleanupInterval)
	return s, nil
}

// Close closes the database.
func (s *boltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LookupSwipe reads the user's entry for eventID. An expired entry is deleted
// and reported as absent.
func (s *boltStore) LookupSwipe(userID, eventID string) (domain.FeedAction, bool, error) {
	userID, eventID = strings.TrimSpace(userID), strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return "", false, nil
	}
	now := s.now()
	if err := s.sweep(now); err != nil {
		return "", false, err
	}

	var (
		action domain.FeedAction
		found  bool
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		user := root.Bucket([]byte(userID))
		if user == nil {
			return nil
		}
		raw := user.Get([]byte(eventID))
		if raw == nil {
			return nil
		}
		expires, act, ok := decodeSwipe(raw)
		if !ok || !expires.After(now) {
			return user.Delete([]byte(eventID))
		}
		action, found = act, true
		return nil
	})
	return action, found, err
}

// RecordSwipe stores action for the user until now+TTL, replacing any earlier entry.
func (s *boltStore) RecordSwipe(userID, eventID string, action domain.FeedAction) error {
	userID, eventID = strings.TrimSpace(userID), strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return nil
	}
	now := s.now()
	if err := s.sweep(now); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		user, err := root.CreateBucketIfNotExists([]byte(userID))
		if err != nil {
			return fmt.Errorf("user bucket %q: %w", userID, err)
		}
		return user.Put([]byte(eventID), encodeSwipe(now.Add(s.ttl), action))
	})
}

// sweep drops expired entries and empty user buckets, at most once per
// cleanup interval.
func (s *boltStore) sweep(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Before(s.nextSweep) {
		return nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		var emptied [][]byte
		err := root.ForEachBucket(func(name []byte) error {
			user := root.Bucket(name)
			var expired [][]byte
			err := user.ForEach(func(k, v []byte) error {
				if expires, _, ok := decodeSwipe(v); !ok || !expires.After(now) {
					expired = append(expired, append([]byte(nil), k...))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, k := range expired {
				if err := user.Delete(k); err != nil {
					return err
				}
			}
			if k, _ := user.Cursor().First(); k == nil {
				emptied = append(emptied, append([]byte(nil), name...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range emptied {
			if err := root.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		s.nextSweep = now.Add(s.cleanupInterval)
	}
	return err
}

// entries counts stored swipes per user, expired or not.
func (s *boltStore) entries() (map[string]int, error) {
	out := map[string]int{}
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(rootBucket))
		if root == nil {
			return errRootMissing
		}
		return root.ForEachBucket(func(name []byte) error {
			out[string(name)] = root.Bucket(name).Stats().KeyN
			return nil
		})
	})
	return out, err
}

func encodeSwipe(expires time.Time, action domain.FeedAction) []byte {
	buf := make([]byte, expiryBytes, expiryBytes+len(action))
	binary.BigEndian.PutUint64(buf, uint64(expires.Unix()))
	return append(buf, string(action)...)
}

func decodeSwipe(raw []byte) (time.Time, domain.FeedAction, bool) {
	if len(raw) < expiryBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(raw[:expiryBytes]))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), domain.FeedAction(raw[expiryBytes:]), true
}
