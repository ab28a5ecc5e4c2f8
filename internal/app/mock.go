package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetfeed/meetfeed-client/internal/config"
	"github.com/meetfeed/meetfeed-client/internal/logger"
	"github.com/meetfeed/meetfeed-client/internal/mockapi"
	"github.com/meetfeed/meetfeed-client/pkg/towns"
)

const (
	mockHostID   = "1000"
	mockHostName = "Meetfeed Team"
	shutdownWait = 5 * time.Second
)

var demoEvents = []struct {
	title    string
	location string
	offset   time.Duration
	capacity int
}{
	{"Board games evening", "City library, hall 2", 26 * time.Hour, 8},
	{"Morning run", "Central park entrance", 40 * time.Hour, 20},
	{"Language exchange", "Coffee Point", 74 * time.Hour, 10},
}

// MockBackend serves the in-memory backend for local development.
type MockBackend struct {
	cfg    *config.Config
	log    logger.Logger
	server *mockapi.Server
	seeded int
}

// NewMockBackend builds the mock backend and seeds demo events for every town
// in the registry so the feed has something to show.
func NewMockBackend(cfg *config.Config, log logger.Logger) (*MockBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	townReg, err := towns.Load(cfg.TownsFile)
	if err != nil {
		return nil, fmt.Errorf("load towns registry: %w", err)
	}

	server := mockapi.New(mockapi.Options{Secret: cfg.MockJWTSecret, Logger: log})
	seeded := seedDemoEvents(server, townReg, time.Now())
	log.InfoObj("mock backend seeded", "mock_meta", map[string]any{
		"towns":  townReg.Len(),
		"events": seeded,
	})

	return &MockBackend{cfg: cfg, log: log, server: server, seeded: seeded}, nil
}

func seedDemoEvents(server *mockapi.Server, townReg *towns.Registry, now time.Time) int {
	n := 0
	for _, name := range townReg.Names() {
		hash, _ := townReg.HashFor(name)
		for _, demo := range demoEvents {
			server.AddEvent(mockapi.EventSeed{
				HostID:      mockHostID,
				HostName:    mockHostName,
				Title:       demo.title,
				StartsAt:    now.Add(demo.offset).Format("2006-01-02T15:04:05"),
				Location:    name + ", " + demo.location,
				Description: "Demo event in " + name,
				Capacity:    demo.capacity,
				Town:        hash,
			})
			n++
		}
	}
	return n
}

// Handler returns the HTTP handler of the mock backend.
func (m *MockBackend) Handler() http.Handler { return m.server.Router() }

// Run serves until the context is cancelled, then shuts down gracefully.
func (m *MockBackend) Run(ctx context.Context) error {
	if m == nil || m.server == nil {
		return fmt.Errorf("mock backend is not initialized")
	}
	if m.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              m.cfg.MockListenAddr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		m.log.InfoObj("mock backend listening", "mock_state", map[string]any{
			"addr":   m.cfg.MockListenAddr,
			"events": m.seeded,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mock backend serve: %w", err)
	case <-ctx.Done():
		m.log.InfoObj("mock backend exiting", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock backend shutdown: %w", err)
	}
	return nil
}
