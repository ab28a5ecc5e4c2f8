package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/meetfeed/meetfeed-client/internal/config"
	"github.com/meetfeed/meetfeed-client/internal/domain"
	"github.com/meetfeed/meetfeed-client/internal/logger"
	"github.com/meetfeed/meetfeed-client/internal/screens"
	"github.com/meetfeed/meetfeed-client/internal/session"
	"github.com/meetfeed/meetfeed-client/internal/storage"
	"github.com/meetfeed/meetfeed-client/pkg/activity"
	"github.com/meetfeed/meetfeed-client/pkg/apierror"
	"github.com/meetfeed/meetfeed-client/pkg/httpclient"
	"github.com/meetfeed/meetfeed-client/pkg/services"
	"github.com/meetfeed/meetfeed-client/pkg/towns"
)

// Client is the wired client runtime: HTTP clients, service façades, town
// registry, swipe journal and activity sinks, ready to back the screens.
type Client struct {
	cfg      *config.Config
	log      logger.Logger
	session  *session.Store
	clients  *httpclient.Clients
	auth     *services.AuthService
	events   *services.EventsService
	feed     *services.FeedService
	profile  *services.ProfileService
	towns    *towns.Registry
	store    storage.Store
	activity *activity.Fanout
}

// NewClient builds the runtime from config.
func NewClient(ctx context.Context, cfg *config.Config, log logger.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sess := session.New()
	clients, err := httpclient.New(httpclient.Options{
		BaseURL:      cfg.APIBaseURL,
		Timeout:      cfg.APITimeout,
		BypassHeader: cfg.BypassHeaderName,
		BypassValue:  cfg.BypassHeaderValue,
		Session:      sess.Accessor(),
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("init http clients: %w", err)
	}

	townReg, err := towns.Load(cfg.TownsFile)
	if err != nil {
		return nil, fmt.Errorf("load towns registry: %w", err)
	}
	log.InfoObj("towns registry loaded", "towns_meta", map[string]any{
		"count": townReg.Len(),
		"file":  cfg.TownsFile,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := activity.FromFile(ctx, cfg.ActivityFile, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build activity sinks: %w", err)
	}
	log.InfoObj("activity sinks loaded", "activity_meta", map[string]any{
		"count": fanout.Size(),
		"file":  cfg.ActivityFile,
	})

	return &Client{
		cfg:      cfg,
		log:      log,
		session:  sess,
		clients:  clients,
		auth:     services.NewAuthService(clients.Public, log),
		events:   services.NewEventsService(clients.Private, log),
		feed:     services.NewFeedService(clients.Private, log),
		profile:  services.NewProfileService(clients.Private, log),
		towns:    townReg,
		store:    store,
		activity: fanout,
	}, nil
}

// Deps returns the collaborators every screen is built from.
func (c *Client) Deps() screens.Deps {
	return screens.Deps{
		Auth:     c.auth,
		Events:   c.events,
		Feed:     c.feed,
		Profile:  c.profile,
		Towns:    c.towns,
		Journal:  c.store,
		Activity: c.activity,
		Session:  c.session,
		Logger:   c.log,
	}
}

// Events returns the events façade for operations no screen covers (update).
func (c *Client) Events() *services.EventsService { return c.events }

// Session returns the current login, nil before Login.
func (c *Client) Session() *domain.AuthSession { return c.session.Get() }

// Towns returns the loaded town registry.
func (c *Client) Towns() *towns.Registry { return c.towns }

// DefaultTown is the town the feed starts with.
func (c *Client) DefaultTown() string { return c.cfg.DefaultTown }

// Login runs the login gate with the configured init data.
func (c *Client) Login(ctx context.Context) (*domain.AuthSession, error) {
	login := screens.NewLogin(c.Deps())
	defer login.Unmount()
	if err := login.Mount(ctx, c.cfg.InitData); err != nil {
		if apierror.IsCanceled(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", screens.LoginFailedMessage, err)
	}
	st := login.State()
	if st.Session == nil {
		return nil, errors.New(screens.LoginFailedMessage)
	}
	return st.Session, nil
}

// Close releases the swipe journal and activity sinks.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.log.ErrorObj("storage close failed", "error", err)
			errs = append(errs, err)
		}
	}
	if c.activity != nil {
		if err := c.activity.Close(); err != nil {
			c.log.ErrorObj("activity sinks close failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
