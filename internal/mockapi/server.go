package mockapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetfeed/meetfeed-client/internal/logger"
)

// DefaultTokenTTL is the lifetime of issued access tokens.
const DefaultTokenTTL = 24 * time.Hour

const ctxUserID = "user_id"

// Options configures the mock backend.
type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   logger.Logger
	// Now overrides the clock used for token expiry.
	Now func() time.Time
}

// Server is an in-memory stand-in for the events backend. It serves the same
// routes the client consumes and keeps all state in process.
type Server struct {
	secret []byte
	ttl    time.Duration
	log    logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	events   []*eventRecord
	profiles map[string]*profileRecord
	swipes   map[string]map[string]string
}

// New builds a server with empty state.
func New(opts Options) *Server {
	if strings.TrimSpace(opts.Secret) == "" {
		opts.Secret = "meetfeed-dev-secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		secret:   []byte(opts.Secret),
		ttl:      opts.TokenTTL,
		log:      opts.Logger,
		now:      opts.Now,
		profiles: map[string]*profileRecord{},
		swipes:   map[string]map[string]string{},
	}
}

// Router returns the gin engine serving every backend route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/auth/login-telegram", s.loginTelegram)

	private := r.Group("/")
	private.Use(s.authMiddleware())
	{
		private.GET("/events/me", s.listMyEvents)
		private.POST("/events/me", s.createEvent)
		private.PATCH("/events/me/:id", s.updateEvent)
		private.DELETE("/events/me/:id", s.deleteEvent)
		private.DELETE("/events/me/:id/participants/:pid", s.removeParticipant)
		private.GET("/events/:id", s.getEvent)

		private.GET("/feed/me", s.nextFeedEvent)
		private.POST("/feed/action", s.recordAction)

		private.GET("/profiles/me", s.getProfile)
		private.PATCH("/profiles/me", s.updateProfile)
	}

	r.NoRoute(func(c *gin.Context) {
		jsonMessage(c, http.StatusNotFound, "Route not found")
	})
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.DebugObj("mock request", "mock_request", map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"status":     c.Writer.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	}
}

func jsonMessage(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"message": msg})
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
