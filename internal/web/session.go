package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/factlens/internal/app"
)

const (
	sessionCookie = "factlens_session"
	sessionTTL    = 30 * time.Minute
)

// sessions hands every browser session its own controller, so the
// one-in-flight rule applies per session rather than per server
type sessions struct {
	mu          sync.Mutex
	controllers *gocache.Cache
	newFunc     func() *app.Controller
}

func newSessions(newFunc func() *app.Controller) *sessions {
	return &sessions{
		controllers: gocache.New(sessionTTL, sessionTTL/3),
		newFunc:     newFunc,
	}
}

// controller returns the session's controller, starting a session when the
// request carries none
func (s *sessions) controller(c *gin.Context) *app.Controller {
	id, err := c.Cookie(sessionCookie)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.controllers.Get(id); ok {
		s.controllers.SetDefault(id, cached)
		return cached.(*app.Controller)
	}

	ctrl := s.newFunc()
	s.controllers.SetDefault(id, ctrl)
	return ctrl
}
