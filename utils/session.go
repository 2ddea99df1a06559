package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/session"
)

const SessionCookie = "salonpro_sid"

const sessionKey = "session"

type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// SessionMiddleware attaches the browser's session to the request, issuing
// a new cookie when the browser has none or sends a malformed one.
func SessionMiddleware(sessions *session.Manager, opts CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			id = session.NewID()
		}

		s, err := sessions.Get(c.Request.Context(), id)
		if errors.Is(err, session.ErrInvalidID) {
			id = session.NewID()
			s, err = sessions.Get(c.Request.Context(), id)
		}
		if err != nil {
			RespondWithError(c, http.StatusServiceUnavailable, "Session indisponible")
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)
		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session attached by SessionMiddleware.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
