package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/geminiweb/pkg/llm"
)

const (
	sessionCookie = "geminiweb_session"
	modeCookie    = "geminiweb_mode"

	sessionIDKey = "session_id"
)

// withSession makes sure every view request carries a session id cookie.
// Only ids of live sessions are kept; any other id is replaced by a fresh
// one, so clients cannot choose their own session id.
func (s *Server) withSession(c *fiber.Ctx) error {
	id := c.Cookies(sessionCookie)
	if _, known := s.store.Get(id); !known {
		id = uuid.NewString()
		s.setCookie(c, sessionCookie, id)
	}

	c.Locals(sessionIDKey, id)
	return c.Next()
}

// rememberMode records mode as the user's last selection.
func (s *Server) rememberMode(mode llm.Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Cookies(modeCookie) != mode.Slug() {
			s.setCookie(c, modeCookie, mode.Slug())
		}
		return c.Next()
	}
}

func (s *Server) setCookie(c *fiber.Ctx, name, value string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

func sessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionIDKey).(string)
	return id
}

// selectedMode returns the last mode the user picked, ChatBot by default.
func selectedMode(c *fiber.Ctx) llm.Mode {
	mode, err := llm.ParseMode(c.Cookies(modeCookie))
	if err != nil {
		return llm.DefaultMode
	}
	return mode
}
