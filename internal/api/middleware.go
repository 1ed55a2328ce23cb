package api

import (
	"strings"

	"github.com/carebright/carelog/internal/backend"
	"github.com/gofiber/fiber/v2"
)

// AuthRequired is the session gate: requests without a verifiable session
// never reach the app's main surface. API requests get 401 JSON; anything
// else is routed to the login flow.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	token := requestToken(c)
	if token == "" {
		return handler.rejectUnauthenticated(c)
	}

	session, err := handler.auth.VerifySession(c.Context(), token)
	if err != nil {
		return handler.rejectUnauthenticated(c)
	}

	c.Locals(contextSessionKey, session)
	return c.Next()
}

func (handler *Handler) rejectUnauthenticated(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func requestToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(authCookieName)); cookie != "" {
		return cookie
	}
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func currentSession(c *fiber.Ctx) (backend.Session, bool) {
	session, ok := c.Locals(contextSessionKey).(backend.Session)
	return session, ok
}
