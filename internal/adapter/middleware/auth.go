package middleware

import (
	"errors"
	"net/http"

	"water-chiller-check/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

const (
	HeaderActorUsername = "Ax-Actor-Username"
	HeaderActorRole     = "Ax-Actor-Role"
)

// Authenticate trusts the actor headers set by the upstream auth proxy and
// stores the actor on the request context.
func Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			a, err := actor.New(req.Header.Get(HeaderActorUsername), req.Header.Get(HeaderActorRole))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or unknown actor"})
			}
			c.SetRequest(req.WithContext(actor.WithActor(req.Context(), a)))
			return next(c)
		}
	}
}

// Authorize rejects actors whose role lacks act. Must run after Authenticate.
func Authorize(act actor.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, _ := actor.FromContext(c.Request().Context())
			switch err := actor.Authorize(a, act); {
			case errors.Is(err, actor.ErrUnauthenticated):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or unknown actor"})
			case errors.Is(err, actor.ErrForbidden):
				return c.JSON(http.StatusForbidden, map[string]string{"error": "role " + string(a.Role) + " may not " + string(act)})
			}
			return next(c)
		}
	}
}
