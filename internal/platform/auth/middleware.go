package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// DevUserHeader lets local clients pick the caller in development mode.
const DevUserHeader = "X-Dev-User"

const defaultDevUser = "dev-user"

var ErrInvalidToken = errors.New("invalid token")

// Verifier turns a bearer token into the caller's opaque user id.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Middleware resolves the caller from the Authorization header. A request
// without the header passes through anonymously and the domain services
// answer it with Unauthenticated; a header that is present but malformed or
// rejected by the verifier stops the request with 401.
func Middleware(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if AuthSkipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			uid, err := v.Verify(c.Request().Context(), token)
			if err != nil || uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), uid)))
			return next(c)
		}
	}
}

// DevAuthMiddleware authenticates every request as the X-Dev-User header, or
// as "dev-user" when the header is absent.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(DevUserHeader))
			if uid == "" {
				uid = defaultDevUser
			}
			c.SetRequest(c.Request().WithContext(WithUserID(c.Request().Context(), uid)))
			return next(c)
		}
	}
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, UserIDKey, uid)
}

// UserIDFromContext returns "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}
