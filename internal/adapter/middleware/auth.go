package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/user"
)

const userCtxKey = "auth.user"

// Auth verifies an HS256 bearer token and resolves its subject through the
// user directory. Tokens are issued elsewhere; this only checks them.
func Auth(secret []byte, issuer string, dir user.Directory, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	keyFn := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFn); err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if claims.Subject == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token has no subject"})
			}

			u, err := dir.FindByID(c.Request().Context(), claims.Subject)
			switch {
			case errors.Is(err, errs.ErrNotFound):
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			case err != nil:
				log.Error("auth: user lookup failed", "sub", claims.Subject, "err", err)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "user directory unavailable"})
			case !u.Active:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "user is inactive"})
			}

			SetUser(c, u)
			return next(c)
		}
	}
}

// RequireStaff rejects callers without a staff role. Use after Auth.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			}
			if !u.Role.IsStaff() {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "staff role required"})
			}
			return next(c)
		}
	}
}

// SetUser attaches the authenticated caller to c.
func SetUser(c echo.Context, u *user.User) { c.Set(userCtxKey, u) }

// CurrentUser returns the caller resolved by Auth, or nil.
func CurrentUser(c echo.Context) *user.User {
	u, _ := c.Get(userCtxKey).(*user.User)
	return u
}

// ActorID is the audit identity of the caller; empty when unauthenticated.
func ActorID(c echo.Context) string {
	if u := CurrentUser(c); u != nil {
		return u.UserID
	}
	return ""
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
