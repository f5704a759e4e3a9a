package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

const (
	// identityKey is the echo context key the resolved identity is stored
	// under. Handlers read it via CallerIdentity.
	identityKey = "identity"

	// sessionHeader carries the client-supplied anonymous session id.
	sessionHeader = "X-Session-ID"
)

// Identity resolves the caller's identity from the optional bearer token and
// session header and stores it on the request context. Resolution never
// rejects the request: an invalid token degrades to an anonymous identity.
func Identity(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			input := ports.ResolveInput{
				SessionID: c.Request().Header.Get(sessionHeader),
			}

			authHeader := c.Request().Header.Get("Authorization")
			if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				input.BearerToken = parts[1]
			}

			identity := resolver.Resolve(c.Request().Context(), input)
			c.Set(identityKey, identity)

			// Echo the session id back so anonymous clients can persist it.
			if !identity.Authenticated() {
				c.Response().Header().Set(sessionHeader, identity.SessionID)
			}

			return next(c)
		}
	}
}

// CallerIdentity returns the identity stored by the Identity middleware. A
// missing entry yields the zero identity, which fails every access check.
func CallerIdentity(c echo.Context) domain.Identity {
	identity, _ := c.Get(identityKey).(domain.Identity)
	return identity
}
