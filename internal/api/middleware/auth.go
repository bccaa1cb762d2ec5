package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/investbank/deal-pipeline/internal/api/metrics"
	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
	"github.com/investbank/deal-pipeline/internal/core/token"
)

// principalKey is the echo context key the resolver stores the principal
// under. Handlers read it through Principal(); nothing else touches it.
const principalKey = "principal"

// ResolveIdentity turns a bearer token (if any) into a Principal. It NEVER
// aborts the request: every failure mode — missing header, malformed prefix,
// invalid or expired token, unknown or disabled account — downgrades the
// request to anonymous and lets the route's own authorization produce the
// eventual 401/403.
//
// On a valid token the account is re-fetched from the store and the principal
// is built from its current role set, never from the token's embedded claims.
// A role change or deactivation therefore takes effect on the very next
// request, despite tokens being irrevocable.
func ResolveIdentity(tokens *token.Service, accounts ports.AccountRepository, audit ports.AuditSink, log zerolog.Logger) echo.MiddlewareFunc {
	if audit == nil {
		audit = ports.NopAuditSink{}
	}
	reject := func(c echo.Context, subject, reason string) {
		metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
		log.Debug().Str("subject", subject).Str("reason", reason).Msg("bearer token rejected")
		audit.Record(domain.AuditEvent{
			Subject:   subject,
			Action:    "token.resolve",
			Outcome:   domain.AuditOutcomeFailure,
			Reason:    reason,
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			Timestamp: time.Now().UTC(),
		})
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return next(c)
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				reject(c, "", rejectionReason(err))
				return next(c)
			}

			account, err := accounts.FindByUsername(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					reject(c, claims.Subject, "account_missing")
					return next(c)
				}
				return err
			}
			if !account.Enabled {
				reject(c, claims.Subject, "account_disabled")
				return next(c)
			}

			c.Set(principalKey, domain.NewPrincipal(account))
			return next(c)
		}
	}
}

// Principal returns the principal resolved for this request, or nil when the
// request is anonymous.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// SetPrincipal attaches a principal to the request context directly,
// bypassing token resolution. Handler tests use it to simulate an
// authenticated request.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// RequireAuth rejects anonymous requests with 401. Routes behind it can rely
// on Principal(c) being non-nil.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Principal(c) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole rejects authenticated principals missing every listed role
// with 403. Must be mounted after RequireAuth.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Principal(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, r := range roles {
				if p.HasRole(r) {
					return next(c)
				}
			}
			metrics.AuthzDenialsTotal.WithLabelValues(c.Path()).Inc()
			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

// bearerToken extracts the token from an Authorization header value.
// Returns false when the header is absent or the prefix is not Bearer.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "expired"
	case errors.Is(err, token.ErrTokenSignature):
		return "signature"
	default:
		return "malformed"
	}
}
