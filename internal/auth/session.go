package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/harrylevesque/stillwater/internal/models"
)

// DefaultCookieName is the cookie checked when no Authorization header is set.
const DefaultCookieName = "stillwater_session"

type ctxKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

// ExtractToken returns the bearer token from the Authorization header, or the
// value of the named cookie.
func ExtractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware verifies the request token before anything else runs. Requests
// without a valid session are redirected to loginPath and never reach next.
type Middleware struct {
	Provider   Provider
	LoginPath  string
	CookieName string
	Logger     *zap.Logger
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loginPath := m.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.Provider.VerifyToken(r.Context(), ExtractToken(r, m.CookieName))
		if err != nil {
			level := zap.WarnLevel
			if errors.Is(err, ErrMissingToken) {
				level = zap.DebugLevel
			}
			logger.Check(level, "authentication error").Write(
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
