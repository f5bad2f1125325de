package auth

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/salesdesk/salesdesk/internal/platform/httpx"
	"github.com/salesdesk/salesdesk/internal/shared"
)

// Middleware resolves the acting user from HTTP basic credentials and
// enforces role-based access on routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Authenticate verifies basic-auth credentials and stores the actor in context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="salesdesk"`)
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "credentials required")
			return
		}
		user, err := m.Service.Authenticate(r.Context(), username, password)
		if err != nil {
			m.Logger.Info("authentication rejected", slog.String("username", username))
			w.Header().Set("WWW-Authenticate", `Basic realm="salesdesk"`)
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		actor := shared.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole allows only the named roles through. Admin always passes.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no actor")
				return
			}
			if actor.Role != shared.RoleAdmin && !slices.Contains(roles, actor.Role) {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
