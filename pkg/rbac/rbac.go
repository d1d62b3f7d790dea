// Package rbac gates routes on the authenticated principal's role.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
	"github.com/shashiranjanraj/churchcafe/pkg/response"
)

// HasRole allows the request only when the principal's role is one of roles.
// middleware.Auth must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Forbidden(w)
				return
			}
			if !allowed[role] {
				response.Error(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Staff allows admin and personal.
func Staff() func(http.Handler) http.Handler {
	return HasRole(auth.StaffRoles...)
}

func Admin() func(http.Handler) http.Handler {
	return HasRole(auth.RoleAdmin)
}
