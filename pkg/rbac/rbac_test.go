package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
	"github.com/shashiranjanraj/churchcafe/pkg/rbac"
)

func serve(gate func(http.Handler) http.Handler, claims *auth.Claims) int {
	h := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestStaffGate(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(rbac.Staff(), &auth.Claims{ID: 1, Role: auth.RoleAdmin}))
	assert.Equal(t, http.StatusOK, serve(rbac.Staff(), &auth.Claims{ID: 2, Role: auth.RolePersonal}))
	assert.Equal(t, http.StatusForbidden, serve(rbac.Staff(), &auth.Claims{ID: 3, Role: auth.RoleParishioner}))
	assert.Equal(t, http.StatusForbidden, serve(rbac.Staff(), nil))
}

func TestAdminGate(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(rbac.Admin(), &auth.Claims{ID: 1, Role: auth.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(rbac.Admin(), &auth.Claims{ID: 2, Role: auth.RolePersonal}))
	assert.Equal(t, http.StatusForbidden, serve(rbac.Admin(), &auth.Claims{ID: 3}))
}
