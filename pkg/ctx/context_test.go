package ctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	appctx "github.com/shashiranjanraj/churchcafe/pkg/ctx"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
)

func withParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestParamID(t *testing.T) {
	req := withParam(httptest.NewRequest(http.MethodGet, "/api/orders/42", nil), "id", "42")
	appctx.Wrap(func(c *appctx.Context) {
		id, err := c.ParamID("id")
		require.NoError(t, err)
		assert.Equal(t, uint(42), id)
	})(httptest.NewRecorder(), req)

	for _, bad := range []string{"abc", "0", "-1", ""} {
		req := withParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", bad)
		appctx.Wrap(func(c *appctx.Context) {
			_, err := c.ParamID("id")
			assert.ErrorIs(t, err, apperr.ErrInvalidRequest, bad)
		})(httptest.NewRecorder(), req)
	}
}

func TestBindValid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","email":"ana@parish.org"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var in struct {
			Name  string `json:"name"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		require.True(t, c.Bind(&in))
		assert.Equal(t, "Ana", in.Name)
		c.NoContent()
	})(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBindValidationFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var in struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.Bind(&in))
		assert.Equal(t, http.StatusBadRequest, c.WrittenStatus())
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The name field is required.")
}

func TestBindMalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))

	appctx.Wrap(func(c *appctx.Context) {
		var in struct{ Name string }
		assert.False(t, c.Bind(&in))
	})(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		_, err := c.Claims()
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})(httptest.NewRecorder(), req)

	req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{ID: 3, Role: auth.RoleAdmin}))
	appctx.Wrap(func(c *appctx.Context) {
		claims, err := c.Claims()
		require.NoError(t, err)
		assert.Equal(t, uint(3), claims.ID)
	})(httptest.NewRecorder(), req)
}

func TestFail(t *testing.T) {
	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Fail(apperr.Forbidden("Forbidden"))
		assert.Equal(t, http.StatusForbidden, c.WrittenStatus())
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"status":403,"message":"Forbidden"}`, rec.Body.String())
}
