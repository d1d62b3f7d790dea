// Package ctx gives handlers a single request context with helpers for
// params, binding, the authenticated principal and responses.
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(func(c *ctx.Context) {
//	    id, err := c.ParamID("id")
//	    if err != nil {
//	        c.Fail(err)
//	        return
//	    }
//	    c.OK(map[string]any{"id": id})
//	}))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/bind"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/middleware"
	"github.com/shashiranjanraj/churchcafe/pkg/response"
)

type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ── Request ──────────────────────────────────────────────────────────────────

func (c *Context) Context() context.Context { return c.R.Context() }

func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamID parses a positive numeric path parameter.
func (c *Context) ParamID(key string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.InvalidRequest("Invalid " + key)
	}
	return uint(n), nil
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Claims returns the principal set by middleware.Auth.
func (c *Context) Claims() (*auth.Claims, error) {
	claims, ok := middleware.ClaimsFromCtx(c.R.Context())
	if !ok {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	return claims, nil
}

// Bind decodes and validates the JSON body into dest. On failure it writes
// a 400 and returns false.
func (c *Context) Bind(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		c.status = http.StatusBadRequest
		response.ValidationError(c.W, errs)
		return false
	}
	return true
}

// ── Response ─────────────────────────────────────────────────────────────────

func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

func (c *Context) OK(v any)      { c.JSON(http.StatusOK, v) }
func (c *Context) Created(v any) { c.JSON(http.StatusCreated, v) }

func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	response.NoContent(c.W)
}

func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// Fail writes err through the apperr taxonomy.
func (c *Context) Fail(err error) {
	c.status, _ = apperr.Public(err)
	response.Fail(c.W, c.R, err)
}

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger {
	return logger.WithCtx(c.R.Context())
}

// WrittenStatus is the status written so far, 0 if none.
func (c *Context) WrittenStatus() int { return c.status }
