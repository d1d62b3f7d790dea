package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

func TestPublicMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.InvalidRequest("items required"), http.StatusBadRequest, "items required"},
		{apperr.InvalidProduct("Invalid product_item_id"), http.StatusBadRequest, "Invalid product_item_id"},
		{apperr.Unauthorized("Invalid token"), http.StatusUnauthorized, "Invalid token"},
		{apperr.Forbidden("Forbidden"), http.StatusForbidden, "Forbidden"},
		{apperr.NotFound("Not found"), http.StatusNotFound, "Not found"},
		{apperr.Conflict("Email already registered"), http.StatusConflict, "Email already registered"},
		{errors.New("driver: bad connection"), http.StatusInternalServerError, "Internal Server Error"},
		{apperr.Internal(errors.New("secret detail")), http.StatusInternalServerError, "Internal Server Error"},
		{apperr.New(apperr.KindNotFound, ""), http.StatusNotFound, "Not Found"},
	}

	for _, tc := range cases {
		status, msg := apperr.Public(tc.err)
		assert.Equal(t, tc.status, status, "%v", tc.err)
		assert.Equal(t, tc.msg, msg, "%v", tc.err)
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("create order: %w", apperr.InvalidProduct("Invalid product_item_id"))

	assert.Equal(t, apperr.KindInvalidProduct, apperr.KindOf(err))
	assert.True(t, errors.Is(err, apperr.ErrInvalidProduct))
	assert.False(t, errors.Is(err, apperr.ErrNotFound))

	status, msg := apperr.Public(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid product_item_id", msg)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := apperr.Wrap(apperr.KindConflict, "duplicate", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate: boom", err.Error())
}
