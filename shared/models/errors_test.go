package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapKeepsIdentity(t *testing.T) {
	cause := errors.New("server selection timeout")
	err := ErrDatabase.Wrap(cause)

	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInternalServer, "same kind but different message")
	assert.Equal(t, "Database error: server selection timeout", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnauthorized, KindOf(fmt.Errorf("verify: %w", ErrTokenExpired)))
	assert.Equal(t, KindNotFound, KindOf(ErrUserNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorKind_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, KindBadRequest.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestNewErrorResponse_HidesCause(t *testing.T) {
	resp := NewErrorResponse(ErrDatabase.Wrap(errors.New("auth failed for user admin")))
	assert.Equal(t, ErrorResponse{Code: 500, Message: "Database error"}, resp)
}
