package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	e := Wrap(cause, ErrCodeInternal, "failed")
	assert.Equal(t, "failed: boom", e.Error())
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "plain", NotFound("plain").Error())
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "x %d", 1))
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  *AppError
		code ErrorCode
	}{
		{NotFound("x"), ErrCodeNotFound},
		{NotFoundf("event %s", "e1"), ErrCodeNotFound},
		{Conflict("x"), ErrCodeConflict},
		{Validation("x"), ErrCodeValidation},
		{Validationf("bad %s", "date"), ErrCodeValidation},
		{ValidationField("phone", "x"), ErrCodeValidation},
		{Unauthenticated("x"), ErrCodeUnauthenticated},
		{Forbidden("x"), ErrCodeForbidden},
		{Internal("x"), ErrCodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
	}
	assert.Equal(t, "event e1", NotFoundf("event %s", "e1").Message)
	assert.Equal(t, "phone", GetField(ValidationField("phone", "x")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("repo: %w", NotFound("user"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))
	assert.Equal(t, ErrCodeNotFound, GetCode(wrapped))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))

	assert.True(t, IsConflict(Conflict("x")))
	assert.True(t, IsValidation(Validation("x")))
	assert.True(t, IsForeignKey(Wrap(errors.New("fk"), ErrCodeForeignKey, "x")))
	assert.True(t, IsTimeout(MapDBError(context.DeadlineExceeded)))
}

func TestWrapf(t *testing.T) {
	t.Parallel()

	e := Wrapf(errors.New("dial"), ErrCodeInternal, "connect %s", "redis")
	require.NotNil(t, e)
	assert.Equal(t, "connect redis: dial", e.Error())
}
