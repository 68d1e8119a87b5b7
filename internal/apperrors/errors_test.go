package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/split_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := apperrors.New(apperrors.CodeNotFound, "transaction %s not found", "tx-1")
	wrapped := fmt.Errorf("failed to load: %w", err)

	assert.True(t, errors.Is(wrapped, apperrors.ErrNotFound))
	assert.False(t, errors.Is(wrapped, apperrors.ErrConflict))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(wrapped))
	assert.Contains(t, err.Error(), "tx-1")
}

func TestNewAppError_IsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperrors.NewAppError(http.StatusInternalServerError, "failed to begin transaction", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code apperrors.Code
		want int
	}{
		{apperrors.CodeNoSplits, http.StatusBadRequest},
		{apperrors.CodeInvalidSplits, http.StatusBadRequest},
		{apperrors.CodeInvalidAccount, http.StatusBadRequest},
		{apperrors.CodeCannotDeleteMirror, http.StatusUnprocessableEntity},
		{apperrors.CodeInvalidStatusTransition, http.StatusConflict},
		{apperrors.CodeConflict, http.StatusConflict},
		{apperrors.CodeNotFound, http.StatusNotFound},
		{apperrors.CodeNotOwned, http.StatusForbidden},
		{apperrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.code))
		})
	}
}
