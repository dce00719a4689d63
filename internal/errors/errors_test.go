package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"edascope/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"invalid target", core.NewInvalidTargetError("price"), CodeInvalidTarget, http.StatusUnprocessableEntity},
		{"kind mismatch", core.NewKindMismatchError("city", "categorical", "numeric"), CodeKindMismatch, http.StatusUnprocessableEntity},
		{"column not found", core.NewColumnNotFoundError("ghost"), CodeNotFound, http.StatusNotFound},
		{"session not found", core.ErrSessionNotFound, CodeNotFound, http.StatusNotFound},
		{"parameter", core.NewParameterError("k", "must be at least 1"), CodeInvalidInput, http.StatusBadRequest},
		{"dataset", core.ErrDuplicateColumn, CodeInvalidDataset, http.StatusUnprocessableEntity},
		{"unknown", stderrors.New("disk on fire"), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, HTTPStatus(appErr.Code))
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
	assert.Nil(t, FromDomain(nil))
}

func TestFromDomain_KeepsAppError(t *testing.T) {
	original := InvalidInput("bad upload")
	wrapped := Wrap(original, "creating session")

	appErr := FromDomain(wrapped)
	assert.Equal(t, CodeInvalidInput, appErr.Code)
	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.True(t, IsAppError(wrapped))
}

func TestWrapAndWithCode(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Nil(t, WithCode(CodeNotFound, nil))

	err := Wrapf(stderrors.New("boom"), "loading %s", "data.csv")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "loading data.csv: boom", err.Error())

	coded := WithCode(CodeDatabaseError, err)
	assert.Equal(t, CodeDatabaseError, GetCode(coded))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
