package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "confreg/pkg/errors"
)

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()

	err := WriteError(w, apperrors.Sheets("Failed to save registration.", errors.New("boom")))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, apperrors.CodeSheets, body.Error)
	assert.Equal(t, "Failed to save registration.", body.Message)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteError(w, errors.New("driver exploded")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "driver exploded")
	assert.Contains(t, w.Body.String(), apperrors.CodeInternal)
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteSuccess(w, map[string]string{"status": "ok"}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
