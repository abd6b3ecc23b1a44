package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Forbidden("cross origin"), http.StatusForbidden},
		{RateLimit("slow down"), http.StatusTooManyRequests},
		{TooLarge("big"), http.StatusRequestEntityTooLarge},
		{Upstream(io.EOF, 0, "fetch failed"), http.StatusBadGateway},
		{Upstream(nil, http.StatusNotFound, "not found upstream"), http.StatusNotFound},
		{Upstream(nil, http.StatusFound, "redirect"), http.StatusBadGateway},
		{Timeout(nil, "slow"), http.StatusGatewayTimeout},
		{Internal("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode)
		})
	}
}

func TestWrap_Unwraps(t *testing.T) {
	err := InternalWrap(io.ErrUnexpectedEOF, "read failed")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "caused by")
}

func TestWriteError_WrappedAppError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WriteError(w, logger, fmt.Errorf("handler: %w", NotFound("no such tool")), "req-1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestWriteError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WriteError(w, logger, io.EOF, "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()

	WriteSuccessWithHeaders(w, map[string]int{"n": 1}, map[string]string{"Cache-Control": "no-store"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, w.Body.String())
}

func TestWriteError_ClientErrorDetails(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	shared := ValidationWrap(fmt.Errorf("unrecognised date %q", "soon"), "start must be a date")

	WriteError(w, logger, shared, "req-2")

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, `unrecognised date "soon"`, resp.Error.Details)
	assert.Empty(t, shared.RequestID, "the caller's error must not be modified")
}

func TestWriteError_ServerErrorHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	WriteError(w, logger, InternalWrap(fmt.Errorf("dial tcp 10.0.0.1:5432"), "boom"), "")

	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}
