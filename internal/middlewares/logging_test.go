package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoggingMiddleware(t *testing.T) {
	log := zap.NewNop().Sugar()

	var seenRequestID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenRequestID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	handler := LoggingMiddleware(log)(next)

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())

	// Request ID reaches both the handler context and the response header.
	assert.NotEmpty(t, seenRequestID)
	_, err := uuid.Parse(seenRequestID)
	assert.NoError(t, err)
	assert.Equal(t, seenRequestID, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDFromContext_Absent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}

func TestResponseWriter_TracksSizeAcrossWrites(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}

	rw.Write([]byte("hello "))
	rw.Write([]byte("world"))

	assert.Equal(t, 11, rw.size)
	assert.Equal(t, http.StatusOK, rw.statusCode)
}
