package restapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id when missing", func(t *testing.T) {
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, GetRequestID(r.Context()))
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Regexp(t, `^[0-9a-f-]{36}$`, rec.Header().Get("X-Request-ID"))
	})

	t.Run("preserves a well-formed caller id", func(t *testing.T) {
		const existingID = "my-custom-trace-id-123"
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, existingID, GetRequestID(r.Context()))
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", existingID)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, existingID, rec.Header().Get("X-Request-ID"))
	})

	t.Run("replaces malformed ids", func(t *testing.T) {
		for _, invalid := range []string{strings.Repeat("a", 129), "bad-id-<script>"} {
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := GetRequestID(r.Context())
				assert.NotEqual(t, invalid, id)
				assert.Regexp(t, `^[0-9a-f-]{36}$`, id)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", invalid)
			handler.ServeHTTP(httptest.NewRecorder(), req)
		}
	})
}

func TestRequestIDReachesRequestLog(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := RequestIDMiddleware(NewRequestLoggingMiddleware(logger)(okHandler("ok")))

	req := httptest.NewRequest(http.MethodGet, "/fetch-train-data", nil)
	req.Header.Set("X-Request-ID", "integration-test-id-999")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logBuf.String(), "integration-test-id-999")
	assert.Contains(t, logBuf.String(), "request_id")
}
