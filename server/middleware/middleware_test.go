package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLogger(buf *bytes.Buffer) *logger.Logger {
	cfg := &logger.Config{Level: "debug", Format: "json", Output: "stdout"}
	return logger.NewWithWriter(cfg, "test", buf)
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(logger.Nop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	rr := do(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecovery_Panic(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.Recovery(newLogger(&buf)))
	r.GET("/test", func(*gin.Context) { panic("test panic") })

	rr := do(r, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Contains(t, buf.String(), "Panic recovered")
	assert.Contains(t, buf.String(), "test panic")
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func TestRequestID_GeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = c.GetString(middleware.RequestIDKey)
		c.Status(http.StatusOK)
	})

	rr := do(r, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_PreservesExisting(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "existing-id")
	rr := do(r, req)
	assert.Equal(t, "existing-id", rr.Header().Get(middleware.RequestIDHeader))
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func TestRequestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(newLogger(&buf)))
	r.GET("/stages", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, httptest.NewRequest(http.MethodGet, "/stages?x=1", http.NoBody))

	out := buf.String()
	assert.Contains(t, out, "Request completed")
	assert.Contains(t, out, `"path":"/stages?x=1"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, `"request_id"`)
}

func TestRequestLogger_ErrorLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusNotFound, `"level":"warn"`},
		{http.StatusServiceUnavailable, `"level":"error"`},
	}

	for _, tc := range tests {
		var buf bytes.Buffer
		r := gin.New()
		r.Use(middleware.RequestLogger(newLogger(&buf)))
		r.GET("/x", func(c *gin.Context) { c.Status(tc.status) })

		do(r, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
		assert.Contains(t, buf.String(), tc.level, "status %d", tc.status)
	}
}

func TestRequestLogger_SkipsProbes(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.RequestLogger(newLogger(&buf)))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	do(r, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	assert.Empty(t, buf.String())
}
