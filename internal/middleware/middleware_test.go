package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/termine-api/internal/config"
	"github.com/BruksfildServices01/termine-api/internal/infra/memstore"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{UserName: "user", Coupons: 2}))

	r := gin.New()
	r.Use(AuthMiddleware(&config.Config{JWTSecret: testSecret}, store))
	r.GET("/me", func(c *gin.Context) {
		u := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_name": u.UserName, "coupons": u.Coupons})
	})
	return r
}

func get(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"error_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddlewareLoadsUser(t *testing.T) {
	r := authRouter(t)
	token, err := GenerateToken(testSecret, "user", time.Hour, time.Now())
	require.NoError(t, err)

	w := get(r, "/me", "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_name":"user","coupons":2}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, "user", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	forged, err := GenerateToken("other-secret", "user", time.Hour, time.Now())
	require.NoError(t, err)
	ghost, err := GenerateToken(testSecret, "ghost", time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "missing_authorization_header"},
		{"wrong scheme", "Basic abc", "invalid_authorization_header"},
		{"garbage", "Bearer abc", "invalid_token"},
		{"expired", "Bearer " + expired, "invalid_token"},
		{"wrong secret", "Bearer " + forged, "invalid_token"},
		{"deleted user", "Bearer " + ghost, "unknown_user"},
	}

	r := authRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://termine.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://termine.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://termine.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSMiddlewareAllowsAnyOriginByDefault(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logging.NewWithWriter(&buf, "info")))
	r.GET("/gone", func(c *gin.Context) { c.Status(http.StatusGone) })

	w := get(r, "/gone", "")
	requestID := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, requestID)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, requestID, entry["request_id"])
	assert.Equal(t, "/gone", entry["path"])
	assert.Equal(t, float64(http.StatusGone), entry["status"])
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logging.NewWithWriter(&bytes.Buffer{}, "info")))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}
