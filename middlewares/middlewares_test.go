package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newHeaderTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	for _, h := range handlers {
		router.Use(h)
	}
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	return router
}

func TestCORSDefaultAllowsAnyOrigin(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	router := newHeaderTestRouter(CORSMiddlewares())

	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSHonorsConfiguredOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://market.example.com, https://staging.example.com")
	router := newHeaderTestRouter(CORSMiddlewares())

	// Origin terdaftar dipantulkan kembali
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://market.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://market.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	// Origin asing tidak mendapat header sama sekali
	req, _ = http.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	router := newHeaderTestRouter(CORSMiddlewares())

	req, _ := http.NewRequest("OPTIONS", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	router := newHeaderTestRouter(SecurityHeaders())

	req, _ := http.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
