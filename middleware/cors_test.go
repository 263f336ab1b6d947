package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("https://app.chatdesk.test"))
	r.POST("/api/widget/chat", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "hi"}) })
	r.GET("/api/businesses", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	return r
}

func TestWidgetPreflightAllowsAnyOrigin(t *testing.T) {
	r := newCORSRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/widget/chat", nil)
	req.Header.Set("Origin", "https://customer-site.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestWidgetResponseCarriesWildcardOrigin(t *testing.T) {
	r := newCORSRouter()
	req := httptest.NewRequest(http.MethodPost, "/api/widget/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardUsesFrontendOrigin(t *testing.T) {
	r := newCORSRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/businesses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://app.chatdesk.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestDashboardPreflight(t *testing.T) {
	r := newCORSRouter()
	req := httptest.NewRequest(http.MethodOptions, "/api/businesses", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
