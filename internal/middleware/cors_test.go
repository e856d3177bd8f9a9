package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRequest(origins []string, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(origins))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", origin)
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_AllowListedOrigin(t *testing.T) {
	w := corsRequest([]string{"https://registro.example.com"}, "https://registro.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://registro.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	w := corsRequest([]string{"https://registro.example.com"}, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	w := corsRequest([]string{"*"}, "https://anywhere.example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
