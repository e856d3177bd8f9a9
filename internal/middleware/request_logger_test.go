package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/registro-api/internal/models"
	"github.com/sjperalta/registro-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger.SetupWriter(&buf, "development", "info")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	protected := r.Group("/api/v1", Auth(testSecret))
	protected.GET("/jobs/:name", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	r.ServeHTTP(w, req)
	assert.Empty(t, buf.String())

	token, err := SignToken(testSecret, "mrossi", models.RoleOperator, time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "route=/api/v1/jobs/:name")
	assert.Contains(t, out, "actor=mrossi")
	assert.Contains(t, out, "status=404")
}
