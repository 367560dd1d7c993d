package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/grocerylist/backend/internal/api"
	"github.com/pageza/grocerylist/backend/internal/logging"
)

func clientIP(t *testing.T, deps api.Dependencies, remoteAddr, forwarded string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := SetupRouter(logging.Discard(), deps)
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwarded)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestSetupRouterTrustsNoProxyByDefault(t *testing.T) {
	assert.Equal(t, "203.0.113.7", clientIP(t, api.Dependencies{}, "203.0.113.7:51000", "1.1.1.1"))
}

func TestSetupRouterHonorsTrustedProxies(t *testing.T) {
	deps := api.Dependencies{TrustedProxies: []string{"10.0.0.0/8"}}
	assert.Equal(t, "198.51.100.4", clientIP(t, deps, "10.1.2.3:443", "198.51.100.4"))
	assert.Equal(t, "203.0.113.7", clientIP(t, deps, "203.0.113.7:51000", "198.51.100.4"))
}

func TestSetupRouterRejectsBadTrustedProxies(t *testing.T) {
	deps := api.Dependencies{TrustedProxies: []string{"load-balancer"}}
	assert.Equal(t, "203.0.113.7", clientIP(t, deps, "203.0.113.7:51000", "1.1.1.1"))
}
