package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portssvc "github.com/SscSPs/split_ledger/internal/core/ports/services"
	"github.com/SscSPs/split_ledger/internal/handlers"
	"github.com/SscSPs/split_ledger/internal/platform/config"
)

func newRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	services := &portssvc.ServiceContainer{Transaction: new(MockTransactionService)}
	require.NoError(t, handlers.RegisterRoutes(r, cfg, services))
	return r
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", RateLimit: "100-M"}

	r := newRouter(t, cfg)

	w := serve(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = serve(r, "/api/v1/transactions/tx-1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))

	w = serve(r, "/swagger/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterRoutes_Production(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret", RateLimit: "100-M", IsProduction: true}

	r := newRouter(t, cfg)

	w := serve(r, "/swagger/index.html")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterRoutes_InvalidRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "secret", RateLimit: "often"}

	err := handlers.RegisterRoutes(gin.New(), cfg, &portssvc.ServiceContainer{})

	assert.ErrorContains(t, err, "rate limit")
}
