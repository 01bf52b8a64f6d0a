package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/logger"
)

func serve(engine *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)
	return rr
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RequestIDMiddleware())

	var seen string
	engine.GET("/ping", func(c *gin.Context) {
		seen = c.GetString(string(constants.ContextKeyRequestID))
		c.Status(http.StatusOK)
	})

	t.Run("generates an id when none is supplied", func(t *testing.T) {
		rr := serve(engine, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(constants.HeaderRequestID))
	})

	t.Run("honors the inbound header", func(t *testing.T) {
		rr := serve(engine, map[string]string{constants.HeaderRequestID: "inbound-42"})
		assert.Equal(t, "inbound-42", seen)
		assert.Equal(t, "inbound-42", rr.Header().Get(constants.HeaderRequestID))
	})
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newEngine := func(keys []string) *gin.Engine {
		engine := gin.New()
		engine.Use(APIKeyAuthMiddleware(keys))
		engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
		return engine
	}

	t.Run("open when no keys configured", func(t *testing.T) {
		rr := serve(newEngine(nil), nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		rr := serve(newEngine([]string{"k1"}), nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "unauthorized")
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		rr := serve(newEngine([]string{"k1"}), map[string]string{constants.HeaderAPIKey: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("accepts any configured key", func(t *testing.T) {
		engine := newEngine([]string{"k1", "k2"})
		for _, key := range []string{"k1", "k2"} {
			rr := serve(engine, map[string]string{constants.HeaderAPIKey: key})
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(RecoveryMiddleware(logger.NewNop()))
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) { panic("boom") })

	rr := serve(engine, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal_error")
	assert.NotContains(t, rr.Body.String(), "boom")
}
