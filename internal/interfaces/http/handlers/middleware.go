package handlers

import (
	"context"
	"crypto/subtle"
	goerrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/affgate/affgate/internal/application/dto"
	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
	"github.com/affgate/affgate/pkg/logger"
)

// RequestIDMiddleware assigns every request an identifier, honoring a
// client-supplied X-Request-ID, and propagates it through the request context
// and the response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Header(constants.HeaderRequestID, requestID)

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// LoggingMiddleware logs incoming requests.
func LoggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		log.Info(c.Request.Context(), "request processed", logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
	}
}

// RecoveryMiddleware converts panics into structured internal errors so no
// request ends without an envelope.
func RecoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error(c.Request.Context(), "panic recovered", goerrors.New("panic"), logger.Fields{
					"panic": recovered,
					"path":  c.Request.URL.Path,
				})
				c.Abort()
				dto.SendError(c, errors.ErrInternal)
			}
		}()
		c.Next()
	}
}

// APIKeyAuthMiddleware validates the internal API key header. With no keys
// configured the surface is open, which is the expected mode for local
// development.
func APIKeyAuthMiddleware(apiKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(apiKeys) == 0 {
			c.Next()
			return
		}

		provided := c.GetHeader(constants.HeaderAPIKey)
		for _, key := range apiKeys {
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				c.Next()
				return
			}
		}

		c.Abort()
		dto.SendError(c, errors.ErrUnauthorized)
	}
}
