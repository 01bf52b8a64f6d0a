package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/affgate/affgate/internal/application/dto"
	"github.com/affgate/affgate/internal/cache"
	"github.com/affgate/affgate/pkg/errors"
	"github.com/affgate/affgate/pkg/logger"
)

// AdminHandler exposes administrative cache operations.
type AdminHandler struct {
	cache *cache.Tiered
	log   logger.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(store *cache.Tiered, log logger.Logger) *AdminHandler {
	return &AdminHandler{cache: store, log: log}
}

// ClearCache handles POST /admin/cache/clear. An optional method in the body
// limits invalidation to that method's entries.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	var req dto.CacheClearRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			dto.SendError(c, errors.ErrValidation.WithError(err))
			return
		}
	}

	prefix := cache.KeyPrefix(req.Method)
	if err := h.cache.Clear(c.Request.Context(), prefix); err != nil {
		h.log.Error(c.Request.Context(), "cache clear failed", err, logger.Fields{"prefix": prefix})
		dto.SendError(c, errors.ErrCache.WithError(err))
		return
	}

	h.log.Info(c.Request.Context(), "cache cleared", logger.Fields{"prefix": prefix})
	c.JSON(http.StatusOK, gin.H{
		"cleared": true,
		"prefix":  prefix,
	})
}

// CacheStats handles GET /admin/cache/stats.
func (h *AdminHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fast_tier_entries": h.cache.FastLen(),
		"fallback_tier":     h.cache.HasFallback(),
	})
}
