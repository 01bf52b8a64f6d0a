// Package handlers contains the gin handlers for the affiliate gateway's
// inbound HTTP surface.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/affgate/affgate/internal/application/dto"
	"github.com/affgate/affgate/internal/application/service"
	"github.com/affgate/affgate/pkg/errors"
)

// GatewayHandler maps HTTP endpoints onto logical gateway methods.
type GatewayHandler struct {
	gateway *service.Gateway
}

// NewGatewayHandler creates a GatewayHandler.
func NewGatewayHandler(gateway *service.Gateway) *GatewayHandler {
	return &GatewayHandler{gateway: gateway}
}

// SearchProducts handles POST /api/v1/products/search.
func (h *GatewayHandler) SearchProducts(c *gin.Context) {
	var req dto.ProductSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrValidation.WithError(err))
		return
	}

	envelope := h.gateway.Handle(c.Request.Context(), "product.search", req.Params())
	dto.SendEnvelope(c, envelope)
}

// GetProduct handles GET /api/v1/products/:product_id.
func (h *GatewayHandler) GetProduct(c *gin.Context) {
	params := map[string]string{
		"product_ids": c.Param("product_id"),
	}
	if currency := c.Query("target_currency"); currency != "" {
		params["target_currency"] = currency
	}
	if language := c.Query("target_language"); language != "" {
		params["target_language"] = language
	}

	envelope := h.gateway.Handle(c.Request.Context(), "product.detail", params)
	dto.SendEnvelope(c, envelope)
}

// HotProducts handles GET /api/v1/products/hot.
func (h *GatewayHandler) HotProducts(c *gin.Context) {
	params := make(map[string]string)
	for _, key := range []string{"category_ids", "page_no", "page_size", "target_currency", "target_language"} {
		if value := c.Query(key); value != "" {
			params[key] = value
		}
	}

	envelope := h.gateway.Handle(c.Request.Context(), "product.hot", params)
	dto.SendEnvelope(c, envelope)
}

// ListCategories handles GET /api/v1/categories.
func (h *GatewayHandler) ListCategories(c *gin.Context) {
	envelope := h.gateway.Handle(c.Request.Context(), "category.list", nil)
	dto.SendEnvelope(c, envelope)
}

// GenerateLinks handles POST /api/v1/affiliate/links.
func (h *GatewayHandler) GenerateLinks(c *gin.Context) {
	var req dto.LinkGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrValidation.WithError(err))
		return
	}

	envelope := h.gateway.Handle(c.Request.Context(), "link.generate", req.Params())
	dto.SendEnvelope(c, envelope)
}
