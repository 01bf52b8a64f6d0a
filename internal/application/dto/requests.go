package dto

import (
	"strconv"
	"strings"
)

// ProductSearchRequest is the inbound body for product search.
type ProductSearchRequest struct {
	Keywords       string `json:"keywords" binding:"required"`
	CategoryIDs    string `json:"category_ids"`
	PageNo         int    `json:"page_no"`
	PageSize       int    `json:"page_size"`
	MinSalePrice   int    `json:"min_sale_price"`
	MaxSalePrice   int    `json:"max_sale_price"`
	Sort           string `json:"sort"`
	TargetCurrency string `json:"target_currency"`
	TargetLanguage string `json:"target_language"`
}

// Params flattens the request into the gateway's parameter map. Zero values
// are omitted so method defaults apply.
func (r *ProductSearchRequest) Params() map[string]string {
	params := map[string]string{
		"keywords": r.Keywords,
	}
	putString(params, "category_ids", r.CategoryIDs)
	putInt(params, "page_no", r.PageNo)
	putInt(params, "page_size", r.PageSize)
	putInt(params, "min_sale_price", r.MinSalePrice)
	putInt(params, "max_sale_price", r.MaxSalePrice)
	putString(params, "sort", r.Sort)
	putString(params, "target_currency", r.TargetCurrency)
	putString(params, "target_language", r.TargetLanguage)
	return params
}

// LinkGenerateRequest is the inbound body for affiliate link generation.
type LinkGenerateRequest struct {
	SourceValues      []string `json:"source_values" binding:"required,min=1"`
	PromotionLinkType *int     `json:"promotion_link_type"`
}

// Params flattens the request into the gateway's parameter map.
func (r *LinkGenerateRequest) Params() map[string]string {
	params := map[string]string{
		"source_values": strings.Join(r.SourceValues, ","),
	}
	if r.PromotionLinkType != nil {
		params["promotion_link_type"] = strconv.Itoa(*r.PromotionLinkType)
	}
	return params
}

// CacheClearRequest is the inbound body for administrative cache
// invalidation. Method limits the clear to one logical method's entries.
type CacheClearRequest struct {
	Method string `json:"method"`
}

func putString(params map[string]string, key, value string) {
	if value != "" {
		params[key] = value
	}
}

func putInt(params map[string]string, key string, value int) {
	if value != 0 {
		params[key] = strconv.Itoa(value)
	}
}
