package service

import (
	"strconv"
	"strings"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
)

// MethodSpec declares one logical API method: its upstream counterpart, the
// parameters it accepts and the cache TTL class of its responses.
type MethodSpec struct {
	Name           string
	UpstreamMethod string
	TTLClass       constants.TTLClass
	Required       []string
	Defaults       map[string]string
	// NeedsTracking injects the affiliate tracking id before signing.
	NeedsTracking bool
}

var methodRegistry = map[string]MethodSpec{
	"product.search": {
		Name:           "product.search",
		UpstreamMethod: "aliexpress.affiliate.product.query",
		TTLClass:       constants.TTLClassSearch,
		Required:       []string{"keywords"},
		Defaults: map[string]string{
			"page_no":         strconv.Itoa(constants.DefaultPageNo),
			"page_size":       strconv.Itoa(constants.DefaultPageSize),
			"target_currency": constants.DefaultCurrency,
			"target_language": constants.DefaultLanguage,
		},
		NeedsTracking: true,
	},
	"product.detail": {
		Name:           "product.detail",
		UpstreamMethod: "aliexpress.affiliate.productdetail.get",
		TTLClass:       constants.TTLClassDetail,
		Required:       []string{"product_ids"},
		Defaults: map[string]string{
			"target_currency": constants.DefaultCurrency,
			"target_language": constants.DefaultLanguage,
		},
		NeedsTracking: true,
	},
	"product.hot": {
		Name:           "product.hot",
		UpstreamMethod: "aliexpress.affiliate.hotproduct.query",
		TTLClass:       constants.TTLClassSearch,
		Defaults: map[string]string{
			"page_no":         strconv.Itoa(constants.DefaultPageNo),
			"page_size":       strconv.Itoa(constants.DefaultPageSize),
			"target_currency": constants.DefaultCurrency,
			"target_language": constants.DefaultLanguage,
		},
		NeedsTracking: true,
	},
	"category.list": {
		Name:           "category.list",
		UpstreamMethod: "aliexpress.affiliate.category.get",
		TTLClass:       constants.TTLClassCategory,
	},
	"link.generate": {
		Name:           "link.generate",
		UpstreamMethod: "aliexpress.affiliate.link.generate",
		TTLClass:       constants.TTLClassNone,
		Required:       []string{"source_values"},
		Defaults: map[string]string{
			"promotion_link_type": "0",
		},
		NeedsTracking: true,
	},
}

// LookupMethod resolves a logical method name.
func LookupMethod(name string) (MethodSpec, bool) {
	spec, ok := methodRegistry[name]
	return spec, ok
}

// Normalize validates rawParams against the method's rules and applies defaults,
// returning the canonical parameter set used for cache keys and signing.
// rawParams is never mutated.
func (m MethodSpec) Normalize(rawParams map[string]string, trackingID string) (map[string]string, *errors.AppError) {
	params := make(map[string]string, len(rawParams)+len(m.Defaults)+1)
	for k, v := range rawParams {
		for _, reserved := range constants.ReservedParams {
			if k == reserved {
				return nil, errors.ErrValidation.
					WithMessage("parameter %q is reserved", k).
					WithDetail("parameter", k)
			}
		}
		params[k] = strings.TrimSpace(v)
	}

	for _, field := range m.Required {
		if params[field] == "" {
			return nil, errors.ErrValidation.
				WithMessage("missing required parameter %q", field).
				WithDetail("parameter", field)
		}
	}

	for key, value := range m.Defaults {
		if params[key] == "" {
			params[key] = value
		}
	}

	if err := validateRanges(params); err != nil {
		return nil, err
	}

	if m.NeedsTracking && trackingID != "" {
		params["tracking_id"] = trackingID
	}

	return params, nil
}

func validateRanges(params map[string]string) *errors.AppError {
	if raw, ok := params["page_no"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return errors.ErrValidation.
				WithMessage("page_no must be a positive integer").
				WithDetail("parameter", "page_no")
		}
	}
	if raw, ok := params["page_size"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > constants.MaxPageSize {
			return errors.ErrValidation.
				WithMessage("page_size must be between 1 and %d", constants.MaxPageSize).
				WithDetail("parameter", "page_size")
		}
	}
	if keywords, ok := params["keywords"]; ok && len(keywords) > constants.MaxKeywordLen {
		return errors.ErrValidation.
			WithMessage("keywords must not exceed %d characters", constants.MaxKeywordLen).
			WithDetail("parameter", "keywords")
	}
	if sources, ok := params["source_values"]; ok {
		count := 0
		for _, source := range strings.Split(sources, ",") {
			if strings.TrimSpace(source) != "" {
				count++
			}
		}
		if count == 0 {
			return errors.ErrValidation.
				WithMessage("source_values must contain at least one URL").
				WithDetail("parameter", "source_values")
		}
		if count > constants.MaxLinkSources {
			return errors.ErrValidation.
				WithMessage("source_values must not exceed %d URLs", constants.MaxLinkSources).
				WithDetail("parameter", "source_values")
		}
	}
	return nil
}
