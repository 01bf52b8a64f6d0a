// Package mock generates deterministic synthetic payloads shaped like the
// AliExpress affiliate API's responses. The gateway serves these when
// credentials are absent or upstream is unreachable, so callers always get a
// well-formed envelope.
package mock

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/affgate/affgate/pkg/errors"
)

// Provider generates synthetic data. Stateless, no I/O, safe for concurrent
// use.
type Provider struct{}

// NewProvider creates a Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Product mirrors the field set of an upstream affiliate product record.
type Product struct {
	ProductID              int64  `json:"product_id"`
	ProductTitle           string `json:"product_title"`
	ProductMainImageURL    string `json:"product_main_image_url"`
	ProductDetailURL       string `json:"product_detail_url"`
	AppSalePrice           string `json:"app_sale_price"`
	AppSalePriceCurrency   string `json:"app_sale_price_currency"`
	OriginalPrice          string `json:"original_price"`
	Discount               string `json:"discount"`
	EvaluateRate           string `json:"evaluate_rate"`
	LastestVolume          int    `json:"lastest_volume"`
	FirstLevelCategoryName string `json:"first_level_category_name"`
	PromotionLink          string `json:"promotion_link"`
}

// Category mirrors an upstream category record.
type Category struct {
	CategoryID       int    `json:"category_id"`
	CategoryName     string `json:"category_name"`
	ParentCategoryID int    `json:"parent_category_id"`
}

// PromotionLink mirrors an upstream generated affiliate link.
type PromotionLink struct {
	SourceValue   string `json:"source_value"`
	PromotionLink string `json:"promotion_link"`
}

var mockCategories = []Category{
	{CategoryID: 3, CategoryName: "Electronics", ParentCategoryID: 0},
	{CategoryID: 7, CategoryName: "Computer & Office", ParentCategoryID: 0},
	{CategoryID: 15, CategoryName: "Home & Garden", ParentCategoryID: 0},
	{CategoryID: 1501, CategoryName: "Kitchen Fixtures", ParentCategoryID: 15},
	{CategoryID: 36, CategoryName: "Jewelry & Accessories", ParentCategoryID: 0},
	{CategoryID: 44, CategoryName: "Consumer Electronics", ParentCategoryID: 3},
}

// Generate returns a synthetic payload for the given logical method,
// incorporating the request parameters so the response is recognizably
// related to the request. Deterministic for fixed inputs.
func (p *Provider) Generate(method string, params map[string]string) (json.RawMessage, error) {
	switch method {
	case "product.search", "product.hot":
		return p.productList(params)
	case "product.detail":
		return p.productDetail(params)
	case "category.list":
		return p.categoryList()
	case "link.generate":
		return p.promotionLinks(params)
	default:
		return nil, errors.ErrNotFound.WithMessage("no mock data for method %q", method)
	}
}

func (p *Provider) productList(params map[string]string) (json.RawMessage, error) {
	keyword := params["keywords"]
	if keyword == "" {
		keyword = "Sample Product"
	}
	pageSize := intParam(params, "page_size", 20)
	pageNo := intParam(params, "page_no", 1)
	currency := stringParam(params, "target_currency", "USD")
	seed := seedFrom(params)

	products := make([]Product, 0, pageSize)
	for i := 0; i < pageSize; i++ {
		products = append(products, p.product(seed, int64((pageNo-1)*pageSize+i+1), keyword, currency))
	}

	payload := map[string]interface{}{
		"current_page_no":      pageNo,
		"current_record_count": len(products),
		"total_record_count":   500,
		"products": map[string]interface{}{
			"product": products,
		},
	}
	return json.Marshal(payload)
}

func (p *Provider) productDetail(params map[string]string) (json.RawMessage, error) {
	currency := stringParam(params, "target_currency", "USD")
	seed := seedFrom(params)

	ids := strings.Split(params["product_ids"], ",")
	products := make([]Product, 0, len(ids))
	for _, id := range ids {
		productID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			productID = int64(seed % 1_000_000_000)
		}
		item := p.product(seed, productID%997, "Product "+strconv.FormatInt(productID, 10), currency)
		item.ProductID = productID
		products = append(products, item)
	}

	payload := map[string]interface{}{
		"current_record_count": len(products),
		"products": map[string]interface{}{
			"product": products,
		},
	}
	return json.Marshal(payload)
}

func (p *Provider) categoryList() (json.RawMessage, error) {
	payload := map[string]interface{}{
		"total_result_count": len(mockCategories),
		"categories": map[string]interface{}{
			"category": mockCategories,
		},
	}
	return json.Marshal(payload)
}

func (p *Provider) promotionLinks(params map[string]string) (json.RawMessage, error) {
	sources := strings.Split(params["source_values"], ",")
	links := make([]PromotionLink, 0, len(sources))
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(source))
		links = append(links, PromotionLink{
			SourceValue:   source,
			PromotionLink: fmt.Sprintf("https://s.click.aliexpress.com/e/_mock%08x", h.Sum32()),
		})
	}

	payload := map[string]interface{}{
		"total_result_count": len(links),
		"tracking_id":        params["tracking_id"],
		"promotion_links": map[string]interface{}{
			"promotion_link": links,
		},
	}
	return json.Marshal(payload)
}

// product derives one synthetic record from the seed and index. The "MOCK"
// marker in the title keeps synthetic rows clearly distinguishable from live
// data.
func (p *Provider) product(seed uint64, index int64, keyword, currency string) Product {
	n := seed + uint64(index)*2654435761
	price := float64(1000+n%49000) / 100
	original := price * (1 + float64(n%60+10)/100)

	return Product{
		ProductID:              int64(100_000_000 + n%900_000_000),
		ProductTitle:           fmt.Sprintf("[MOCK] %s - Item %d", keyword, index),
		ProductMainImageURL:    fmt.Sprintf("https://ae01.alicdn.com/kf/mock_%d.jpg", n%100000),
		ProductDetailURL:       fmt.Sprintf("https://www.aliexpress.com/item/%d.html", 100_000_000+n%900_000_000),
		AppSalePrice:           strconv.FormatFloat(price, 'f', 2, 64),
		AppSalePriceCurrency:   currency,
		OriginalPrice:          strconv.FormatFloat(original, 'f', 2, 64),
		Discount:               fmt.Sprintf("%d%%", n%60+10),
		EvaluateRate:           fmt.Sprintf("%d.%d%%", 90+n%9, n%10),
		LastestVolume:          int(n % 5000),
		FirstLevelCategoryName: mockCategories[n%uint64(len(mockCategories))].CategoryName,
		PromotionLink:          fmt.Sprintf("https://s.click.aliexpress.com/e/_mock%08d", n%100_000_000),
	}
}

// seedFrom folds the sorted parameter set into a stable seed so identical
// requests produce identical mock data.
func seedFrom(params map[string]string) uint64 {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New64a()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(params[k]))
		h.Write([]byte{';'})
	}
	return h.Sum64()
}

func intParam(params map[string]string, key string, fallback int) int {
	if raw, ok := params[key]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func stringParam(params map[string]string, key, fallback string) string {
	if v, ok := params[key]; ok && v != "" {
		return v
	}
	return fallback
}
