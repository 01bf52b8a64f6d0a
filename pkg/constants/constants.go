// Package constants defines shared constant values for the affiliate gateway:
// context keys, header names, upstream parameter names and cache TTL classes.
package constants

import "time"

// ContextKey is the type used for values stored in a request context.
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request identifier.
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyClientIP carries the resolved client address.
	ContextKeyClientIP ContextKey = "client_ip"
)

// HTTP header names used by the inbound surface.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderAPIKey    = "X-API-Key"
)

// Reserved upstream parameter names. Caller-supplied parameters must never
// collide with these; the signer owns them.
const (
	ParamAppKey     = "app_key"
	ParamMethod     = "method"
	ParamTimestamp  = "timestamp"
	ParamSignMethod = "sign_method"
	ParamSign       = "sign"
)

// ReservedParams lists every parameter name owned by the signer.
var ReservedParams = []string{ParamAppKey, ParamMethod, ParamTimestamp, ParamSignMethod, ParamSign}

// SignMethod identifies the upstream signature algorithm.
type SignMethod string

const (
	// SignMethodMD5 wraps the sorted parameter string in the secret and
	// digests it with MD5, per the legacy upstream contract.
	SignMethodMD5 SignMethod = "md5"
	// SignMethodSHA256 computes an HMAC-SHA256 over the sorted parameter
	// string keyed by the secret.
	SignMethodSHA256 SignMethod = "sha256"
)

// TTLClass groups logical methods by how long their responses stay fresh.
type TTLClass string

const (
	TTLClassSearch   TTLClass = "search"
	TTLClassDetail   TTLClass = "detail"
	TTLClassCategory TTLClass = "category"
	// TTLClassNone marks methods whose responses are never cached.
	TTLClassNone TTLClass = "none"
)

// Defaults applied to normalized request parameters.
const (
	DefaultPageNo   = 1
	DefaultPageSize = 20
	MaxPageSize     = 50
	MaxKeywordLen   = 200
	MaxLinkSources  = 10

	DefaultCurrency = "USD"
	DefaultLanguage = "EN"
)

// Default timeouts and cache sizing.
const (
	DefaultUpstreamTimeout  = 30 * time.Second
	DefaultSearchTTL        = 5 * time.Minute
	DefaultDetailTTL        = 30 * time.Minute
	DefaultCategoryTTL      = 12 * time.Hour
	DefaultMemoryMaxEntries = 4096
)

// CacheKeyPrefix namespaces every gateway entry in shared cache backends.
const CacheKeyPrefix = "affgate:"
