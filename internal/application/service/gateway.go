// Package service contains the gateway orchestration: one inbound call is
// validated, answered from cache when possible, signed and executed upstream
// otherwise, degraded to mock data when upstream infrastructure fails, and
// always answered with exactly one response envelope.
package service

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/affgate/affgate/internal/application/dto"
	"github.com/affgate/affgate/internal/cache"
	"github.com/affgate/affgate/internal/config"
	"github.com/affgate/affgate/internal/infrastructure/monitoring"
	"github.com/affgate/affgate/internal/mock"
	"github.com/affgate/affgate/internal/signer"
	"github.com/affgate/affgate/internal/upstream"
	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
	"github.com/affgate/affgate/pkg/logger"
)

// Gateway orchestrates inbound calls end to end. All collaborators are
// injected at construction; the Gateway keeps no ambient global state.
type Gateway struct {
	signer   *signer.Signer
	caller   upstream.Caller
	cache    *cache.Tiered
	mock     *mock.Provider
	runtime  *config.Runtime
	cacheCfg config.CacheConfig
	metrics  *monitoring.Metrics
	log      logger.Logger

	// group collapses concurrent identical upstream calls onto one flight.
	group singleflight.Group
}

// NewGateway wires a Gateway from its collaborators.
func NewGateway(
	sgn *signer.Signer,
	caller upstream.Caller,
	store *cache.Tiered,
	mockProvider *mock.Provider,
	runtime *config.Runtime,
	cacheCfg config.CacheConfig,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *Gateway {
	return &Gateway{
		signer:   sgn,
		caller:   caller,
		cache:    store,
		mock:     mockProvider,
		runtime:  runtime,
		cacheCfg: cacheCfg,
		metrics:  metrics,
		log:      log,
	}
}

// Handle processes one logical call and always returns an envelope.
func (g *Gateway) Handle(ctx context.Context, method string, rawParams map[string]string) *dto.Envelope {
	start := time.Now()
	envelope := g.handle(ctx, method, rawParams)
	envelope.Metadata.ProcessingMS = time.Since(start).Milliseconds()

	result := "success"
	switch {
	case !envelope.Success:
		result = "error"
	case envelope.Metadata.MockMode:
		result = "mock"
	case envelope.Metadata.CacheHit:
		result = "cache_hit"
	}
	g.metrics.RecordRequest(method, result, time.Since(start))

	return envelope
}

func (g *Gateway) handle(ctx context.Context, method string, rawParams map[string]string) *dto.Envelope {
	meta := dto.Metadata{RequestID: requestIDFrom(ctx)}

	spec, ok := LookupMethod(method)
	if !ok {
		return dto.NewErrorEnvelope(errors.ErrNotFound.WithMessage("unknown method %q", method), meta)
	}

	params, appErr := spec.Normalize(rawParams, g.signer.TrackingID())
	if appErr != nil {
		return dto.NewErrorEnvelope(appErr, meta)
	}

	key := cache.Key(method, params)
	ttl := g.cacheCfg.TTLFor(spec.TTLClass)

	if ttl > 0 {
		if data, found := g.cache.Get(ctx, key); found {
			g.metrics.RecordCacheLookup(method, true)
			meta.CacheHit = true
			return &dto.Envelope{Success: true, Data: data, Metadata: meta}
		}
		g.metrics.RecordCacheLookup(method, false)
	}

	if g.runtime.ForcedMock() || !g.signer.HasCredentials() {
		cause := "forced"
		if !g.signer.HasCredentials() {
			cause = "missing_credentials"
		}
		return g.mockEnvelope(ctx, spec, params, meta, cause, "")
	}

	result := g.callUpstream(ctx, spec, params, key)

	switch result.Kind {
	case upstream.KindOK:
		meta.MockMode = false
		if ttl > 0 {
			g.cache.Set(ctx, key, result.Payload, ttl)
		}
		return &dto.Envelope{Success: true, Data: result.Payload, Metadata: meta}

	case upstream.KindAuthFailure:
		// Credential problems need operator attention; log them loudly
		// before degrading.
		g.log.Error(ctx, "upstream rejected credentials, serving mock data",
			errors.ErrUpstreamAuth.WithMessage("%s", result.ErrorText()),
			logger.Fields{"method": method, "upstream_code": result.Code})
		return g.mockEnvelope(ctx, spec, params, meta, "auth_failure", result.ErrorText())

	case upstream.KindTransportFailure:
		g.log.Warn(ctx, "upstream unreachable, serving mock data", logger.Fields{
			"method": method,
			"reason": result.ErrorText(),
		})
		return g.mockEnvelope(ctx, spec, params, meta, "transport_failure", result.ErrorText())

	default: // upstream.KindBusinessError
		appErr := errors.ErrUpstreamBusiness
		if result.RateLimited {
			appErr = errors.ErrRateLimited
		}
		appErr = appErr.
			WithMessage("%s", result.ErrorText()).
			WithDetail("upstream_code", result.Code)
		meta.APIError = result.ErrorText()
		return dto.NewErrorEnvelope(appErr, meta)
	}
}

// callUpstream signs and executes the call, collapsing concurrent identical
// requests onto a single flight keyed by the cache key.
func (g *Gateway) callUpstream(ctx context.Context, spec MethodSpec, params map[string]string, key string) upstream.CallResult {
	shared, _, _ := g.group.Do(key, func() (interface{}, error) {
		signed, err := g.signer.Sign(spec.UpstreamMethod, params)
		if err != nil {
			// Treated as upstream-unavailable: the caller falls back
			// to mock data rather than hard-failing.
			return upstream.CallResult{Kind: upstream.KindTransportFailure, Err: err}, nil
		}

		start := time.Now()
		result := g.caller.Call(ctx, signed)
		g.metrics.RecordUpstreamLatency(spec.Name, time.Since(start))
		return result, nil
	})
	return shared.(upstream.CallResult)
}

// mockEnvelope serves synthetic data. Mock payloads are never cached so
// synthetic rows cannot be mistaken for live data on later hits.
func (g *Gateway) mockEnvelope(ctx context.Context, spec MethodSpec, params map[string]string, meta dto.Metadata, cause, apiError string) *dto.Envelope {
	g.metrics.RecordMockFallback(spec.Name, cause)

	payload, err := g.mock.Generate(spec.Name, params)
	if err != nil {
		// Unknown methods are rejected before this point, so this is a
		// genuine internal fault.
		g.log.Error(ctx, "mock generation failed", err, logger.Fields{"method": spec.Name})
		return dto.NewErrorEnvelope(errors.ErrInternal.WithError(err), meta)
	}

	meta.MockMode = true
	meta.APIError = apiError
	return &dto.Envelope{Success: true, Data: json.RawMessage(payload), Metadata: meta}
}

func requestIDFrom(ctx context.Context) string {
	if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}
