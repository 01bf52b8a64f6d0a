// Package dto defines the response envelope returned to every caller and the
// gin helpers that write it. Every code path through the gateway produces
// exactly one envelope; raw errors never reach the transport layer.
package dto

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data,omitempty"`
	Metadata Metadata        `json:"metadata"`
	Error    *ErrorDTO       `json:"error,omitempty"`
}

// Metadata describes how the response was produced.
type Metadata struct {
	RequestID    string `json:"request_id,omitempty"`
	CacheHit     bool   `json:"cache_hit"`
	MockMode     bool   `json:"mock_mode"`
	ProcessingMS int64  `json:"processing_ms"`
	// APIError preserves the upstream failure text when mock fallback was
	// taken, for operator visibility.
	APIError string `json:"api_error,omitempty"`
}

// ErrorDTO is the error descriptor inside an envelope.
type ErrorDTO struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewErrorEnvelope builds a failure envelope from a structured error.
func NewErrorEnvelope(err *errors.AppError, meta Metadata) *Envelope {
	return &Envelope{
		Success:  false,
		Metadata: meta,
		Error: &ErrorDTO{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
	}
}

// HTTPStatus maps an envelope to its transport status code. Successful and
// mock-degraded responses are 200; failures follow the error taxonomy.
func (e *Envelope) HTTPStatus() int {
	if e.Success || e.Error == nil {
		return http.StatusOK
	}
	switch e.Error.Code {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodeUnauthorized:
		return http.StatusUnauthorized
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeRateLimited:
		return http.StatusTooManyRequests
	case errors.CodeUpstreamBusiness, errors.CodeUpstreamTransport, errors.CodeUpstreamAuth:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// SendEnvelope writes an envelope with its mapped status code.
func SendEnvelope(c *gin.Context, envelope *Envelope) {
	if envelope.Metadata.RequestID == "" {
		envelope.Metadata.RequestID = c.GetString(string(constants.ContextKeyRequestID))
	}
	c.JSON(envelope.HTTPStatus(), envelope)
}

// SendError converts any error into a failure envelope and writes it.
func SendError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	SendEnvelope(c, NewErrorEnvelope(appErr, Metadata{
		RequestID: c.GetString(string(constants.ContextKeyRequestID)),
	}))
}
