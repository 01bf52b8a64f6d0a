// Package upstream executes signed calls against the AliExpress affiliate
// gateway and classifies the outcome into a tagged result, so the gateway
// service can decide between mock fallback and structured propagation in one
// place instead of per-endpoint error handling.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/affgate/affgate/internal/signer"
	"github.com/affgate/affgate/pkg/logger"
)

// ResultKind tags the outcome of one upstream call.
type ResultKind int

const (
	// KindOK carries the inner result payload of a successful call.
	KindOK ResultKind = iota
	// KindTransportFailure covers timeouts, DNS and connection errors, and
	// unparseable responses. Triggers mock fallback.
	KindTransportFailure
	// KindAuthFailure means upstream rejected the signature or app key.
	// Triggers mock fallback and loud logging.
	KindAuthFailure
	// KindBusinessError is a well-formed upstream error (rate limit,
	// rejected arguments). Propagated to the caller, never masked.
	KindBusinessError
)

// CallResult is the tagged outcome of an upstream call.
type CallResult struct {
	Kind        ResultKind
	Payload     json.RawMessage // inner result, only for KindOK
	Code        string          // upstream error code, when present
	Message     string          // upstream error message, when present
	RateLimited bool            // set for flow-limit business errors
	Err         error           // transport-level cause, when present
}

// ErrorText renders the upstream failure for envelope metadata.
func (r CallResult) ErrorText() string {
	switch {
	case r.Err != nil && r.Message != "":
		return fmt.Sprintf("%s (%s)", r.Message, r.Err)
	case r.Err != nil:
		return r.Err.Error()
	case r.Code != "":
		return fmt.Sprintf("%s: %s", r.Code, r.Message)
	default:
		return r.Message
	}
}

// Caller executes one signed request. The gateway service depends on this
// interface; tests substitute a stub.
type Caller interface {
	Call(ctx context.Context, req *signer.SignedRequest) CallResult
}

// Client is the HTTP implementation of Caller.
type Client struct {
	httpClient *http.Client
	gatewayURL string
	log        logger.Logger
}

// NewClient creates an upstream client with a hard per-call timeout.
func NewClient(gatewayURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		gatewayURL: gatewayURL,
		log:        log,
	}
}

// respResult is the inner envelope of a successful gateway response.
type respResult struct {
	RespCode int             `json:"resp_code"`
	RespMsg  string          `json:"resp_msg"`
	Result   json.RawMessage `json:"result"`
}

// errorResponse is the top-level gateway error envelope.
type errorResponse struct {
	Code    json.Number `json:"code"`
	Msg     string      `json:"msg"`
	SubCode string      `json:"sub_code"`
	SubMsg  string      `json:"sub_msg"`
}

// Call posts the signed parameter set to the gateway and classifies the
// response. A single attempt; retries are the caller's decision.
func (c *Client) Call(ctx context.Context, req *signer.SignedRequest) CallResult {
	body := strings.NewReader(req.Query().Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, body)
	if err != nil {
		return CallResult{Kind: KindTransportFailure, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn(ctx, "upstream call failed", logger.Fields{
			"method": req.Method,
			"reason": err.Error(),
		})
		return CallResult{Kind: KindTransportFailure, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return CallResult{Kind: KindTransportFailure, Err: err}
	}

	c.log.Debug(ctx, "upstream call completed", logger.Fields{
		"method":     req.Method,
		"status":     resp.StatusCode,
		"latency_ms": time.Since(start).Milliseconds(),
	})

	result := Classify(req.Method, raw)
	if result.Kind == KindTransportFailure && result.Err == nil {
		result.Err = fmt.Errorf("unexpected upstream response (HTTP %d)", resp.StatusCode)
	}
	return result
}

// Classify parses a raw gateway response body into a CallResult. Split from
// Call so response-shape handling is testable without a server.
func Classify(method string, raw []byte) CallResult {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return CallResult{Kind: KindTransportFailure, Err: fmt.Errorf("malformed upstream response: %w", err)}
	}

	if errRaw, ok := envelope["error_response"]; ok {
		var errResp errorResponse
		if err := json.Unmarshal(errRaw, &errResp); err != nil {
			return CallResult{Kind: KindTransportFailure, Err: fmt.Errorf("malformed upstream error: %w", err)}
		}
		return classifyError(errResp)
	}

	// Successful calls come back wrapped as "<method with dots as
	// underscores>_response".
	wrapperKey := strings.ReplaceAll(method, ".", "_") + "_response"
	wrapped, ok := envelope[wrapperKey]
	if !ok {
		return CallResult{Kind: KindTransportFailure, Err: fmt.Errorf("upstream response missing %q", wrapperKey)}
	}

	var inner struct {
		RespResult respResult `json:"resp_result"`
	}
	if err := json.Unmarshal(wrapped, &inner); err != nil {
		return CallResult{Kind: KindTransportFailure, Err: fmt.Errorf("malformed upstream result: %w", err)}
	}

	if inner.RespResult.RespCode != 200 {
		code := fmt.Sprintf("%d", inner.RespResult.RespCode)
		if isAuthRespCode(inner.RespResult.RespCode) {
			return CallResult{Kind: KindAuthFailure, Code: code, Message: inner.RespResult.RespMsg}
		}
		return CallResult{
			Kind:        KindBusinessError,
			Code:        code,
			Message:     inner.RespResult.RespMsg,
			RateLimited: isRateLimitMessage(inner.RespResult.RespMsg),
		}
	}

	return CallResult{Kind: KindOK, Payload: inner.RespResult.Result}
}

func classifyError(errResp errorResponse) CallResult {
	code := errResp.SubCode
	if code == "" {
		code = errResp.Code.String()
	}
	message := errResp.SubMsg
	if message == "" {
		message = errResp.Msg
	}

	switch {
	case isAuthSubCode(errResp.SubCode) || isAuthTopCode(errResp.Code.String()):
		return CallResult{Kind: KindAuthFailure, Code: code, Message: message}
	case isRateLimitSubCode(errResp.SubCode) || errResp.Code.String() == "7":
		return CallResult{Kind: KindBusinessError, Code: code, Message: message, RateLimited: true}
	default:
		return CallResult{Kind: KindBusinessError, Code: code, Message: message}
	}
}

// Upstream auth failure codes, per the published gateway error tables.
func isAuthSubCode(subCode string) bool {
	switch subCode {
	case "IncompleteSignature", "InvalidSignature", "InvalidAppKey",
		"isv.appkey-not-exists", "isv.invalid-signature":
		return true
	}
	return false
}

func isAuthTopCode(code string) bool {
	switch code {
	case "25", "26", "27":
		return true
	}
	return false
}

func isRateLimitSubCode(subCode string) bool {
	if subCode == "ApiCallLimit" {
		return true
	}
	lower := strings.ToLower(subCode)
	return strings.Contains(lower, "flow") && strings.Contains(lower, "limit")
}

func isAuthRespCode(respCode int) bool {
	// Inner resp codes reused by the affiliate methods for credential
	// problems.
	return respCode == 401 || respCode == 403
}

func isRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "limit") && (strings.Contains(lower, "call") || strings.Contains(lower, "flow"))
}
