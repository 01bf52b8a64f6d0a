// Package signer builds authenticated requests for the AliExpress affiliate
// gateway. The upstream recomputes the signature over the byte-wise sorted
// parameter set, so parameter ordering and the concatenation scheme here are
// part of the wire contract, not a style choice.
package signer

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
)

// Credentials is the application key/secret pair registered with upstream,
// plus the affiliate tracking identifier. Immutable for the process lifetime.
type Credentials struct {
	AppKey     string
	AppSecret  string
	TrackingID string
}

// SignedRequest is a fully signed parameter set ready for transport encoding.
// Params must not be mutated after signing; the signature binds to the exact
// set.
type SignedRequest struct {
	Method    string
	Params    map[string]string
	Signature string
}

// Query URL-encodes the signed parameter set exactly once.
func (r *SignedRequest) Query() url.Values {
	values := make(url.Values, len(r.Params))
	for k, v := range r.Params {
		values.Set(k, v)
	}
	return values
}

// Signer computes upstream signatures. It is safe for concurrent use.
type Signer struct {
	creds      Credentials
	signMethod constants.SignMethod
	now        func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// New creates a Signer for the given credentials and signature algorithm.
func New(creds Credentials, signMethod constants.SignMethod, opts ...Option) *Signer {
	s := &Signer{
		creds:      creds,
		signMethod: signMethod,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign merges params with the system parameters, computes the signature and
// returns the transport-ready request. It is a pure function of its inputs and
// the injected clock; it never mutates params.
func (s *Signer) Sign(method string, params map[string]string) (*SignedRequest, error) {
	if method == "" {
		return nil, errors.ErrValidation.WithMessage("upstream method name is empty")
	}
	if s.creds.AppKey == "" || s.creds.AppSecret == "" {
		return nil, errors.ErrMissingCredential
	}
	for key := range params {
		for _, reserved := range constants.ReservedParams {
			if key == reserved {
				return nil, errors.ErrValidation.
					WithMessage("parameter %q collides with a reserved system parameter", key).
					WithDetail("parameter", key)
			}
		}
	}

	merged := make(map[string]string, len(params)+4)
	for k, v := range params {
		merged[k] = v
	}
	merged[constants.ParamAppKey] = s.creds.AppKey
	merged[constants.ParamMethod] = method
	merged[constants.ParamTimestamp] = strconv.FormatInt(s.now().UnixMilli(), 10)
	merged[constants.ParamSignMethod] = string(s.signMethod)

	signature := s.computeSignature(merged)
	merged[constants.ParamSign] = signature

	return &SignedRequest{
		Method:    method,
		Params:    merged,
		Signature: signature,
	}, nil
}

// computeSignature concatenates the sorted key/value pairs and digests them
// per the configured algorithm. Empty values are excluded, matching the
// upstream canonicalization rules.
func (s *Signer) computeSignature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params[k] == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	base := sb.String()

	var digest []byte
	switch s.signMethod {
	case constants.SignMethodMD5:
		sum := md5.Sum([]byte(s.creds.AppSecret + base + s.creds.AppSecret))
		digest = sum[:]
	default:
		mac := hmac.New(sha256.New, []byte(s.creds.AppSecret))
		mac.Write([]byte(base))
		digest = mac.Sum(nil)
	}

	return strings.ToUpper(hex.EncodeToString(digest))
}

// TrackingID exposes the affiliate tracking identifier for methods that
// require it as a business parameter.
func (s *Signer) TrackingID() string {
	return s.creds.TrackingID
}

// HasCredentials reports whether the signer can produce valid signatures.
func (s *Signer) HasCredentials() bool {
	return s.creds.AppKey != "" && s.creds.AppSecret != ""
}
