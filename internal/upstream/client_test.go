package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affgate/affgate/internal/signer"
	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/logger"
)

func TestClassify_Success(t *testing.T) {
	body := []byte(`{
		"aliexpress_affiliate_category_get_response": {
			"resp_result": {
				"resp_code": 200,
				"resp_msg": "success",
				"result": {"total_result_count": 1, "categories": {"category": [{"category_id": 3, "category_name": "Electronics"}]}}
			}
		}
	}`)

	result := Classify("aliexpress.affiliate.category.get", body)

	require.Equal(t, KindOK, result.Kind)
	assert.Contains(t, string(result.Payload), "Electronics")
}

func TestClassify_AuthFailure(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid signature sub code", `{"error_response":{"code":"25","msg":"Invalid signature","sub_code":"IncompleteSignature","sub_msg":"The request signature does not conform to platform standards"}}`},
		{"invalid app key", `{"error_response":{"code":"29","msg":"Invalid app Key","sub_code":"isv.appkey-not-exists","sub_msg":"appkey not exists"}}`},
		{"numeric auth code", `{"error_response":{"code":25,"msg":"Invalid signature"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Classify("aliexpress.affiliate.product.query", []byte(tc.body))
			assert.Equal(t, KindAuthFailure, result.Kind)
			assert.NotEmpty(t, result.ErrorText())
		})
	}
}

func TestClassify_RateLimited(t *testing.T) {
	body := `{"error_response":{"code":"7","msg":"App Call Limited","sub_code":"ApiCallLimit","sub_msg":"API call frequency exceeds the limit"}}`

	result := Classify("aliexpress.affiliate.product.query", []byte(body))

	assert.Equal(t, KindBusinessError, result.Kind)
	assert.True(t, result.RateLimited)
}

func TestClassify_BusinessError(t *testing.T) {
	body := `{"error_response":{"code":"15","msg":"Remote service error","sub_code":"isv.invalid-parameter","sub_msg":"category_ids is invalid"}}`

	result := Classify("aliexpress.affiliate.product.query", []byte(body))

	assert.Equal(t, KindBusinessError, result.Kind)
	assert.False(t, result.RateLimited)
	assert.Equal(t, "isv.invalid-parameter", result.Code)
}

func TestClassify_MalformedBody(t *testing.T) {
	result := Classify("aliexpress.affiliate.product.query", []byte("<html>gateway timeout</html>"))
	assert.Equal(t, KindTransportFailure, result.Kind)
	assert.Error(t, result.Err)
}

func TestClassify_MissingWrapper(t *testing.T) {
	result := Classify("aliexpress.affiliate.product.query", []byte(`{"unexpected":{}}`))
	assert.Equal(t, KindTransportFailure, result.Kind)
}

func TestClassify_InnerErrorCode(t *testing.T) {
	body := []byte(`{
		"aliexpress_affiliate_product_query_response": {
			"resp_result": {"resp_code": 405, "resp_msg": "product not available"}
		}
	}`)

	result := Classify("aliexpress.affiliate.product.query", body)
	assert.Equal(t, KindBusinessError, result.Kind)
	assert.Equal(t, "405", result.Code)
}

func newSignedRequest(t *testing.T) *signer.SignedRequest {
	t.Helper()
	s := signer.New(signer.Credentials{AppKey: "k", AppSecret: "s"}, constants.SignMethodSHA256)
	signed, err := s.Sign("aliexpress.affiliate.category.get", nil)
	require.NoError(t, err)
	return signed
}

func TestClient_Call_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "aliexpress.affiliate.category.get", r.PostForm.Get("method"))
		assert.NotEmpty(t, r.PostForm.Get("sign"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aliexpress_affiliate_category_get_response":{"resp_result":{"resp_code":200,"resp_msg":"success","result":{"total_result_count":0}}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, logger.NewNop())
	result := client.Call(context.Background(), newSignedRequest(t))

	assert.Equal(t, KindOK, result.Kind)
}

func TestClient_Call_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, time.Second, logger.NewNop())
	result := client.Call(context.Background(), newSignedRequest(t))

	assert.Equal(t, KindTransportFailure, result.Kind)
	assert.Error(t, result.Err)
}

func TestClient_Call_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 20*time.Millisecond, logger.NewNop())
	result := client.Call(context.Background(), newSignedRequest(t))

	assert.Equal(t, KindTransportFailure, result.Kind)
}
