package signer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affgate/affgate/pkg/constants"
	"github.com/affgate/affgate/pkg/errors"
)

var testCreds = Credentials{
	AppKey:     "501234",
	AppSecret:  "test-secret",
	TrackingID: "default",
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func TestSign_Deterministic(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	params := map[string]string{"keywords": "usb hub", "page_size": "20"}

	first, err := s.Sign("aliexpress.affiliate.product.query", params)
	require.NoError(t, err)
	second, err := s.Sign("aliexpress.affiliate.product.query", params)
	require.NoError(t, err)

	assert.Equal(t, first.Signature, second.Signature)
	assert.Equal(t, first.Params, second.Params)
}

func TestSign_SystemParameters(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	signed, err := s.Sign("aliexpress.affiliate.category.get", nil)
	require.NoError(t, err)

	assert.Equal(t, "501234", signed.Params[constants.ParamAppKey])
	assert.Equal(t, "aliexpress.affiliate.category.get", signed.Params[constants.ParamMethod])
	assert.Equal(t, "1700000000000", signed.Params[constants.ParamTimestamp])
	assert.Equal(t, "sha256", signed.Params[constants.ParamSignMethod])
	assert.Equal(t, signed.Signature, signed.Params[constants.ParamSign])
	// Uppercase hex, 32 bytes for HMAC-SHA256.
	assert.Regexp(t, "^[0-9A-F]{64}$", signed.Signature)
}

func TestSign_SensitiveToInputs(t *testing.T) {
	base := map[string]string{"keywords": "usb hub"}

	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))
	baseline, err := s.Sign("aliexpress.affiliate.product.query", base)
	require.NoError(t, err)

	t.Run("parameter value change", func(t *testing.T) {
		signed, err := s.Sign("aliexpress.affiliate.product.query", map[string]string{"keywords": "usb hubs"})
		require.NoError(t, err)
		assert.NotEqual(t, baseline.Signature, signed.Signature)
	})

	t.Run("method change", func(t *testing.T) {
		signed, err := s.Sign("aliexpress.affiliate.hotproduct.query", base)
		require.NoError(t, err)
		assert.NotEqual(t, baseline.Signature, signed.Signature)
	})

	t.Run("secret change", func(t *testing.T) {
		other := New(Credentials{AppKey: testCreds.AppKey, AppSecret: "other-secret"},
			constants.SignMethodSHA256, WithClock(fixedClock))
		signed, err := other.Sign("aliexpress.affiliate.product.query", base)
		require.NoError(t, err)
		assert.NotEqual(t, baseline.Signature, signed.Signature)
	})

	t.Run("timestamp change", func(t *testing.T) {
		later := New(testCreds, constants.SignMethodSHA256, WithClock(func() time.Time {
			return time.UnixMilli(1700000000001)
		}))
		signed, err := later.Sign("aliexpress.affiliate.product.query", base)
		require.NoError(t, err)
		assert.NotEqual(t, baseline.Signature, signed.Signature)
	})
}

func TestSign_MD5AndSHA256Differ(t *testing.T) {
	params := map[string]string{"keywords": "usb hub"}

	md5Signer := New(testCreds, constants.SignMethodMD5, WithClock(fixedClock))
	shaSigner := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	md5Signed, err := md5Signer.Sign("aliexpress.affiliate.product.query", params)
	require.NoError(t, err)
	shaSigned, err := shaSigner.Sign("aliexpress.affiliate.product.query", params)
	require.NoError(t, err)

	assert.Regexp(t, "^[0-9A-F]{32}$", md5Signed.Signature)
	assert.Regexp(t, "^[0-9A-F]{64}$", shaSigned.Signature)
}

func TestSign_RejectsReservedParameters(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256)

	for _, reserved := range constants.ReservedParams {
		_, err := s.Sign("aliexpress.affiliate.product.query", map[string]string{reserved: "x"})
		require.Error(t, err, reserved)
		assert.True(t, errors.IsCode(err, errors.CodeValidation), reserved)
	}
}

func TestSign_MissingCredentials(t *testing.T) {
	cases := []Credentials{
		{},
		{AppKey: "501234"},
		{AppSecret: "test-secret"},
	}
	for _, creds := range cases {
		s := New(creds, constants.SignMethodSHA256)
		_, err := s.Sign("aliexpress.affiliate.product.query", nil)
		assert.True(t, errors.IsCode(err, errors.CodeMissingCredential))
	}
}

func TestSign_DoesNotMutateInput(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	params := map[string]string{"keywords": "usb hub"}
	_, err := s.Sign("aliexpress.affiliate.product.query", params)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"keywords": "usb hub"}, params)
}

func TestSignedRequest_Query(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	signed, err := s.Sign("aliexpress.affiliate.product.query", map[string]string{"keywords": "usb hub & cable"})
	require.NoError(t, err)

	encoded := signed.Query().Encode()
	assert.Contains(t, encoded, "keywords=usb+hub+%26+cable")
	assert.Contains(t, encoded, "sign="+signed.Signature)
}

func TestSign_EmptyValuesExcludedFromBase(t *testing.T) {
	s := New(testCreds, constants.SignMethodSHA256, WithClock(fixedClock))

	with, err := s.Sign("aliexpress.affiliate.product.query", map[string]string{"keywords": "hub", "sort": ""})
	require.NoError(t, err)
	without, err := s.Sign("aliexpress.affiliate.product.query", map[string]string{"keywords": "hub"})
	require.NoError(t, err)

	assert.Equal(t, without.Signature, with.Signature)
}
