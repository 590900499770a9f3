package payment

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec("test-secret")
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		codec, err := NewCodec("")
		assert.Error(t, err)
		assert.Nil(t, codec)
	})

	t.Run("accepts long secret", func(t *testing.T) {
		codec, err := NewCodec(strings.Repeat("k", 200))
		require.NoError(t, err)
		assert.NotNil(t, codec)
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	fixed := time.Date(2026, 10, 16, 12, 30, 45, 0, time.UTC)
	codec.now = func() time.Time { return fixed }

	for _, method := range []model.PaymentMethod{model.PaymentMethodPix, model.PaymentMethodCreditCard} {
		for _, orderCode := range []int64{1, 42, 999999999} {
			code, err := codec.Encode(method, orderCode)
			require.NoError(t, err)

			decoded, err := codec.Decode(code)
			require.NoError(t, err)
			assert.Equal(t, method, decoded.Method)
			assert.Equal(t, orderCode, decoded.OrderCode)
			assert.Equal(t, fixed, decoded.IssuedAt)
			assert.Len(t, decoded.Nonce, codeNonceLength)
		}
	}
}

func TestCodec_EncodeIsUnique(t *testing.T) {
	codec := newTestCodec(t)

	first, err := codec.Encode(model.PaymentMethodPix, 42)
	require.NoError(t, err)
	second, err := codec.Encode(model.PaymentMethodPix, 42)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCodec_Decode_Malformed(t *testing.T) {
	codec := newTestCodec(t)
	valid, err := codec.Encode(model.PaymentMethodPix, 42)
	require.NoError(t, err)
	payload, _, _ := strings.Cut(valid, codeSeparator)

	forged := base64.RawURLEncoding.EncodeToString([]byte("PAG-pix-43-20261016120000-abcdefgh"))
	other, err := NewCodec("other-secret")
	require.NoError(t, err)
	foreign, err := other.Encode(model.PaymentMethodPix, 42)
	require.NoError(t, err)

	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"plain text", "unknown-code"},
		{"missing signature", payload},
		{"bad base64", "!!!." + "!!!"},
		{"forged payload", forged + codeSeparator + strings.Split(valid, codeSeparator)[1]},
		{"other secret", foreign},
		{"legacy unsigned", base64.StdEncoding.EncodeToString([]byte("PAG-Pix-42-20261016120000"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := codec.Decode(tt.code)
			assert.ErrorIs(t, err, ErrMalformedCode)
			assert.Nil(t, decoded)
		})
	}
}

func TestCodec_Decode_RejectsBadLayoutWithValidSignature(t *testing.T) {
	codec := newTestCodec(t)

	sign := func(payload string) string {
		tag, err := codec.sign([]byte(payload))
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString([]byte(payload)) + codeSeparator +
			base64.RawURLEncoding.EncodeToString(tag)
	}

	for _, payload := range []string{
		"PAG-pix-42",
		"XXX-pix-42-20261016120000-abcdefgh",
		"PAG-boleto-42-20261016120000-abcdefgh",
		"PAG-pix-abc-20261016120000-abcdefgh",
		"PAG-pix-0-20261016120000-abcdefgh",
		"PAG-pix-42-yesterday-abcdefgh",
	} {
		t.Run(payload, func(t *testing.T) {
			_, err := codec.Decode(sign(payload))
			assert.ErrorIs(t, err, ErrMalformedCode)
		})
	}
}
