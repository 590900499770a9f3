package payment

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fastorder/server/internal/model"
	"github.com/fastorder/server/internal/utils/random"
	"golang.org/x/crypto/blake2b"
)

const (
	codePrefix      = "PAG"
	codeTimeLayout  = "20060102150405"
	codeNonceLength = 8
	codeMACSize     = 16
	codeSeparator   = "."
)

// DecodedCode is the content bound into a payment code.
type DecodedCode struct {
	Method    model.PaymentMethod
	OrderCode int64
	IssuedAt  time.Time
	Nonce     string
}

// Codec encodes and decodes self-contained payment codes.
//
// The payload has the form PAG-<method>-<orderCode>-<yyyyMMddHHmmss>-<nonce>
// and is followed by a keyed BLAKE2b tag, both base64url encoded, so codes
// cannot be forged or re-targeted at another order without the secret.
type Codec struct {
	key []byte
	now func() time.Time
}

// NewCodec creates a codec keyed by secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("payment code secret is required")
	}
	key := blake2b.Sum256([]byte(secret))
	return &Codec{key: key[:], now: time.Now}, nil
}

// Encode produces a code for the order and method.
func (c *Codec) Encode(method model.PaymentMethod, orderCode int64) (string, error) {
	nonce, err := random.String(codeNonceLength, random.CharsetAlphanumeric)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	payload := strings.Join([]string{
		codePrefix,
		method.String(),
		strconv.FormatInt(orderCode, 10),
		c.now().UTC().Format(codeTimeLayout),
		nonce,
	}, "-")

	tag, err := c.sign([]byte(payload))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString([]byte(payload)) +
		codeSeparator +
		base64.RawURLEncoding.EncodeToString(tag), nil
}

// Decode verifies and parses a code produced by Encode.
func (c *Codec) Decode(code string) (*DecodedCode, error) {
	encPayload, encTag, ok := strings.Cut(code, codeSeparator)
	if !ok || encPayload == "" || encTag == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedCode)
	}
	payload, err := base64.RawURLEncoding.DecodeString(encPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}
	tag, err := base64.RawURLEncoding.DecodeString(encTag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCode, err)
	}

	expected, err := c.sign(payload)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(tag, expected) != 1 {
		return nil, fmt.Errorf("%w: signature mismatch", ErrMalformedCode)
	}

	parts := strings.Split(string(payload), "-")
	if len(parts) != 5 || parts[0] != codePrefix {
		return nil, fmt.Errorf("%w: unexpected layout", ErrMalformedCode)
	}
	method := model.PaymentMethod(parts[1])
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: unknown method %q", ErrMalformedCode, parts[1])
	}
	orderCode, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || orderCode <= 0 {
		return nil, fmt.Errorf("%w: bad order code", ErrMalformedCode)
	}
	issuedAt, err := time.Parse(codeTimeLayout, parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp", ErrMalformedCode)
	}

	return &DecodedCode{
		Method:    method,
		OrderCode: orderCode,
		IssuedAt:  issuedAt,
		Nonce:     parts[4],
	}, nil
}

func (c *Codec) sign(payload []byte) ([]byte, error) {
	h, err := blake2b.New(codeMACSize, c.key)
	if err != nil {
		return nil, fmt.Errorf("init mac: %w", err)
	}
	h.Write(payload)
	return h.Sum(nil), nil
}
