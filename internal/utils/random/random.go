package random

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Charsets used for payment nonces and acquirer references.
const (
	CharsetAlphanumeric  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	CharsetUpperAlphaNum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// reader is swapped in tests.
var reader io.Reader = rand.Reader

// String returns length characters drawn uniformly from charset using
// crypto/rand. Bytes that would bias the distribution are discarded.
func String(length int, charset string) (string, error) {
	if length <= 0 {
		return "", nil
	}
	if charset == "" {
		charset = CharsetAlphanumeric
	}
	if len(charset) > 256 {
		return "", fmt.Errorf("charset too large: %d", len(charset))
	}

	limit := 256 - 256%len(charset)
	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := io.ReadFull(reader, buf); err != nil {
			return "", fmt.Errorf("generate random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, charset[int(b)%len(charset)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
