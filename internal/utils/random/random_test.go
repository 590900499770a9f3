package random

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Run("uses only the charset", func(t *testing.T) {
		s, err := String(64, CharsetUpperAlphaNum)
		require.NoError(t, err)
		assert.Len(t, s, 64)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(CharsetUpperAlphaNum, r), "unexpected %q", r)
		}
	})

	t.Run("zero length", func(t *testing.T) {
		s, err := String(0, CharsetAlphanumeric)
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("empty charset defaults to alphanumeric", func(t *testing.T) {
		s, err := String(16, "")
		require.NoError(t, err)
		assert.Len(t, s, 16)
	})

	t.Run("skips biased bytes", func(t *testing.T) {
		orig := reader
		t.Cleanup(func() { reader = orig })
		// 255 is past the unbiased limit for a 36 character set.
		reader = bytes.NewReader([]byte{255, 0, 255, 1})

		s, err := String(2, CharsetUpperAlphaNum)
		require.NoError(t, err)
		assert.Equal(t, "AB", s)
	})

	t.Run("reader failure", func(t *testing.T) {
		orig := reader
		t.Cleanup(func() { reader = orig })
		reader = iotest.ErrReader(errors.New("entropy exhausted"))

		_, err := String(4, CharsetAlphanumeric)
		assert.ErrorContains(t, err, "entropy exhausted")
	})
}
