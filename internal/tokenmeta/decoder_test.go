package tokenmeta

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMetadataAccount synthesizes a raw metadata account: a 65-byte header
// followed by the two length-prefixed string fields.
func buildMetadataAccount(name, symbol string) []byte {
	raw := make([]byte, headerSize)

	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(name)))
	raw = append(raw, name...)
	raw = binary.LittleEndian.AppendUint32(raw, uint32(len(symbol)))
	raw = append(raw, symbol...)

	return raw
}

func TestDecodeMetadata(t *testing.T) {
	t.Run("decodes name and symbol", func(t *testing.T) {
		raw := buildMetadataAccount("Wrapped SOL", "wSOL")

		name, symbol, err := DecodeMetadata(raw)

		require.NoError(t, err)
		assert.Equal(t, "Wrapped SOL", name)
		assert.Equal(t, "wSOL", symbol)
	})

	t.Run("strips NUL padding and whitespace", func(t *testing.T) {
		raw := buildMetadataAccount("USD Coin\x00\x00\x00\x00", " USDC \x00\x00")

		name, symbol, err := DecodeMetadata(raw)

		require.NoError(t, err)
		assert.Equal(t, "USD Coin", name)
		assert.Equal(t, "USDC", symbol)
	})

	t.Run("ignores trailing account bytes", func(t *testing.T) {
		raw := append(buildMetadataAccount("Token", "TKN"), make([]byte, 128)...)

		name, symbol, err := DecodeMetadata(raw)

		require.NoError(t, err)
		assert.Equal(t, "Token", name)
		assert.Equal(t, "TKN", symbol)
	})

	t.Run("fails when shorter than the header", func(t *testing.T) {
		_, _, err := DecodeMetadata(make([]byte, headerSize-1))

		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("fails when the name is truncated", func(t *testing.T) {
		raw := buildMetadataAccount("Full Name", "SYM")
		// Cut into the name bytes, after its declared length.
		raw = raw[:headerSize+lengthPrefixSize+3]

		_, _, err := DecodeMetadata(raw)

		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("fails when the symbol length prefix is missing", func(t *testing.T) {
		raw := make([]byte, headerSize)
		raw = binary.LittleEndian.AppendUint32(raw, 4)
		raw = append(raw, "name"...)

		_, _, err := DecodeMetadata(raw)

		assert.ErrorIs(t, err, ErrMalformedMetadata)
	})

	t.Run("decodes empty fields", func(t *testing.T) {
		raw := buildMetadataAccount("", "")

		name, symbol, err := DecodeMetadata(raw)

		require.NoError(t, err)
		assert.Empty(t, name)
		assert.Empty(t, symbol)
	})
}
