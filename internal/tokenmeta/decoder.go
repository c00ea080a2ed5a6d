package tokenmeta

import (
	"encoding/binary"
	"errors"
	"strings"
)

// ErrMalformedMetadata indicates that an account's bytes do not follow the
// Metaplex metadata layout this decoder expects.
var ErrMalformedMetadata = errors.New("malformed token metadata account")

// headerSize is the fixed prefix of a metadata account that carries no
// information we need: a 1-byte key discriminator followed by the 32-byte
// update authority and the 32-byte mint.
const headerSize = 1 + 32 + 32

// lengthPrefixSize is the size of the u32 little-endian length that precedes
// each string field.
const lengthPrefixSize = 4

// DecodeMetadata extracts the name and symbol from a raw Metaplex metadata
// account. The layout is fixed: after the 65-byte header comes a
// length-prefixed UTF-8 name, immediately followed by a length-prefixed UTF-8
// symbol. Both strings are NUL padded on chain, so trailing NULs and
// surrounding whitespace are stripped. No other fields are interpreted.
func DecodeMetadata(raw []byte) (name, symbol string, err error) {
	name, next, err := readLengthPrefixedString(raw, headerSize)
	if err != nil {
		return "", "", err
	}

	symbol, _, err = readLengthPrefixedString(raw, next)
	if err != nil {
		return "", "", err
	}

	return name, symbol, nil
}

// readLengthPrefixedString reads a u32 little-endian length at offset followed
// by that many bytes of UTF-8 text. It returns the cleaned string and the
// offset of the byte right after the field.
func readLengthPrefixedString(raw []byte, offset int) (string, int, error) {
	if len(raw) < offset+lengthPrefixSize {
		return "", 0, ErrMalformedMetadata
	}

	length := int(binary.LittleEndian.Uint32(raw[offset : offset+lengthPrefixSize]))
	start := offset + lengthPrefixSize
	end := start + length

	if len(raw) < end {
		return "", 0, ErrMalformedMetadata
	}

	text := strings.TrimSpace(strings.TrimRight(string(raw[start:end]), "\x00"))
	return text, end, nil
}
