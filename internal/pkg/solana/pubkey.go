// Package solana provides the small set of Solana primitives the rest of the
// application depends on: the 32-byte public key type with its base58 codec,
// and deterministic program-derived-address computation.
package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeySize is the length in bytes of a Solana public key.
const PubkeySize = 32

var (
	// ErrInvalidPubkey indicates that a string could not be parsed into a
	// 32-byte public key.
	ErrInvalidPubkey = errors.New("invalid public key")

	// ErrNoValidBump indicates that no off-curve address could be derived for
	// the given seeds within the 256 available bump values. In practice this is
	// unreachable for well-formed inputs.
	ErrNoValidBump = errors.New("unable to find a viable program derived address bump")
)

// Pubkey is a Solana public key: 32 raw bytes, rendered as base58 text.
type Pubkey [PubkeySize]byte

// PubkeyFromBase58 parses and validates a base58-encoded public key.
func PubkeyFromBase58(s string) (Pubkey, error) {
	var pk Pubkey

	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %s", ErrInvalidPubkey, err)
	}
	if len(decoded) != PubkeySize {
		return pk, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPubkey, PubkeySize, len(decoded))
	}

	copy(pk[:], decoded)
	return pk, nil
}

// String returns the base58 representation of the public key.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns the raw 32-byte key.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// isOnCurve reports whether the key decompresses to a valid ed25519 curve
// point. Program derived addresses must NOT be on the curve, so that no
// private key can exist for them.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// createProgramAddress hashes the seeds, bump and program id per the Solana
// runtime definition and returns the resulting address, or an error if the
// candidate lands on the ed25519 curve.
func createProgramAddress(seeds [][]byte, bump byte, programID Pubkey) (Pubkey, error) {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte("ProgramDerivedAddress"))

	digest := h.Sum(nil)
	if isOnCurve(digest) {
		return Pubkey{}, errors.New("derived address falls on the ed25519 curve")
	}

	var pk Pubkey
	copy(pk[:], digest)
	return pk, nil
}

// FindProgramAddress derives the canonical program derived address for the
// given seeds and program id. It walks the bump seed down from 255 until the
// hash lands off the ed25519 curve. The derivation is pure: identical inputs
// always produce the identical address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, byte, error) {
	for bump := uint8(255); ; bump-- {
		pk, err := createProgramAddress(seeds, bump, programID)
		if err == nil {
			return pk, bump, nil
		}

		if bump == 0 {
			return Pubkey{}, 0, ErrNoValidBump
		}
	}
}
