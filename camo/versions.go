package camo

import "errors"

var (
	ErrUnrecognizedVersion = errors.New("unrecognized protocol version")
	ErrInvalidBlobLength   = errors.New("invalid key blob length")
)

// Versions is the protocol version bit-set carried in every camo address.
// Version n occupies bit n-1 of the encoded byte. Unknown bits survive an
// encode/decode round-trip so a newer wallet's address still re-encodes
// exactly, but at least one bit must be recognized for the address to be
// usable here.
type Versions uint8

const (
	// V1 is the only derivation currently defined.
	V1 Versions = 1 << 0

	supportedVersions = V1
)

// DecodeVersions parses the version byte of an encoded address or key blob.
func DecodeVersions(b byte) (Versions, error) {
	v := Versions(b)
	if !v.SupportsAny() {
		return 0, ErrUnrecognizedVersion
	}
	return v, nil
}

func (v Versions) Encode() byte {
	return byte(v)
}

func (v Versions) Has(other Versions) bool {
	return v&other == other
}

// SupportsAny reports whether this implementation can interpret at least one
// of the set bits.
func (v Versions) SupportsAny() bool {
	return v&supportedVersions != 0
}
