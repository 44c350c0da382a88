package address

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"filippo.io/edwards25519"

	"github.com/expiredhotdog/camonano/nano/crypto"
)

const (
	// Prefix is the tag emitted for native account strings. Legacy "xrb_"
	// strings are accepted on decode.
	Prefix       = "nano_"
	legacyPrefix = "xrb_"

	keyChars      = 52 // 4 pad bits + 256 key bits
	checksumChars = 8  // 40 checksum bits
)

var (
	ErrInvalidAddressLength   = errors.New("invalid address length")
	ErrInvalidAddressChecksum = errors.New("invalid address checksum")
)

// Account is a native ledger address: one public curve point plus its
// checksummed string form. Immutable once constructed; the string and the
// point are always mutually consistent.
type Account struct {
	point      edwards25519.Point
	compressed [32]byte
	account    string
}

// FromPoint builds an account from a curve point.
func FromPoint(point *edwards25519.Point) *Account {
	a := &Account{}
	a.point.Set(point)
	copy(a.compressed[:], point.Bytes())
	a.account = encodeAccount(a.compressed)
	return a
}

// FromPublicKeyBytes builds an account from a compressed public key,
// rejecting encodings that are not valid curve points.
func FromPublicKeyBytes(buf []byte) (*Account, error) {
	point, err := crypto.PointFromBytes(buf)
	if err != nil {
		return nil, err
	}
	return FromPoint(point), nil
}

// FromString decodes and re-validates a native account string.
func FromString(account string) (*Account, error) {
	var body string
	switch {
	case strings.HasPrefix(account, Prefix) && len(account) == len(Prefix)+keyChars+checksumChars:
		body = account[len(Prefix):]
	case strings.HasPrefix(account, legacyPrefix) && len(account) == len(legacyPrefix)+keyChars+checksumChars:
		body = account[len(legacyPrefix):]
	default:
		return nil, ErrInvalidAddressLength
	}

	key, err := DecodeBase32(body[:keyChars], 4, 32)
	if err != nil {
		return nil, err
	}
	checksum, err := DecodeBase32(body[keyChars:], 0, crypto.ChecksumSize)
	if err != nil {
		return nil, err
	}

	expected := checksumBytes(key)
	if !bytes.Equal(checksum, expected[:]) {
		return nil, ErrInvalidAddressChecksum
	}

	return FromPublicKeyBytes(key)
}

func encodeAccount(key [32]byte) string {
	checksum := checksumBytes(key[:])
	return Prefix + EncodeBase32(key[:], 4) + EncodeBase32(checksum[:], 0)
}

func checksumBytes(key []byte) (checksum [crypto.ChecksumSize]byte) {
	checksum = crypto.AddressChecksum(key)
	for i, j := 0, len(checksum)-1; i < j; i, j = i+1, j-1 {
		checksum[i], checksum[j] = checksum[j], checksum[i]
	}
	return
}

// Point returns the account's public curve point.
func (a *Account) Point() *edwards25519.Point {
	return &a.point
}

// Bytes returns the compressed public key.
func (a *Account) Bytes() []byte {
	return a.compressed[:]
}

func (a *Account) PublicKeyBytes() [32]byte {
	return a.compressed
}

func (a *Account) String() string {
	return a.account
}

func (a *Account) Equals(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.compressed == b.compressed
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Account) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	decoded, err := FromString(s)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}
