// Package camo implements the Camo stealth-address protocol: one durable
// published account, a distinct unlinkable one-time account per incoming
// payment, and an on-ledger notification side-channel that lets the recipient
// discover payments with view-only key material.
package camo

import (
	"encoding/binary"

	"filippo.io/edwards25519"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/crypto"
)

// Shared error taxonomy; all are terminal validation failures on supplied
// encodings, never on internally derived material.
var (
	ErrInvalidAddressLength   = address.ErrInvalidAddressLength
	ErrInvalidAddressChecksum = address.ErrInvalidAddressChecksum
	ErrInvalidCurvePoint      = crypto.ErrInvalidCurvePoint
	ErrInvalidCurveScalar     = crypto.ErrInvalidCurveScalar
)

// ECDH computes the 32-byte shared secret compress(scalar · point). Both
// parties reach the same bytes from their private scalar and the peer's
// public point.
func ECDH(private *crypto.Scalar, public *edwards25519.Point) *crypto.SecretBytes {
	return crypto.NewSecretBytes(private.MultiplyPoint(public).Bytes())
}

// partialKeys derives the per-index (partial spend, view) scalar pair from
// the view-domain sub-seed: blake2b-512 over the per-index account seed,
// split in half, each half reduced to a scalar. Distinct indices yield
// distinct pairs with overwhelming probability.
func partialKeys(viewSeed *crypto.SecretBytes, index uint32) (partialSpend, view *crypto.Scalar) {
	accountSeed := crypto.AccountSeed(viewSeed, index)
	defer accountSeed.Zero()

	wide := crypto.Blake2b512(accountSeed.Bytes())
	spendHalf := crypto.NewSecretBytes(wide[:32])
	defer spendHalf.Zero()
	viewHalf := crypto.NewSecretBytes(wide[32:])
	defer viewHalf.Zero()

	return crypto.NewScalarFromSecret(spendHalf), crypto.NewScalarFromSecret(viewHalf)
}

// StandardIndex maps a ledger block to the payment index bound into the
// per-payment blinding factor: the low 4 bytes of the block's previous-block
// hash, big endian. Sender and recipient compute it from the same block, so
// the index never has to be transmitted. Protocol constant; changing it
// breaks payment agreement with deployed wallets.
func StandardIndex(b *block.Block) uint32 {
	return binary.BigEndian.Uint32(b.Previous[28:])
}
