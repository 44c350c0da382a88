package crypto

import (
	"encoding/binary"

	"github.com/expiredhotdog/camonano/types"
	"golang.org/x/crypto/blake2b"
)

const ChecksumSize = 5

// Domain tags for the camo sub-seed expansion. These are protocol constants:
// changing either silently breaks address and payment agreement with every
// wallet already deployed.
const (
	spendSeedDomain = "camo spend"
	viewSeedDomain  = "camo view"
)

func Blake2b256(data ...[]byte) (result types.Hash) {
	h, _ := blake2b.New256(nil)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(result[:0])
	return
}

func Blake2b512(data ...[]byte) (result [64]byte) {
	h, _ := blake2b.New512(nil)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(result[:0])
	return
}

// AddressChecksum is the 5-byte blake2b checksum appended to encoded
// addresses, before the byte-order reversal the wire format applies.
func AddressChecksum(data ...[]byte) (result [ChecksumSize]byte) {
	h, _ := blake2b.New(ChecksumSize, nil)
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(result[:0])
	return
}

// CamoSpendSeed expands the master seed into the spend-domain sub-seed.
func CamoSpendSeed(masterSeed *SecretBytes) *SecretBytes {
	sum := Blake2b256(masterSeed.Bytes(), []byte(spendSeedDomain))
	return NewSecretBytes(sum[:])
}

// CamoViewSeed expands the master seed into the view-domain sub-seed.
// Independent of CamoSpendSeed even though both trace to one master seed.
func CamoViewSeed(masterSeed *SecretBytes) *SecretBytes {
	sum := Blake2b256(masterSeed.Bytes(), []byte(viewSeedDomain))
	return NewSecretBytes(sum[:])
}

// AccountSeed derives the per-index seed: blake2b-256(seed ‖ index), index as
// 4 big-endian bytes. The full 32-bit index range is supported.
func AccountSeed(seed *SecretBytes, index uint32) *SecretBytes {
	var indexBuf [4]byte
	binary.BigEndian.PutUint32(indexBuf[:], index)
	sum := Blake2b256(seed.Bytes(), indexBuf[:])
	return NewSecretBytes(sum[:])
}

// AccountScalar derives the per-index private scalar from a seed or shared
// secret. Deterministic: the same (seed, index) always yields the same scalar.
func AccountScalar(seed *SecretBytes, index uint32) *Scalar {
	accountSeed := AccountSeed(seed, index)
	defer accountSeed.Zero()
	return NewScalarFromSecret(accountSeed)
}
