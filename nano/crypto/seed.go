package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// NewRandomSeed generates a fresh 32-byte master seed.
func NewRandomSeed() (*SecretBytes, error) {
	buf := make([]byte, SeedSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSecretBytes(buf), nil
}

// SeedToMnemonic encodes a 32-byte master seed as a 24-word BIP-39 mnemonic.
// The seed bytes are the mnemonic entropy, so the mapping round-trips exactly.
func SeedToMnemonic(seed *SecretBytes) (string, error) {
	if seed.Size() != SeedSize {
		return "", fmt.Errorf("mnemonic needs a %d-byte seed, got %d", SeedSize, seed.Size())
	}
	entropy := seed.Clone()
	defer entropy.Zero()
	return bip39.NewMnemonic(entropy.Bytes())
}

// SeedFromMnemonic recovers the master seed from a 24-word mnemonic.
func SeedFromMnemonic(mnemonic string) (*SecretBytes, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	if len(entropy) != SeedSize {
		return nil, ErrInvalidMnemonic
	}
	return NewSecretBytes(entropy), nil
}
