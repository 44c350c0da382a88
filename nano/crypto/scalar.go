package crypto

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const ScalarSize = 32

var (
	ErrInvalidCurveScalar = errors.New("invalid curve scalar")
	ErrInvalidCurvePoint  = errors.New("invalid curve point")
)

// Scalar is a private key component: an integer modulo the ed25519 group
// order. Zero wipes the backing storage, and formatting never emits the value.
type Scalar struct {
	s *edwards25519.Scalar
}

// NewScalarFromSecret reduces 32 secret bytes to a scalar, clamping them the
// way ed25519 private keys are clamped. Never fails.
func NewScalarFromSecret(secret *SecretBytes) *Scalar {
	s, err := edwards25519.NewScalar().SetBytesWithClamping(secret.Bytes())
	if err != nil {
		// length is the only failure mode
		panic(fmt.Errorf("scalar from %d-byte secret: %w", secret.Size(), err))
	}
	return &Scalar{s: s}
}

// NewScalarWide reduces 64 secret bytes modulo the group order. Never fails.
func NewScalarWide(secret *SecretBytes) *Scalar {
	s, err := edwards25519.NewScalar().SetUniformBytes(secret.Bytes())
	if err != nil {
		panic(fmt.Errorf("scalar from %d-byte secret: %w", secret.Size(), err))
	}
	return &Scalar{s: s}
}

// NewScalarCanonical parses exactly 32 bytes that must already be the unique
// canonical encoding of a scalar. Rejects non-canonical encodings, which
// guards deserialized keys against malleability.
func NewScalarCanonical(buf []byte) (*Scalar, error) {
	if len(buf) != ScalarSize {
		return nil, ErrInvalidCurveScalar
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(buf)
	if err != nil {
		return nil, ErrInvalidCurveScalar
	}
	return &Scalar{s: s}, nil
}

func newScalar(s *edwards25519.Scalar) *Scalar {
	return &Scalar{s: s}
}

// Bytes returns the canonical 32-byte encoding. The result is secret material.
func (s *Scalar) Bytes() []byte {
	return s.s.Bytes()
}

func (s *Scalar) Add(b *Scalar) *Scalar {
	return newScalar(edwards25519.NewScalar().Add(s.s, b.s))
}

func (s *Scalar) Subtract(b *Scalar) *Scalar {
	return newScalar(edwards25519.NewScalar().Subtract(s.s, b.s))
}

func (s *Scalar) Negate() *Scalar {
	return newScalar(edwards25519.NewScalar().Negate(s.s))
}

func (s *Scalar) Multiply(b *Scalar) *Scalar {
	return newScalar(edwards25519.NewScalar().Multiply(s.s, b.s))
}

// MultiplyPoint computes s·p.
func (s *Scalar) MultiplyPoint(p *edwards25519.Point) *edwards25519.Point {
	return (&edwards25519.Point{}).ScalarMult(s.s, p)
}

// BaseMult computes the public point s·G.
func (s *Scalar) BaseMult() *edwards25519.Point {
	return (&edwards25519.Point{}).ScalarBaseMult(s.s)
}

func (s *Scalar) Equals(o *Scalar) bool {
	return s.s.Equal(o.s) == 1
}

func (s *Scalar) Clone() *Scalar {
	return newScalar(edwards25519.NewScalar().Set(s.s))
}

// Scalar exposes the raw scalar. This is the only path from a Scalar to
// unwrapped material; every use should be auditable.
func (s *Scalar) Scalar() *edwards25519.Scalar {
	return s.s
}

// Zero overwrites the scalar with the zero element. The value must not be
// used afterwards.
func (s *Scalar) Zero() {
	s.s.Set(edwards25519.NewScalar())
}

func (s *Scalar) String() string {
	return "[secret value]"
}

func (s *Scalar) GoString() string {
	return "[secret value]"
}

// PointFromBytes parses a compressed curve point, rejecting encodings that are
// not valid curve elements.
func PointFromBytes(buf []byte) (*edwards25519.Point, error) {
	p, err := (&edwards25519.Point{}).SetBytes(buf)
	if err != nil {
		return nil, ErrInvalidCurvePoint
	}
	return p, nil
}
