package crypto

import (
	"filippo.io/edwards25519"

	"github.com/expiredhotdog/camonano/types"
)

// Key wraps a private scalar able to sign ledger hashes. The scalar is owned
// exclusively: zeroing the key zeroes it.
type Key struct {
	private *Scalar
	public  *edwards25519.Point
}

// KeyFromScalar takes ownership of the scalar.
func KeyFromScalar(private *Scalar) *Key {
	return &Key{
		private: private,
		public:  private.BaseMult(),
	}
}

func (k *Key) Public() *edwards25519.Point {
	return k.public
}

func (k *Key) PublicBytes() (buf [32]byte) {
	copy(buf[:], k.public.Bytes())
	return
}

// Scalar exposes the private scalar, for derivations that blind it further.
func (k *Key) Scalar() *Scalar {
	return k.private
}

// Sign produces an ed25519 signature over blake2b-512, the ledger's signature
// scheme. The nonce is derived deterministically from the private scalar and
// the message.
func (k *Key) Sign(message []byte) (sig types.Signature) {
	nonceHash := Blake2b512(k.private.Bytes(), message)
	nonceSecret := NewSecretBytes(nonceHash[:])
	defer nonceSecret.Zero()
	nonce := NewScalarWide(nonceSecret)
	defer nonce.Zero()

	R := nonce.BaseMult()

	challenge := hramScalar(R, k.public, message)
	defer challenge.Zero()

	s := challenge.Multiply(k.private).Add(nonce)
	defer s.Zero()

	copy(sig[:32], R.Bytes())
	copy(sig[32:], s.Bytes())
	return
}

// Zero wipes the private scalar.
func (k *Key) Zero() {
	k.private.Zero()
}

// VerifySignature checks an ed25519-blake2b signature against a public point.
func VerifySignature(public *edwards25519.Point, message []byte, sig types.Signature) bool {
	R, err := (&edwards25519.Point{}).SetBytes(sig[:32])
	if err != nil {
		return false
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(sig[32:])
	if err != nil {
		return false
	}

	challenge := hramScalar(R, public, message)
	negChallenge := edwards25519.NewScalar().Negate(challenge.s)

	// R' = s·G - challenge·A
	check := (&edwards25519.Point{}).VarTimeDoubleScalarBaseMult(negChallenge, public, s)
	return check.Equal(R) == 1
}

func hramScalar(R, public *edwards25519.Point, message []byte) *Scalar {
	sum := Blake2b512(R.Bytes(), public.Bytes(), message)
	secret := NewSecretBytes(sum[:])
	defer secret.Zero()
	return NewScalarWide(secret)
}
