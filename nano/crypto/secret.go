package crypto

import (
	"crypto/subtle"
)

const (
	SeedSize         = 32
	SharedSecretSize = 32
)

// SecretBytes wraps raw secret key material: seeds, shared secrets, serialized
// key blobs. Constructing one zeroes the source buffer, and Zero wipes the
// backing storage. Formatting never emits the wrapped bytes.
type SecretBytes struct {
	buf []byte
}

// NewSecretBytes captures src and zeroes it in place.
func NewSecretBytes(src []byte) *SecretBytes {
	s := &SecretBytes{
		buf: make([]byte, len(src)),
	}
	copy(s.buf, src)
	wipe(src)
	return s
}

// Size returns the length of the wrapped buffer.
func (s *SecretBytes) Size() int {
	return len(s.buf)
}

// Bytes exposes the backing storage. The returned slice aliases the secret:
// callers must not copy it into a non-secret buffer.
func (s *SecretBytes) Bytes() []byte {
	return s.buf
}

// Clone makes an owned copy, for handing a secret to more than one consumer.
func (s *SecretBytes) Clone() *SecretBytes {
	c := &SecretBytes{
		buf: make([]byte, len(s.buf)),
	}
	copy(c.buf, s.buf)
	return c
}

func (s *SecretBytes) Equals(o *SecretBytes) bool {
	return subtle.ConstantTimeCompare(s.buf, o.buf) == 1
}

// Zero wipes the backing storage. The value must not be used afterwards.
func (s *SecretBytes) Zero() {
	wipe(s.buf)
}

func (s *SecretBytes) String() string {
	return "[secret value]"
}

func (s *SecretBytes) GoString() string {
	return "[secret value]"
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
