package address

import "errors"

// The ledger's native base32 alphabet. Skips 0, 2, l, v to avoid lookalike
// characters.
const alphabet = "13456789abcdefghijkmnopqrstuwxyz"

var ErrInvalidAddressEncoding = errors.New("invalid address encoding")

var alphabetRev [256]byte

func init() {
	for i := range alphabetRev {
		alphabetRev[i] = 0xff
	}
	for i := 0; i < len(alphabet); i++ {
		alphabetRev[alphabet[i]] = byte(i)
	}
}

// EncodeBase32 encodes data MSB-first with pad leading zero bits, so that
// (pad + len(data)*8) is a multiple of 5. Native accounts use pad = 4, the
// camo payload uses pad = 0.
func EncodeBase32(data []byte, pad int) string {
	out := make([]byte, 0, (pad+len(data)*8)/5)
	acc := uint32(0)
	bits := pad
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(acc>>bits)&31])
		}
	}
	return string(out)
}

// DecodeBase32 reverses EncodeBase32 into size bytes, rejecting characters
// outside the alphabet and non-zero pad bits.
func DecodeBase32(s string, pad int, size int) ([]byte, error) {
	if len(s)*5 != pad+size*8 {
		return nil, ErrInvalidAddressEncoding
	}

	out := make([]byte, 0, size)
	acc := uint32(0)
	bits := 0
	for i := 0; i < len(s); i++ {
		v := alphabetRev[s[i]]
		if v == 0xff {
			return nil, ErrInvalidAddressEncoding
		}
		if i == 0 && pad > 0 && v>>(5-pad) != 0 {
			return nil, ErrInvalidAddressEncoding
		}
		acc = acc<<5 | uint32(v)
		bits += 5
		if i == 0 {
			bits -= pad
			acc &= 1<<bits - 1
		}
		for bits >= 8 {
			bits -= 8
			out = append(out, byte(acc>>bits))
		}
	}
	return out, nil
}
