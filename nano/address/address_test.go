package address

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"
)

// the live network's genesis account
const (
	genesisAddress   = "nano_3t6k35gi95xu6tergt6p69ck76ogmitsa8mnijtpxm9fkcm736xtoncuohr3"
	genesisPublicKey = "E89208DD038FBB269987689621D52292AE9C35941A7484756ECCED92A65093BA"
)

func genesisKeyBytes(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString(genesisPublicKey)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestGenesisVector(t *testing.T) {
	account, err := FromPublicKeyBytes(genesisKeyBytes(t))
	if err != nil {
		t.Fatal(err)
	}
	if account.String() != genesisAddress {
		t.Fatalf("encoded %s, want %s", account, genesisAddress)
	}

	decoded, err := FromString(genesisAddress)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.Bytes(), genesisKeyBytes(t)) {
		t.Fatal("decoded public key diverges")
	}
	if !decoded.Equals(account) {
		t.Fatal("accounts built both ways compare unequal")
	}
}

func TestLegacyPrefix(t *testing.T) {
	legacy := "xrb_" + genesisAddress[len(Prefix):]
	account, err := FromString(legacy)
	if err != nil {
		t.Fatal(err)
	}
	// decoding re-canonicalizes to the current prefix
	if account.String() != genesisAddress {
		t.Fatalf("legacy address canonicalized to %s", account)
	}
}

func TestFromStringRejection(t *testing.T) {
	for _, s := range []string{
		"",
		"nano_",
		genesisAddress[:len(genesisAddress)-1],
		genesisAddress + "1",
		"bano_" + genesisAddress[len(Prefix):],
	} {
		if _, err := FromString(s); err != ErrInvalidAddressLength {
			t.Errorf("%q: expected length error, got %v", s, err)
		}
	}

	// corrupt each checksum character
	for i := len(genesisAddress) - 8; i < len(genesisAddress); i++ {
		flipped := []byte(genesisAddress)
		if flipped[i] == '1' {
			flipped[i] = '3'
		} else {
			flipped[i] = '1'
		}
		if _, err := FromString(string(flipped)); err != ErrInvalidAddressChecksum {
			t.Errorf("corrupting character %d: expected checksum error, got %v", i, err)
		}
	}

	// '0' is outside the alphabet
	invalid := []byte(genesisAddress)
	invalid[len(Prefix)+3] = '0'
	if _, err := FromString(string(invalid)); err != ErrInvalidAddressEncoding {
		t.Errorf("expected encoding error, got %v", err)
	}
}

func TestBase32RoundTrip(t *testing.T) {
	key := genesisKeyBytes(t)

	for _, pad := range []int{0, 4} {
		// pad 4 is the native account layout; pad 0 needs a multiple of
		// 5 bytes, the camo payload layout
		data := key
		if pad == 0 {
			data = append(append([]byte(nil), key...), key[:8]...)
		}

		encoded := EncodeBase32(data, pad)
		decoded, err := DecodeBase32(encoded, pad, len(data))
		if err != nil {
			t.Fatalf("pad %d: %s", pad, err)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatalf("pad %d: round-trip diverged", pad)
		}
	}
}

func TestBase32Rejection(t *testing.T) {
	if _, err := DecodeBase32("111", 0, 32); err != ErrInvalidAddressEncoding {
		t.Errorf("expected rejection of mismatched length, got %v", err)
	}
	if _, err := DecodeBase32("l"+strings.Repeat("1", 51), 4, 32); err != ErrInvalidAddressEncoding {
		t.Errorf("expected rejection of invalid character, got %v", err)
	}
	// with 4 pad bits the first character may only encode a single data bit
	if _, err := DecodeBase32("z"+strings.Repeat("1", 51), 4, 32); err != ErrInvalidAddressEncoding {
		t.Errorf("expected rejection of non-zero pad bits, got %v", err)
	}
}

func TestAccountJSON(t *testing.T) {
	account, err := FromString(genesisAddress)
	if err != nil {
		t.Fatal(err)
	}

	buf, err := account.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != `"`+genesisAddress+`"` {
		t.Fatalf("unexpected JSON %s", buf)
	}

	var decoded Account
	if err = decoded.UnmarshalJSON(buf); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equals(account) {
		t.Fatal("JSON round-trip diverged")
	}
}
