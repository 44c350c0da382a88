package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

const HashSize = 32

// Hash is a 32-byte ledger value: block hashes, previous/link fields, public seeds.
type Hash [HashSize]byte

var ZeroHash Hash

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func HashFromString(s string) (Hash, error) {
	var h Hash
	if buf, err := hex.DecodeString(s); err != nil {
		return h, err
	} else {
		if len(buf) != HashSize {
			return h, errors.New("wrong hash size")
		}
		copy(h[:], buf)
		return h, nil
	}
}

func MustHashFromString(s string) Hash {
	if h, err := HashFromString(s); err != nil {
		panic(err)
	} else {
		return h
	}
}

func HashFromBytes(buf []byte) (h Hash) {
	if len(buf) != HashSize {
		return
	}
	copy(h[:], buf)
	return
}

func (h Hash) Equals(o Hash) bool {
	return bytes.Compare(h[:], o[:]) == 0
}

// String renders the node's wire form, uppercase hex.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if buf, err := hex.DecodeString(s); err != nil {
		return err
	} else {
		if len(buf) != HashSize {
			return errors.New("wrong hash size")
		}

		copy(h[:], buf)
		return nil
	}
}

const WorkSize = 8

// Work is a ledger work proof nonce, as generated by a node.
type Work [WorkSize]byte

func WorkFromString(s string) (Work, error) {
	var w Work
	if buf, err := hex.DecodeString(s); err != nil {
		return w, err
	} else {
		if len(buf) != WorkSize {
			return w, errors.New("wrong work size")
		}
		copy(w[:], buf)
		return w, nil
	}
}

// String renders the nonce the way nodes emit it, lowercase hex.
func (w Work) String() string {
	return hex.EncodeToString(w[:])
}

func (w Work) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Work) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	v, err := WorkFromString(s)
	if err != nil {
		return err
	}
	*w = v
	return nil
}

const SignatureSize = 64

// Signature is a raw 64-byte ed25519-blake2b signature.
type Signature [SignatureSize]byte

func SignatureFromString(s string) (Signature, error) {
	var sig Signature
	if buf, err := hex.DecodeString(s); err != nil {
		return sig, err
	} else {
		if len(buf) != SignatureSize {
			return sig, errors.New("wrong signature size")
		}
		copy(sig[:], buf)
		return sig, nil
	}
}

func (s Signature) String() string {
	return strings.ToUpper(hex.EncodeToString(s[:]))
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Signature) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	v, err := SignatureFromString(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
