package block

import (
	"encoding/binary"
	"errors"
	"math/big"

	"lukechampine.com/uint128"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/crypto"
	"github.com/expiredhotdog/camonano/types"
	"github.com/expiredhotdog/camonano/utils"
)

// BlockType is the state block subtype.
type BlockType string

const (
	Send    BlockType = "send"
	Receive BlockType = "receive"
	Change  BlockType = "change"
	Open    BlockType = "open"
	Epoch   BlockType = "epoch"
)

func BlockTypeFromString(s string) (BlockType, bool) {
	switch t := BlockType(s); t {
	case Send, Receive, Change, Open, Epoch:
		return t, true
	default:
		return "", false
	}
}

// statePreamble is the 32-byte constant hashed ahead of state block fields.
var statePreamble = [32]byte{31: 0x06}

// Block is a state block on an account's chain. Balance is the account's
// balance after this block, in raw units.
type Block struct {
	Type           BlockType
	Account        *address.Account
	Previous       types.Hash
	Representative *address.Account
	Balance        uint128.Uint128
	Link           types.Hash
	Signature      types.Signature
	Work           types.Work
}

// Hash computes the state block hash:
// blake2b-256(preamble ‖ account ‖ previous ‖ representative ‖ balance(16, BE) ‖ link).
func (b *Block) Hash() types.Hash {
	var balance [16]byte
	binary.BigEndian.PutUint64(balance[:8], b.Balance.Hi)
	binary.BigEndian.PutUint64(balance[8:], b.Balance.Lo)

	return crypto.Blake2b256(
		statePreamble[:],
		b.Account.Bytes(),
		b.Previous[:],
		b.Representative.Bytes(),
		balance[:],
		b.Link[:],
	)
}

// Sign fills in the block signature. The key must control the block's account.
func (b *Block) Sign(key *crypto.Key) error {
	if key.PublicBytes() != b.Account.PublicKeyBytes() {
		return errors.New("key does not control the block account")
	}
	hash := b.Hash()
	b.Signature = key.Sign(hash[:])
	return nil
}

// HasValidSignature checks the signature against the block's own account.
func (b *Block) HasValidSignature() bool {
	hash := b.Hash()
	return crypto.VerifySignature(b.Account.Point(), hash[:], b.Signature)
}

type jsonBlock struct {
	Type           string           `json:"type"`
	Subtype        string           `json:"subtype,omitempty"`
	Account        *address.Account `json:"account"`
	Previous       types.Hash       `json:"previous"`
	Representative *address.Account `json:"representative"`
	Balance        string           `json:"balance"`
	Link           types.Hash       `json:"link"`
	Signature      types.Signature  `json:"signature"`
	Work           types.Work       `json:"work"`
}

// BalanceFromString parses a decimal raw-unit balance.
func BalanceFromString(s string) (uint128.Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return uint128.Zero, errors.New("invalid balance")
	}
	return uint128.FromBig(v), nil
}

func (b *Block) MarshalJSON() ([]byte, error) {
	return utils.MarshalJSON(jsonBlock{
		Type:           "state",
		Subtype:        string(b.Type),
		Account:        b.Account,
		Previous:       b.Previous,
		Representative: b.Representative,
		Balance:        b.Balance.String(),
		Link:           b.Link,
		Signature:      b.Signature,
		Work:           b.Work,
	})
}

func (b *Block) UnmarshalJSON(buf []byte) error {
	var j jsonBlock
	if err := utils.UnmarshalJSON(buf, &j); err != nil {
		return err
	}

	if j.Type != "state" {
		return errors.New("not a state block")
	}
	blockType, ok := BlockTypeFromString(j.Subtype)
	if !ok {
		return errors.New("unknown block subtype")
	}
	balance, err := BalanceFromString(j.Balance)
	if err != nil {
		return err
	}

	b.Type = blockType
	b.Account = j.Account
	b.Previous = j.Previous
	b.Representative = j.Representative
	b.Balance = balance
	b.Link = j.Link
	b.Signature = j.Signature
	b.Work = j.Work
	return nil
}
