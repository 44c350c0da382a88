package camo

import (
	"bytes"
	"strings"

	"filippo.io/edwards25519"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/crypto"
	"github.com/expiredhotdog/camonano/utils"
)

const (
	// AddressPrefix tags every camo account string.
	AddressPrefix = "camo_"
	// AddressLength is the fixed camo account string length.
	AddressLength = 117

	payloadSize = 1 + 32 + 32                       // version ‖ spend point ‖ view point
	encodedSize = payloadSize + crypto.ChecksumSize // plus reversed checksum
)

// Account is a published camo account: the durable public identity payments
// are addressed to. Immutable; the string form and the two points are always
// mutually consistent.
type Account struct {
	account         string
	versions        Versions
	spendPub        edwards25519.Point
	viewPub         edwards25519.Point
	compressedSpend [32]byte
	compressedView  [32]byte
}

func accountFromPoints(versions Versions, spend, view *edwards25519.Point) *Account {
	a := &Account{
		versions: versions,
	}
	a.spendPub.Set(spend)
	a.viewPub.Set(view)
	copy(a.compressedSpend[:], spend.Bytes())
	copy(a.compressedView[:], view.Bytes())

	data := make([]byte, 0, encodedSize)
	data = append(data, versions.Encode())
	data = append(data, a.compressedSpend[:]...)
	data = append(data, a.compressedView[:]...)
	checksum := reversedChecksum(data)
	data = append(data, checksum[:]...)

	a.account = AddressPrefix + address.EncodeBase32(data, 0)
	return a
}

// AccountFromString decodes and re-validates a camo account string.
// Validation order: length, version byte, checksum, point encodings.
func AccountFromString(account string) (*Account, error) {
	if len(account) != AddressLength || !strings.HasPrefix(account, AddressPrefix) {
		return nil, ErrInvalidAddressLength
	}

	data, err := address.DecodeBase32(account[len(AddressPrefix):], 0, encodedSize)
	if err != nil {
		return nil, err
	}

	versions, err := DecodeVersions(data[0])
	if err != nil {
		return nil, err
	}

	checksum := reversedChecksum(data[:payloadSize])
	if !bytes.Equal(checksum[:], data[payloadSize:]) {
		return nil, ErrInvalidAddressChecksum
	}

	spend, err := crypto.PointFromBytes(data[1:33])
	if err != nil {
		return nil, err
	}
	view, err := crypto.PointFromBytes(data[33:65])
	if err != nil {
		return nil, err
	}

	a := &Account{
		account:  account,
		versions: versions,
	}
	a.spendPub.Set(spend)
	a.viewPub.Set(view)
	copy(a.compressedSpend[:], data[1:33])
	copy(a.compressedView[:], data[33:65])
	return a, nil
}

func reversedChecksum(data []byte) (checksum [crypto.ChecksumSize]byte) {
	checksum = crypto.AddressChecksum(data)
	for i, j := 0, len(checksum)-1; i < j; i, j = i+1, j-1 {
		checksum[i], checksum[j] = checksum[j], checksum[i]
	}
	return
}

func (a *Account) String() string {
	return a.account
}

func (a *Account) Versions() Versions {
	return a.versions
}

func (a *Account) SpendPub() *edwards25519.Point {
	return &a.spendPub
}

func (a *Account) ViewPub() *edwards25519.Point {
	return &a.viewPub
}

func (a *Account) Equals(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.account == b.account
}

// NotificationAccount is the native single-point encoding of the spend point:
// the account that receives notification transactions for this camo account.
func (a *Account) NotificationAccount() *address.Account {
	return address.FromPoint(&a.spendPub)
}

// SenderECDH agrees on the shared secret from the sender's key and this
// account's view point.
func (a *Account) SenderECDH(senderKey *crypto.Key) *crypto.SecretBytes {
	return ECDH(senderKey.Scalar(), &a.viewPub)
}

// DeriveAccountFromSecret blinds the spend point with the per-payment scalar:
// spend + derive_scalar(secret, i)·G. Only the owner of the matching camo
// keys can spend from the result.
func (a *Account) DeriveAccountFromSecret(secret *crypto.SecretBytes, index uint32) *address.Account {
	blind := crypto.AccountScalar(secret, index)
	defer blind.Zero()
	sum := (&edwards25519.Point{}).Add(&a.spendPub, blind.BaseMult())
	return address.FromPoint(sum)
}

// DeriveAccount is the sender side of a payment: ECDH with senderKey, then
// per-payment blinding at the given index.
func (a *Account) DeriveAccount(senderKey *crypto.Key, index uint32) *address.Account {
	secret := a.SenderECDH(senderKey)
	defer secret.Zero()
	return a.DeriveAccountFromSecret(secret, index)
}

// DeriveAccountFromBlock derives the one-time account bound to a specific
// ledger block, using the block's standard index.
func (a *Account) DeriveAccountFromBlock(b *block.Block, senderKey *crypto.Key) *address.Account {
	return a.DeriveAccount(senderKey, StandardIndex(b))
}

// SendPreparations derives everything a sender needs for a payment at the
// given index: the one-time destination and the notification to publish.
func (a *Account) SendPreparations(senderKey *crypto.Key, index uint32) (*address.Account, NotificationV1) {
	destination := a.DeriveAccount(senderKey, index)
	payload := address.FromPoint(senderKey.Public())
	return destination, NewNotificationV1(a.NotificationAccount(), payload)
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return utils.MarshalJSON(a.String())
}

func (a *Account) UnmarshalJSON(b []byte) error {
	var s string
	if err := utils.UnmarshalJSON(b, &s); err != nil {
		return err
	}

	decoded, err := AccountFromString(s)
	if err != nil {
		return err
	}
	*a = *decoded
	return nil
}
