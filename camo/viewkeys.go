package camo

import (
	"filippo.io/edwards25519"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/crypto"
)

// ViewKeysBlobSize is the serialized view keypair length:
// version(1) ‖ compressed spend point(32) ‖ view scalar(32).
const ViewKeysBlobSize = 1 + 32 + 32

// ViewKeys can recognize payments to a camo account and re-derive the public
// one-time accounts, but cannot sign a spend: it holds the spend point and
// the view scalar only.
type ViewKeys struct {
	versions        Versions
	spendPub        edwards25519.Point
	compressedSpend [32]byte
	privateView     *crypto.Scalar
}

func viewKeysFromParts(versions Versions, spendPub *edwards25519.Point, privateView *crypto.Scalar) *ViewKeys {
	v := &ViewKeys{
		versions:    versions,
		privateView: privateView,
	}
	v.spendPub.Set(spendPub)
	copy(v.compressedSpend[:], spendPub.Bytes())
	return v
}

// ViewKeysFromSeed instantiates a watch-only keypair from the view-domain
// sub-seed and the public master spend point alone, reproducing exactly what
// Keys.ToViewKeys yields for the same index: the partial spend scalar is
// re-derived and added to the master spend point.
func ViewKeysFromSeed(viewSeed *crypto.SecretBytes, masterSpendPub *edwards25519.Point, index uint32, versions Versions) (*ViewKeys, error) {
	if !versions.SupportsAny() {
		return nil, ErrUnrecognizedVersion
	}

	partialSpend, privateView := partialKeys(viewSeed, index)
	defer partialSpend.Zero()

	spendPub := (&edwards25519.Point{}).Add(masterSpendPub, partialSpend.BaseMult())
	return viewKeysFromParts(versions, spendPub, privateView), nil
}

func (v *ViewKeys) Versions() Versions {
	return v.versions
}

func (v *ViewKeys) SpendPub() *edwards25519.Point {
	return &v.spendPub
}

// ToAccount rebuilds the public camo account.
func (v *ViewKeys) ToAccount() *Account {
	return accountFromPoints(v.versions, &v.spendPub, v.privateView.BaseMult())
}

// NotificationAccount is the native account scanned for notifications.
func (v *ViewKeys) NotificationAccount() *address.Account {
	return address.FromPoint(&v.spendPub)
}

// ReceiverECDH agrees on the shared secret from the view scalar and the
// sender's public point.
func (v *ViewKeys) ReceiverECDH(sender *address.Account) *crypto.SecretBytes {
	return ECDH(v.privateView, sender.Point())
}

// DeriveAccountFromSecret re-derives the public one-time account for a
// payment: spend_pub + derive_scalar(secret, i)·G.
func (v *ViewKeys) DeriveAccountFromSecret(secret *crypto.SecretBytes, index uint32) *address.Account {
	blind := crypto.AccountScalar(secret, index)
	defer blind.Zero()
	sum := (&edwards25519.Point{}).Add(&v.spendPub, blind.BaseMult())
	return address.FromPoint(sum)
}

// DeriveAccount recognizes a payment from the sender's account and index.
func (v *ViewKeys) DeriveAccount(sender *address.Account, index uint32) *address.Account {
	secret := v.ReceiverECDH(sender)
	defer secret.Zero()
	return v.DeriveAccountFromSecret(secret, index)
}

// DeriveAccountFromBlock recognizes the one-time account announced by the
// given block.
func (v *ViewKeys) DeriveAccountFromBlock(b *block.Block) *address.Account {
	return v.DeriveAccount(b.Account, StandardIndex(b))
}

// Bytes serializes the view keypair into a 65-byte secret blob. Round-trips
// byte for byte through ViewKeysFromBytes.
func (v *ViewKeys) Bytes() *crypto.SecretBytes {
	buf := make([]byte, 0, ViewKeysBlobSize)
	buf = append(buf, v.versions.Encode())
	buf = append(buf, v.compressedSpend[:]...)
	buf = append(buf, v.privateView.Bytes()...)
	return crypto.NewSecretBytes(buf)
}

// ViewKeysFromBytes deserializes a 65-byte view keypair blob, rejecting
// invalid point encodings and non-canonical scalars.
func ViewKeysFromBytes(blob *crypto.SecretBytes) (*ViewKeys, error) {
	if blob.Size() != ViewKeysBlobSize {
		return nil, ErrInvalidBlobLength
	}
	buf := blob.Bytes()

	versions, err := DecodeVersions(buf[0])
	if err != nil {
		return nil, err
	}
	spendPub, err := crypto.PointFromBytes(buf[1:33])
	if err != nil {
		return nil, err
	}
	privateView, err := crypto.NewScalarCanonical(buf[33:])
	if err != nil {
		return nil, err
	}

	return viewKeysFromParts(versions, spendPub, privateView), nil
}

// Zero wipes the view scalar.
func (v *ViewKeys) Zero() {
	v.privateView.Zero()
}
