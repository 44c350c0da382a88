package camo

import (
	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/crypto"
)

// Keys is the complete private material for one camo account: the spend and
// view scalars. It owns both exclusively; Zero wipes them.
type Keys struct {
	versions     Versions
	privateSpend *crypto.Scalar
	privateView  *crypto.Scalar
}

// KeysFromSeed derives the full keypair for an account slot. Deterministic:
// the same (masterSeed, index, versions) always reproduces the identical
// keypair, which is what makes wallet recovery possible.
//
// The spend scalar is the sum of an index-independent master spend scalar
// (spend-domain sub-seed, slot 0) and a per-index partial spend scalar from
// the view-domain sub-seed, so view-only wallets can reproduce the public
// half without the master spend scalar.
func KeysFromSeed(masterSeed *crypto.SecretBytes, index uint32, versions Versions) (*Keys, error) {
	if !versions.SupportsAny() {
		return nil, ErrUnrecognizedVersion
	}

	spendSeed := crypto.CamoSpendSeed(masterSeed)
	defer spendSeed.Zero()
	masterSpend := crypto.AccountScalar(spendSeed, 0)
	defer masterSpend.Zero()

	viewSeed := crypto.CamoViewSeed(masterSeed)
	defer viewSeed.Zero()
	partialSpend, privateView := partialKeys(viewSeed, index)
	defer partialSpend.Zero()

	return &Keys{
		versions:     versions,
		privateSpend: masterSpend.Add(partialSpend),
		privateView:  privateView,
	}, nil
}

func (k *Keys) Versions() Versions {
	return k.versions
}

// ToViewKeys publishes the spend point and keeps the view scalar, discarding
// spend capability.
func (k *Keys) ToViewKeys() *ViewKeys {
	return viewKeysFromParts(k.versions, k.privateSpend.BaseMult(), k.privateView.Clone())
}

// ToAccount builds the public camo account.
func (k *Keys) ToAccount() *Account {
	return accountFromPoints(k.versions, k.privateSpend.BaseMult(), k.privateView.BaseMult())
}

// NotificationKey is the signing key for the account that receives
// notifications (the spend point's native account).
func (k *Keys) NotificationKey() *crypto.Key {
	return crypto.KeyFromScalar(k.privateSpend.Clone())
}

// ReceiverECDH agrees on the shared secret from the view scalar and the
// sender's public point.
func (k *Keys) ReceiverECDH(sender *address.Account) *crypto.SecretBytes {
	return ECDH(k.privateView, sender.Point())
}

// DeriveKeyFromSecret produces the one-time spend key for a payment:
// private_spend + derive_scalar(secret, i). Its public key matches the
// account the sender derived at the same index.
func (k *Keys) DeriveKeyFromSecret(secret *crypto.SecretBytes, index uint32) *crypto.Key {
	blind := crypto.AccountScalar(secret, index)
	defer blind.Zero()
	return crypto.KeyFromScalar(k.privateSpend.Add(blind))
}

// DeriveKey is the recipient side of a payment: ECDH with the sender's
// account, then per-payment blinding at the given index.
func (k *Keys) DeriveKey(sender *address.Account, index uint32) *crypto.Key {
	secret := k.ReceiverECDH(sender)
	defer secret.Zero()
	return k.DeriveKeyFromSecret(secret, index)
}

// DeriveKeyFromBlock re-derives the one-time spend key for a payment
// announced by the given block.
func (k *Keys) DeriveKeyFromBlock(b *block.Block) *crypto.Key {
	return k.DeriveKey(b.Account, StandardIndex(b))
}

// Zero wipes both private scalars.
func (k *Keys) Zero() {
	k.privateSpend.Zero()
	k.privateView.Zero()
}
