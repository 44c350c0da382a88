package camo

import (
	"encoding/binary"

	"github.com/floatdrop/lru"

	"github.com/expiredhotdog/camonano/nano/address"
)

type derivedAccountKey [32 + 4]byte

// DerivationCache memoizes the public one-time accounts a view keypair
// derives while scanning, keyed by sender point and payment index. Only
// public material is cached, so eviction needs no zeroing; the scalar
// multiplications it skips dominate scan cost.
type DerivationCache struct {
	derivedAccounts *lru.LRU[derivedAccountKey, *address.Account]
}

func NewDerivationCache() *DerivationCache {
	d := &DerivationCache{}
	d.Clear()
	return d
}

func (d *DerivationCache) Clear() {
	// a scan revisits the same (sender, index) pair once per receivable plus
	// once per confirmation replay
	d.derivedAccounts = lru.New[derivedAccountKey, *address.Account](4096)
}

// DerivedAccount re-derives (or recalls) the one-time account for a payment
// from the given sender at the given index.
func (d *DerivationCache) DerivedAccount(keys *ViewKeys, sender *address.Account, index uint32) *address.Account {
	var key derivedAccountKey
	copy(key[:32], sender.Bytes())
	binary.BigEndian.PutUint32(key[32:], index)

	if derived := d.derivedAccounts.Get(key); derived == nil {
		account := keys.DeriveAccount(sender, index)
		d.derivedAccounts.Set(key, account)
		return account
	} else {
		return *derived
	}
}
