package camo

import (
	"bytes"
	"context"

	"lukechampine.com/uint128"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/nano/client"
	"github.com/expiredhotdog/camonano/types"
	"github.com/expiredhotdog/camonano/utils"
)

// Payment is a detected camo payment: the notification that announced it and
// the one-time account the funds were sent to.
type Payment struct {
	Notification NotificationV1
	// OneTimeAccount is the derived stealth destination. Spending from it
	// needs the full keypair's DeriveKeyFromBlock on the same block.
	OneTimeAccount *address.Account
	Sender         *address.Account
	Index          uint32
	// BlockHash is the notification block's hash.
	BlockHash types.Hash
}

// Scanner drives view-key payment detection against a node: it watches the
// notification account and re-derives the announced one-time accounts
// without spend capability.
type Scanner struct {
	client              *client.Client
	keys                *ViewKeys
	cache               *DerivationCache
	notificationAccount *address.Account
}

func NewScanner(c *client.Client, keys *ViewKeys) *Scanner {
	return &Scanner{
		client:              c,
		keys:                keys,
		cache:               NewDerivationCache(),
		notificationAccount: keys.NotificationAccount(),
	}
}

// NotificationAccount is the native account this scanner watches.
func (s *Scanner) NotificationAccount() *address.Account {
	return s.notificationAccount
}

// DetectFromBlock inspects one confirmed block. If it is a send to the
// notification account it is treated as a notification and the announced
// one-time account is re-derived; otherwise ok is false. The block must have
// been validated upstream.
func (s *Scanner) DetectFromBlock(b *block.Block) (payment *Payment, ok bool) {
	// confirmation events may carry no parseable block at all
	if b == nil || b.Type != block.Send || b.Account == nil || b.Representative == nil {
		return nil, false
	}
	if !bytes.Equal(b.Link[:], s.notificationAccount.Bytes()) {
		return nil, false
	}

	index := StandardIndex(b)
	return &Payment{
		Notification:   NotificationV1FromBlock(b),
		OneTimeAccount: s.cache.DerivedAccount(s.keys, b.Account, index),
		Sender:         b.Account,
		Index:          index,
		BlockHash:      b.Hash(),
	}, true
}

// ScanReceivables checks the notification account's pending transactions and
// resolves each one's send block into a payment.
func (s *Scanner) ScanReceivables(ctx context.Context, count int) ([]*Payment, error) {
	receivables, err := s.client.AccountsReceivable(
		ctx, []*address.Account{s.notificationAccount}, count, uint128.From64(1))
	if err != nil {
		return nil, err
	}

	var payments []*Payment
	for _, entries := range receivables {
		for _, receivable := range entries {
			info, err := s.client.BlockInfo(ctx, receivable.BlockHash)
			if err != nil {
				return nil, err
			}
			if info == nil || !info.Confirmed {
				continue
			}
			if payment, ok := s.DetectFromBlock(info.Block); ok {
				payments = append(payments, payment)
			} else {
				utils.Debugf("scan: block %s pays the notification account but is not a notification", receivable.BlockHash)
			}
		}
	}
	return payments, nil
}

// ScanHistory walks the notification account's chain backwards from head
// (the frontier if zero) and resolves past notifications, for wallet
// recovery. The chain itself holds receive blocks; each one's link is the
// hash of the sender's notification block, which carries the payload.
func (s *Scanner) ScanHistory(ctx context.Context, count int, head types.Hash) ([]*Payment, error) {
	blocks, err := s.client.AccountHistory(ctx, s.notificationAccount, count, head)
	if err != nil {
		return nil, err
	}

	var payments []*Payment
	for _, b := range blocks {
		if b.Type != block.Receive && b.Type != block.Open {
			continue
		}
		info, err := s.client.BlockInfo(ctx, b.Link)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		if payment, ok := s.DetectFromBlock(info.Block); ok {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}
