package camo

import (
	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
)

// NotificationV1 is the out-of-band signal announcing a camo payment: a tiny
// transaction to the recipient's notification account whose representative
// field is repurposed to carry an encoded point instead of a governance vote.
//
// This layer only moves the two accounts around; interpreting the payload
// cryptographically is the caller's job via the ECDH derivations.
type NotificationV1 struct {
	// Recipient receives the dust transaction. It is publicly linked to the
	// camo account.
	Recipient *address.Account
	// RepresentativePayload must be set as the representative of the block
	// sending to Recipient. It is the payload of the notification.
	RepresentativePayload *address.Account
}

func NewNotificationV1(recipient, representativePayload *address.Account) NotificationV1 {
	return NotificationV1{
		Recipient:             recipient,
		RepresentativePayload: representativePayload,
	}
}

// NotificationV1FromBlock reads a notification back out of any ledger block:
// recipient from the block's account field, payload from its representative
// field. No validation happens here; malformed payloads simply fail the
// caller's later derivations.
func NotificationV1FromBlock(b *block.Block) NotificationV1 {
	return NotificationV1{
		Recipient:             b.Account,
		RepresentativePayload: b.Representative,
	}
}
