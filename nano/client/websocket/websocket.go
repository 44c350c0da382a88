// Package websocket subscribes to a node's confirmation stream, the event
// feed camo scanners watch for incoming notifications.
package websocket

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"lukechampine.com/uint128"
	"nhooyr.io/websocket"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/types"
	"github.com/expiredhotdog/camonano/utils"
)

type Client struct {
	endpoint string
	accounts []*address.Account
}

// NewClient instantiates a client that will receive the node's confirmation
// events.
//
//   - `accounts` optionally filters the subscription server-side; empty
//     subscribes to every confirmation.
//
//   - `endpoint` is the full address the node publishes websocket events on,
//     including the scheme, for instance ws://127.0.0.1:7078 for a node
//     started with websocket.enable = true.
func NewClient(endpoint string, accounts ...*address.Account) *Client {
	return &Client{
		endpoint: endpoint,
		accounts: accounts,
	}
}

// Confirmation is one confirmed block event.
type Confirmation struct {
	Account *address.Account
	Amount  uint128.Uint128
	Hash    types.Hash
	Block   *block.Block
}

type subscribeOptions struct {
	Accounts []string `json:"accounts,omitempty"`
}

type envelope struct {
	Action  string            `json:"action,omitempty"`
	Topic   string            `json:"topic,omitempty"`
	Options *subscribeOptions `json:"options,omitempty"`
	Message json.RawMessage   `json:"message,omitempty"`
}

type confirmationMessage struct {
	Account *address.Account `json:"account"`
	Amount  string           `json:"amount"`
	Hash    types.Hash       `json:"hash"`
	Block   json.RawMessage  `json:"block"`
}

// Listen subscribes to the confirmation topic and calls onConfirmation for
// every event until the context is cancelled or the connection fails.
func (c *Client) Listen(ctx context.Context, onConfirmation func(*Confirmation)) error {
	conn, _, err := websocket.Dial(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	var options *subscribeOptions
	if len(c.accounts) > 0 {
		options = &subscribeOptions{}
		for _, a := range c.accounts {
			options.Accounts = append(options.Accounts, a.String())
		}
	}
	subscribe, err := utils.MarshalJSON(envelope{
		Action:  "subscribe",
		Topic:   "confirmation",
		Options: options,
	})
	if err != nil {
		return err
	}
	if err = conn.Write(ctx, websocket.MessageText, subscribe); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var event envelope
		if err = utils.UnmarshalJSON(data, &event); err != nil {
			utils.Debugf("websocket: skipping malformed event: %s", err)
			continue
		}
		if event.Topic != "confirmation" {
			continue
		}

		var message confirmationMessage
		if err = utils.UnmarshalJSON(event.Message, &message); err != nil {
			utils.Debugf("websocket: skipping malformed confirmation: %s", err)
			continue
		}

		confirmation := &Confirmation{
			Account: message.Account,
			Hash:    message.Hash,
		}
		if confirmation.Amount, err = block.BalanceFromString(message.Amount); err != nil {
			confirmation.Amount = uint128.Zero
		}
		var b block.Block
		if err = utils.UnmarshalJSON(message.Block, &b); err == nil {
			confirmation.Block = &b
		}

		onConfirmation(confirmation)
	}
}

// ListenWithReconnect keeps Listen running, redialing with a fixed backoff
// until the context is cancelled.
func (c *Client) ListenWithReconnect(ctx context.Context, onConfirmation func(*Confirmation)) {
	for {
		if err := c.Listen(ctx, onConfirmation); err != nil {
			utils.Errorf("websocket: %s", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second * 5):
		}
	}
}
