package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/floatdrop/lru"
	"github.com/goccy/go-json"
	"lukechampine.com/uint128"

	"github.com/expiredhotdog/camonano/nano/address"
	"github.com/expiredhotdog/camonano/nano/block"
	"github.com/expiredhotdog/camonano/types"
	"github.com/expiredhotdog/camonano/utils"
)

var client atomic.Pointer[Client]

var lock sync.Mutex

var endpoint = "http://localhost:7076"

func SetClientSettings(addr string) {
	if addr == "" {
		return
	}
	lock.Lock()
	defer lock.Unlock()
	endpoint = addr
	client.Store(nil)
}

func GetClient() *Client {
	if c := client.Load(); c == nil {
		lock.Lock()
		defer lock.Unlock()
		if c = client.Load(); c == nil {
			//fallback for lock racing
			if c, err := NewClient(endpoint); err != nil {
				utils.Errorf("RPC: %s", err)
				panic(err)
			} else {
				client.Store(c)
				return c
			}
		}
		return c
	} else {
		return c
	}
}

// NodeError is an error reported by the node itself, not the transport.
type NodeError struct {
	Message string
}

func (e *NodeError) Error() string {
	return "node error: " + e.Message
}

func (e *NodeError) NotFound() bool {
	return e.Message == "Account not found" || e.Message == "Block not found"
}

// Client talks to a node's HTTP RPC. All calls are synchronous, throttled and
// context-bound; block lookups are cached.
type Client struct {
	endpoint   string
	httpClient *http.Client

	blockInfoCache *lru.LRU[types.Hash, *BlockInfo]

	throttler <-chan time.Time
}

func NewClient(addr string) (*Client, error) {
	if _, err := url.Parse(addr); err != nil {
		return nil, err
	}
	return &Client{
		endpoint: addr,
		httpClient: &http.Client{
			Timeout: time.Second * 30,
		},
		blockInfoCache: lru.New[types.Hash, *BlockInfo](1024),
		throttler:      time.Tick(time.Second / 4),
	}, nil
}

func (c *Client) do(ctx context.Context, request map[string]any, response any) error {
	body, err := utils.MarshalJSON(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<24))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err = utils.UnmarshalJSON(data, &envelope); err != nil {
		return err
	}
	if envelope.Error != "" {
		return &NodeError{Message: envelope.Error}
	}

	return utils.UnmarshalJSON(data, response)
}

// AccountBalance returns the confirmed and receivable balances, in raw units.
func (c *Client) AccountBalance(ctx context.Context, account *address.Account) (balance, receivable uint128.Uint128, err error) {
	<-c.throttler
	var resp struct {
		Balance    string `json:"balance"`
		Receivable string `json:"receivable"`
	}
	if err = c.do(ctx, map[string]any{
		"action":  "account_balance",
		"account": account.String(),
	}, &resp); err != nil {
		return
	}

	if balance, err = block.BalanceFromString(resp.Balance); err != nil {
		return
	}
	receivable, err = block.BalanceFromString(resp.Receivable)
	return
}

type historyEntry struct {
	Type           string           `json:"type"`
	Subtype        string           `json:"subtype"`
	Account        *address.Account `json:"account"`
	Previous       types.Hash       `json:"previous"`
	Representative *address.Account `json:"representative"`
	Balance        string           `json:"balance"`
	Link           types.Hash       `json:"link"`
	Signature      types.Signature  `json:"signature"`
	Work           types.Work       `json:"work"`
}

func (e *historyEntry) toBlock() (*block.Block, error) {
	blockType, ok := block.BlockTypeFromString(e.Subtype)
	if !ok {
		return nil, fmt.Errorf("unknown block subtype %q", e.Subtype)
	}
	balance, err := block.BalanceFromString(e.Balance)
	if err != nil {
		return nil, err
	}
	return &block.Block{
		Type:           blockType,
		Account:        e.Account,
		Previous:       e.Previous,
		Representative: e.Representative,
		Balance:        balance,
		Link:           e.Link,
		Signature:      e.Signature,
		Work:           e.Work,
	}, nil
}

// AccountHistory lists an account's blocks newest first, starting at head
// (the frontier if zero), at most count entries. Stops at the first legacy
// block.
func (c *Client) AccountHistory(ctx context.Context, account *address.Account, count int, head types.Hash) ([]*block.Block, error) {
	<-c.throttler
	request := map[string]any{
		"action":  "account_history",
		"account": account.String(),
		"count":   strconv.Itoa(count),
		"raw":     "true",
	}
	if head != types.ZeroHash {
		request["head"] = head.String()
	}

	var resp struct {
		History []historyEntry `json:"history"`
	}
	if err := c.do(ctx, request, &resp); err != nil {
		if nodeErr, ok := err.(*NodeError); ok && nodeErr.NotFound() {
			return nil, nil
		}
		return nil, err
	}

	blocks := make([]*block.Block, 0, len(resp.History))
	for i := range resp.History {
		if resp.History[i].Type != "state" {
			break
		}
		b, err := resp.History[i].toBlock()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// AccountInfo is the general state of an open account.
type AccountInfo struct {
	Frontier       types.Hash
	OpenBlock      types.Hash
	Balance        uint128.Uint128
	Timestamp      uint64
	BlockCount     uint64
	Version        uint64
	Representative *address.Account
	Weight         uint128.Uint128
	Receivable     uint128.Uint128
}

// AccountInfo returns nil for accounts that have not been opened.
func (c *Client) AccountInfo(ctx context.Context, account *address.Account) (*AccountInfo, error) {
	<-c.throttler
	var resp struct {
		Frontier       types.Hash       `json:"frontier"`
		OpenBlock      types.Hash       `json:"open_block"`
		Balance        string           `json:"balance"`
		Timestamp      string           `json:"modified_timestamp"`
		BlockCount     string           `json:"block_count"`
		Version        string           `json:"account_version"`
		Representative *address.Account `json:"representative"`
		Weight         string           `json:"weight"`
		Receivable     string           `json:"receivable"`
	}
	if err := c.do(ctx, map[string]any{
		"action":         "account_info",
		"account":        account.String(),
		"representative": "true",
		"weight":         "true",
		"receivable":     "true",
	}, &resp); err != nil {
		if nodeErr, ok := err.(*NodeError); ok && nodeErr.NotFound() {
			return nil, nil
		}
		return nil, err
	}

	info := &AccountInfo{
		Frontier:       resp.Frontier,
		OpenBlock:      resp.OpenBlock,
		Representative: resp.Representative,
	}
	var err error
	if info.Balance, err = block.BalanceFromString(resp.Balance); err != nil {
		return nil, err
	}
	if info.Timestamp, err = strconv.ParseUint(resp.Timestamp, 10, 64); err != nil {
		return nil, err
	}
	if info.BlockCount, err = strconv.ParseUint(resp.BlockCount, 10, 64); err != nil {
		return nil, err
	}
	if info.Version, err = strconv.ParseUint(resp.Version, 10, 64); err != nil {
		return nil, err
	}
	if info.Weight, err = block.BalanceFromString(resp.Weight); err != nil {
		return nil, err
	}
	if info.Receivable, err = block.BalanceFromString(resp.Receivable); err != nil {
		return nil, err
	}
	return info, nil
}

// AccountsFrontiers returns the frontier hash per open account, keyed by
// account string. Unopened accounts are absent.
func (c *Client) AccountsFrontiers(ctx context.Context, accounts []*address.Account) (map[string]types.Hash, error) {
	<-c.throttler
	var resp struct {
		Frontiers json.RawMessage `json:"frontiers"`
	}
	if err := c.do(ctx, map[string]any{
		"action":   "accounts_frontiers",
		"accounts": accountStrings(accounts),
	}, &resp); err != nil {
		return nil, err
	}

	frontiers := make(map[string]types.Hash)
	// the node answers "" instead of {} when every account is unopened
	if len(resp.Frontiers) > 0 && resp.Frontiers[0] == '{' {
		if err := utils.UnmarshalJSON(resp.Frontiers, &frontiers); err != nil {
			return nil, err
		}
	}
	return frontiers, nil
}

// Receivable is a pending incoming transaction.
type Receivable struct {
	Recipient *address.Account
	BlockHash types.Hash
	Amount    uint128.Uint128
	Source    *address.Account
}

// AccountsReceivable lists pending transactions per account, at most count
// per account, ignoring amounts below threshold.
func (c *Client) AccountsReceivable(ctx context.Context, accounts []*address.Account, count int, threshold uint128.Uint128) (map[string][]Receivable, error) {
	<-c.throttler
	var resp struct {
		Blocks json.RawMessage `json:"blocks"`
	}
	if err := c.do(ctx, map[string]any{
		"action":    "accounts_receivable",
		"accounts":  accountStrings(accounts),
		"count":     strconv.Itoa(count),
		"threshold": threshold.String(),
		"source":    "true",
	}, &resp); err != nil {
		return nil, err
	}

	result := make(map[string][]Receivable)
	if len(resp.Blocks) == 0 || resp.Blocks[0] != '{' {
		return result, nil
	}

	var perAccount map[string]json.RawMessage
	if err := utils.UnmarshalJSON(resp.Blocks, &perAccount); err != nil {
		return nil, err
	}
	for accountStr, raw := range perAccount {
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		recipient, err := address.FromString(accountStr)
		if err != nil {
			return nil, err
		}
		var entries map[string]struct {
			Amount string           `json:"amount"`
			Source *address.Account `json:"source"`
		}
		if err = utils.UnmarshalJSON(raw, &entries); err != nil {
			return nil, err
		}
		for hashStr, entry := range entries {
			hash, err := types.HashFromString(hashStr)
			if err != nil {
				return nil, err
			}
			amount, err := block.BalanceFromString(entry.Amount)
			if err != nil {
				return nil, err
			}
			result[accountStr] = append(result[accountStr], Receivable{
				Recipient: recipient,
				BlockHash: hash,
				Amount:    amount,
				Source:    entry.Source,
			})
		}
	}
	return result, nil
}

// BlockInfo is an on-ledger block plus its chain position and confirmation
// status.
type BlockInfo struct {
	Height    uint64
	Timestamp uint64
	Confirmed bool
	Block     *block.Block
}

// BlockInfo returns nil for legacy blocks and blocks that don't exist.
func (c *Client) BlockInfo(ctx context.Context, hash types.Hash) (*BlockInfo, error) {
	if cached := c.blockInfoCache.Get(hash); cached != nil {
		return *cached, nil
	}

	<-c.throttler
	var resp struct {
		Height    string `json:"height"`
		Timestamp string `json:"local_timestamp"`
		Confirmed string `json:"confirmed"`
		Subtype   string `json:"subtype"`
		Contents  struct {
			historyEntry
		} `json:"contents"`
	}
	if err := c.do(ctx, map[string]any{
		"action":     "block_info",
		"json_block": "true",
		"hash":       hash.String(),
	}, &resp); err != nil {
		if nodeErr, ok := err.(*NodeError); ok && nodeErr.NotFound() {
			return nil, nil
		}
		return nil, err
	}

	if resp.Contents.Type != "state" {
		return nil, nil
	}
	resp.Contents.Subtype = resp.Subtype
	b, err := resp.Contents.toBlock()
	if err != nil {
		return nil, err
	}

	info := &BlockInfo{
		Confirmed: resp.Confirmed == "true",
		Block:     b,
	}
	if info.Height, err = strconv.ParseUint(resp.Height, 10, 64); err != nil {
		return nil, err
	}
	if info.Timestamp, err = strconv.ParseUint(resp.Timestamp, 10, 64); err != nil {
		return nil, err
	}

	if info.Confirmed {
		c.blockInfoCache.Set(hash, info)
	}
	return info, nil
}

// Process submits a signed block to the network and returns its hash.
func (c *Client) Process(ctx context.Context, b *block.Block) (types.Hash, error) {
	<-c.throttler
	var resp struct {
		Hash types.Hash `json:"hash"`
	}
	if err := c.do(ctx, map[string]any{
		"action":     "process",
		"json_block": "true",
		"subtype":    string(b.Type),
		"block":      b,
	}, &resp); err != nil {
		return types.ZeroHash, err
	}

	if expected := b.Hash(); !resp.Hash.Equals(expected) {
		return types.ZeroHash, fmt.Errorf("expected %s, got %s", expected, resp.Hash)
	}
	return resp.Hash, nil
}

// WorkGenerate asks the node to generate a work proof for the given root.
// Difficulty is optional.
func (c *Client) WorkGenerate(ctx context.Context, root types.Hash, difficulty string) (types.Work, error) {
	<-c.throttler
	request := map[string]any{
		"action": "work_generate",
		"hash":   root.String(),
	}
	if difficulty != "" {
		request["difficulty"] = difficulty
	}

	var resp struct {
		Work types.Work `json:"work"`
	}
	if err := c.do(ctx, request, &resp); err != nil {
		return types.Work{}, err
	}
	return resp.Work, nil
}

func accountStrings(accounts []*address.Account) []string {
	result := make([]string, len(accounts))
	for i, a := range accounts {
		result[i] = a.String()
	}
	return result
}
