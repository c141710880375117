package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// EIP-1193 / EIP-5792 methods a tip needs.
const (
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodSendCalls       = "wallet_sendCalls"
)

// SendCallsVersion is the wallet_sendCalls schema version strict wallets expect.
const SendCallsVersion = "2.0.0"

// Provider error codes from EIP-1193 and EIP-5792.
const (
	CodeUserRejected         = 4001
	CodeUnauthorized         = 4100
	CodeUnsupportedMethod    = 4200
	CodeUnrecognizedChain    = 4902
	CodeUnsupportedChainID   = 5710
	CodeAtomicityUnsupported = 5760
)

var (
	ErrNoProvider = errors.New("no wallet provider configured")
	ErrNoAccount  = errors.New("no wallet account selected")
)

// Provider is an EIP-1193 request channel to a wallet.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	Close()
}

// ProviderError is a JSON-RPC error returned by the wallet.
type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wallet error %d", e.Code)
	}
	return e.Message
}

// ErrorCode satisfies go-ethereum's rpc.Error so in-process wallets keep
// their codes over JSON-RPC.
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// Call is one instruction in a wallet_sendCalls bundle.
type Call struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data"`
}

// Capabilities are the out-of-band extensions of a bundle.
type Capabilities struct {
	DataSuffix string `json:"dataSuffix,omitempty"`
}

// SendCallsRequest is the single parameter of wallet_sendCalls.
type SendCallsRequest struct {
	Version        string       `json:"version"`
	From           string       `json:"from"`
	ChainID        string       `json:"chainId"`
	AtomicRequired bool         `json:"atomicRequired"`
	Calls          []Call       `json:"calls"`
	Capabilities   Capabilities `json:"capabilities"`
}

// SendCallsResult identifies a submitted bundle.
type SendCallsResult struct {
	ID           string         `json:"id"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
}

// UnmarshalJSON accepts both the object form and the bare id string older
// wallets return.
func (r *SendCallsResult) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain SendCallsResult
	return json.Unmarshal(data, (*plain)(r))
}

// RequestAccount asks the wallet for its accounts and returns the first one.
// Accounts are never cached: the user may switch between tips.
func RequestAccount(ctx context.Context, p Provider) (string, error) {
	raw, err := p.Request(ctx, MethodRequestAccounts)
	if err != nil {
		return "", err
	}

	var accounts []string
	if err := decode(raw, &accounts); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return "", ErrNoAccount
		}
		return "", fmt.Errorf("decode accounts: %w", err)
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return "", ErrNoAccount
	}
	return accounts[0], nil
}

// SendCalls submits a bundle and returns the wallet's bundle id.
func SendCalls(ctx context.Context, p Provider, req SendCallsRequest) (*SendCallsResult, error) {
	raw, err := p.Request(ctx, MethodSendCalls, req)
	if err != nil {
		return nil, err
	}

	var res SendCallsResult
	if err := decode(raw, &res); err != nil {
		return nil, fmt.Errorf("decode sendCalls result: %w", err)
	}
	return &res, nil
}

func decode(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return io.ErrUnexpectedEOF
	}
	return json.Unmarshal(raw, v)
}
