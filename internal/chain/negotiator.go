package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	methodChainID     = "eth_chainId"
	methodSwitchChain = "wallet_switchEthereumChain"
)

// ErrUnsupportedChain is returned when the wallet is on a chain tips cannot
// be sent on and refused to switch.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Requester is the part of an EIP-1193 provider the negotiator talks to.
type Requester interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// SwitchChainParams is the single parameter of wallet_switchEthereumChain.
type SwitchChainParams struct {
	ChainID ChainID `json:"chainId"`
}

// Negotiator makes sure the wallet is on a supported chain.
type Negotiator struct {
	fallback ChainID
}

// NewNegotiator returns a negotiator that switches unsupported wallets to mainnet.
func NewNegotiator() *Negotiator {
	return &Negotiator{fallback: Mainnet}
}

// Ensure returns the wallet's active chain when it is supported. Any other
// chain triggers one switch request to mainnet; a failed switch is reported
// as ErrUnsupportedChain and never retried.
func (n *Negotiator) Ensure(ctx context.Context, p Requester) (ChainID, error) {
	raw, err := p.Request(ctx, methodChainID)
	if err != nil {
		return "", fmt.Errorf("read chain id: %w", err)
	}

	var reported string
	if err := json.Unmarshal(raw, &reported); err == nil {
		if id, err := ParseChainID(reported); err == nil && id.Supported() {
			return id, nil
		}
	}

	if _, err := p.Request(ctx, methodSwitchChain, SwitchChainParams{ChainID: n.fallback}); err != nil {
		return "", fmt.Errorf("%w (wallet on %q): %w", ErrUnsupportedChain, reported, err)
	}
	return n.fallback, nil
}
