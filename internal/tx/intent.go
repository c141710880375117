// Package tx turns a wallet call into an unsigned EIP-1559 transaction.
package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Intent captures one call the local wallet is about to sign.
type Intent struct {
	Chain    string         // registry key (e.g., "base")
	ChainID  *big.Int       // numeric chain id
	From     common.Address // signer address
	To       common.Address // contract or recipient
	ValueWei *big.Int       // native value, zero for token transfers
	Data     []byte         // calldata, attribution suffix included
	Nonce    *uint64        // optional override
	GasLimit *uint64        // optional override
}

// ErrOverLimit is returned when a transfer exceeds the policy cap.
var ErrOverLimit = errors.New("transfer exceeds limit")

// Policy enforces safety constraints before signing.
type Policy struct {
	AllowTo     []common.Address
	MaxTransfer *big.Int // token base units per transfer, nil for no cap
}

// SuggestedFees carries gas estimates so the caller can render them.
type SuggestedFees struct {
	GasLimit         uint64
	MaxFeePerGas     *big.Int
	MaxPriorityFee   *big.Int
	EstimatedCostWei *big.Int
}

// Backend is the node access BuildUnsignedTx needs.
type Backend interface {
	GetNonce(ctx context.Context, chainName string, address common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error)
	SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error)
	EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error)
}

// Validate applies the allowlist. Tips move tokens only, so any native
// value is refused.
func Validate(intent Intent, policy Policy) error {
	if intent.ValueWei == nil {
		return fmt.Errorf("value missing")
	}
	if intent.ValueWei.Sign() != 0 {
		return fmt.Errorf("native value %s not allowed", intent.ValueWei)
	}

	if len(policy.AllowTo) > 0 {
		allowed := false
		for _, a := range policy.AllowTo {
			if a == intent.To {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("destination %s not in allowlist", intent.To.Hex())
		}
	}
	return nil
}

// CheckTransfer applies the per-transfer cap to a decoded token amount.
func (p Policy) CheckTransfer(units *big.Int) error {
	if p.MaxTransfer != nil && units.Cmp(p.MaxTransfer) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrOverLimit, units, p.MaxTransfer)
	}
	return nil
}

// BuildUnsignedTx fills nonce, fees and gas limit from the node and returns
// an unsigned EIP-1559 transaction.
func BuildUnsignedTx(ctx context.Context, b Backend, intent Intent) (*types.Transaction, SuggestedFees, error) {
	if intent.ValueWei == nil {
		return nil, SuggestedFees{}, fmt.Errorf("value missing")
	}
	if intent.ChainID == nil {
		return nil, SuggestedFees{}, fmt.Errorf("chain id missing")
	}

	nonce := uint64(0)
	if intent.Nonce != nil {
		nonce = *intent.Nonce
	} else {
		n, err := b.GetNonce(ctx, intent.Chain, intent.From)
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("get nonce: %w", err)
		}
		nonce = n
	}

	tip, err := b.SuggestGasTipCap(ctx, intent.Chain)
	if err != nil {
		return nil, SuggestedFees{}, fmt.Errorf("suggest tip cap: %w", err)
	}
	price, err := b.SuggestGasPrice(ctx, intent.Chain)
	if err != nil {
		return nil, SuggestedFees{}, fmt.Errorf("suggest gas price: %w", err)
	}
	// Leave headroom for a base fee rise between estimate and inclusion.
	maxFee := new(big.Int).Add(new(big.Int).Mul(price, big.NewInt(2)), tip)

	gasLimit := uint64(0)
	if intent.GasLimit != nil {
		gasLimit = *intent.GasLimit
	} else {
		gl, err := b.EstimateGas(ctx, intent.Chain, ethereum.CallMsg{
			From:      intent.From,
			To:        &intent.To,
			GasFeeCap: maxFee,
			GasTipCap: tip,
			Value:     intent.ValueWei,
			Data:      intent.Data,
		})
		if err != nil {
			return nil, SuggestedFees{}, fmt.Errorf("estimate gas: %w", err)
		}
		gasLimit = gl
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   intent.ChainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: maxFee,
		Gas:       gasLimit,
		To:        &intent.To,
		Value:     intent.ValueWei,
		Data:      intent.Data,
	})

	total := new(big.Int).Mul(maxFee, new(big.Int).SetUint64(gasLimit))
	total.Add(total, intent.ValueWei)

	return tx, SuggestedFees{
		GasLimit:         gasLimit,
		MaxFeePerGas:     maxFee,
		MaxPriorityFee:   tip,
		EstimatedCostWei: total,
	}, nil
}
