package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// balanceOf(address)
var balanceOfSelector = common.Hex2Bytes("70a08231")

// BalanceOfData builds the call data for an ERC-20 balanceOf query.
func BalanceOfData(holder common.Address) []byte {
	callData := make([]byte, 36)
	copy(callData[:4], balanceOfSelector)
	copy(callData[4:], common.LeftPadBytes(holder.Bytes(), 32))
	return callData
}

// TokenBalance returns holder's balance of an ERC-20 token in base units.
func (c *Client) TokenBalance(ctx context.Context, chainName string, token, holder common.Address) (*big.Int, error) {
	result, err := c.CallContract(ctx, chainName, ethereum.CallMsg{
		To:   &token,
		Data: BalanceOfData(holder),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("token %s returned no balance", token.Hex())
	}
	return new(big.Int).SetBytes(result), nil
}
