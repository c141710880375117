// Package calldata builds ERC-20 transfer payloads and ERC-8021 attribution suffixes.
package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransferLength is selector + padded address + padded amount.
const TransferLength = 4 + 32 + 32

// TransferSelector is the 4-byte id of transfer(address,uint256).
var TransferSelector = common.Hex2Bytes("a9059cbb")

var (
	ErrInvalidRecipient   = errors.New("invalid recipient address")
	ErrAmountOutOfRange   = errors.New("amount does not fit in uint256")
	ErrNotTransferPayload = errors.New("not a transfer(address,uint256) payload")
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// EncodeTransfer returns the 68-byte call data for transfer(recipient, amount).
func EncodeTransfer(recipient string, amount *big.Int) ([]byte, error) {
	if !common.IsHexAddress(recipient) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecipient, recipient)
	}
	if amount == nil || amount.Sign() < 0 || amount.Cmp(maxUint256) > 0 {
		return nil, ErrAmountOutOfRange
	}

	to := common.HexToAddress(recipient)

	data := make([]byte, 0, TransferLength)
	data = append(data, TransferSelector...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data, nil
}

// DecodeTransfer reverses EncodeTransfer. Trailing bytes past the amount
// word, such as an attribution suffix, are ignored.
func DecodeTransfer(data []byte) (common.Address, *big.Int, error) {
	if len(data) < TransferLength || !bytes.Equal(data[:4], TransferSelector) {
		return common.Address{}, nil, ErrNotTransferPayload
	}
	to := common.BytesToAddress(data[4:36])
	amount := new(big.Int).SetBytes(data[36:TransferLength])
	return to, amount, nil
}

// Hex encodes call data as a lowercase 0x-prefixed string.
func Hex(data []byte) string {
	return hexutil.Encode(data)
}
