package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ChainID is a chain identifier in the canonical 0x-prefixed hex form
// wallets exchange over EIP-1193.
type ChainID string

const (
	Mainnet        ChainID = "0x2105"  // Base, 8453
	TestnetSepolia ChainID = "0x14a34" // Base Sepolia, 84532
)

// Supported reports whether tips can be sent on the chain as is.
func (id ChainID) Supported() bool {
	return id == Mainnet || id == TestnetSepolia
}

func (id ChainID) String() string {
	return string(id)
}

// FromBig converts a numeric chain id into its hex form.
func FromBig(n *big.Int) ChainID {
	if n == nil {
		return ""
	}
	return ChainID(hexutil.EncodeBig(n))
}

// ParseChainID normalizes a wallet-reported chain id. Leading zeros and
// upper-case digits are accepted; the 0x prefix is required.
func ParseChainID(s string) (ChainID, error) {
	digits := trimHexPrefix(s)
	if digits == s || digits == "" {
		return "", fmt.Errorf("invalid chain id %q", s)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("invalid chain id %q", s)
	}
	return FromBig(n), nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
