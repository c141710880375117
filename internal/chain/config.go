package chain

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Registry keys for the two networks a tip can be sent on.
const (
	Base        = "base"
	BaseSepolia = "base-sepolia"
)

// TokenConfig describes the stablecoin tips are paid in on one chain.
type TokenConfig struct {
	Symbol   string         `yaml:"symbol"`
	Address  common.Address `yaml:"address"`
	Decimals int32          `yaml:"decimals"`
}

// ChainConfig holds configuration for an EVM chain.
// Invariant: ChainID and ChainIDInt must always represent the same value.
// ChainIDInt exists for YAML serialization (big.Int doesn't serialize cleanly).
type ChainConfig struct {
	Name        string      `yaml:"name"`
	ChainID     *big.Int    `yaml:"-"`
	ChainIDInt  int64       `yaml:"chain_id"`
	RPCURLs     []string    `yaml:"rpc_urls"`
	ExplorerURL string      `yaml:"explorer_url"`
	IsTestnet   bool        `yaml:"is_testnet"`
	Token       TokenConfig `yaml:"token"`
}

// ID returns the wallet-facing hex identifier of the chain.
func (c *ChainConfig) ID() ChainID {
	return FromBig(c.ChainID)
}

// Registry maps registry keys to chain configurations.
type Registry map[string]*ChainConfig

// DefaultChains returns the chains tips can be sent on.
func DefaultChains() Registry {
	return Registry{
		Base: {
			Name:        "Base",
			ChainID:     big.NewInt(8453),
			ChainIDInt:  8453,
			RPCURLs:     []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			ExplorerURL: "https://basescan.org",
			IsTestnet:   false,
			Token: TokenConfig{
				Symbol:   "USDC",
				Address:  common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
				Decimals: 6,
			},
		},
		BaseSepolia: {
			Name:        "Base Sepolia",
			ChainID:     big.NewInt(84532),
			ChainIDInt:  84532,
			RPCURLs:     []string{"https://sepolia.base.org"},
			ExplorerURL: "https://sepolia.basescan.org",
			IsTestnet:   true,
			Token: TokenConfig{
				Symbol:   "USDC",
				Address:  common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
				Decimals: 6,
			},
		},
	}
}

// Lookup finds the chain with the given identifier.
func (r Registry) Lookup(id ChainID) (string, *ChainConfig, error) {
	for name, cfg := range r {
		if cfg.ID() == id {
			return name, cfg, nil
		}
	}
	return "", nil, fmt.Errorf("unknown chain id: %s", id)
}

// Names returns the registry keys in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
