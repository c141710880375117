package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client manages node connections for the chains in a registry. The local
// wallet provider uses it to price, sign and broadcast tip transactions.
type Client struct {
	chains  Registry
	clients map[string]*ethclient.Client
	mu      sync.RWMutex
}

// NewClientWithRegistry creates a client over the given chains.
func NewClientWithRegistry(chains Registry) *Client {
	return &Client{
		chains:  chains,
		clients: make(map[string]*ethclient.Client),
	}
}

// Lookup resolves a wallet chain id against the client's registry.
func (c *Client) Lookup(id ChainID) (string, *ChainConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chains.Lookup(id)
}

// getClient returns an ethclient for the given chain, creating one if needed.
// The write lock is held for the whole dial so concurrent callers never open
// duplicate connections.
func (c *Client) getClient(chainName string) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	config, ok := c.chains[chainName]
	if !ok {
		return nil, fmt.Errorf("unknown chain: %s", chainName)
	}

	if client, exists := c.clients[chainName]; exists {
		return client, nil
	}

	var lastErr error
	for _, rpcURL := range config.RPCURLs {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := ethclient.DialContext(ctx, rpcURL)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}

		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		chainID, err := client.ChainID(ctx)
		cancel()

		if err != nil {
			client.Close()
			lastErr = err
			continue
		}

		if chainID.Cmp(config.ChainID) != 0 {
			client.Close()
			lastErr = fmt.Errorf("chain ID mismatch: expected %s, got %s", config.ChainID.String(), chainID.String())
			continue
		}

		c.clients[chainName] = client
		return client, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no rpc urls configured")
	}
	return nil, fmt.Errorf("failed to connect to %s: %w", chainName, lastErr)
}

// GetNonce returns the pending nonce for an address
func (c *Client) GetNonce(ctx context.Context, chainName string, address common.Address) (uint64, error) {
	client, err := c.getClient(chainName)
	if err != nil {
		return 0, err
	}
	return client.PendingNonceAt(ctx, address)
}

// EstimateGas estimates gas for a call
func (c *Client) EstimateGas(ctx context.Context, chainName string, msg ethereum.CallMsg) (uint64, error) {
	client, err := c.getClient(chainName)
	if err != nil {
		return 0, err
	}
	return client.EstimateGas(ctx, msg)
}

// SuggestGasPrice returns the suggested gas price
func (c *Client) SuggestGasPrice(ctx context.Context, chainName string) (*big.Int, error) {
	client, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}
	return client.SuggestGasPrice(ctx)
}

// SuggestGasTipCap returns the suggested priority fee for EIP-1559 transactions
func (c *Client) SuggestGasTipCap(ctx context.Context, chainName string) (*big.Int, error) {
	client, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}
	return client.SuggestGasTipCap(ctx)
}

// SendTransaction broadcasts a signed transaction
func (c *Client) SendTransaction(ctx context.Context, chainName string, tx *types.Transaction) error {
	client, err := c.getClient(chainName)
	if err != nil {
		return err
	}
	return client.SendTransaction(ctx, tx)
}

// CallContract executes a read-only contract call
func (c *Client) CallContract(ctx context.Context, chainName string, msg ethereum.CallMsg) ([]byte, error) {
	client, err := c.getClient(chainName)
	if err != nil {
		return nil, err
	}
	return client.CallContract(ctx, msg, nil)
}

// Close closes all client connections
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[string]*ethclient.Client)
}
