package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider forwards requests to an external wallet over JSON-RPC
// (HTTP, WebSocket or IPC, whatever the URL scheme selects).
type RPCProvider struct {
	client *rpc.Client
}

// DialRPC connects to a wallet endpoint.
func DialRPC(ctx context.Context, url string) (*RPCProvider, error) {
	if url == "" {
		return nil, ErrNoProvider
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrNoProvider, url, err)
	}
	return NewRPCProvider(client), nil
}

// NewRPCProvider wraps an existing client.
func NewRPCProvider(client *rpc.Client) *RPCProvider {
	return &RPCProvider{client: client}
}

// Request issues one JSON-RPC call. Errors carrying a JSON-RPC code are
// returned as *ProviderError.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, toProviderError(err)
	}
	return raw, nil
}

// Close releases the connection.
func (p *RPCProvider) Close() {
	p.client.Close()
}

func toProviderError(err error) error {
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		return err
	}

	pe := &ProviderError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		pe.Data = dataErr.ErrorData()
	}
	return pe
}
