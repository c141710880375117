package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/basetip/internal/chain"
)

type ethService struct {
	chainID  string
	accounts []string
}

func (s *ethService) ChainId() (string, error) { return s.chainID, nil }

func (s *ethService) RequestAccounts() ([]string, error) { return s.accounts, nil }

type walletService struct {
	reject   bool
	received *SendCallsRequest
}

func (s *walletService) SwitchEthereumChain(p chain.SwitchChainParams) (any, error) {
	if p.ChainID != chain.Mainnet {
		return nil, &ProviderError{Code: CodeUnrecognizedChain, Message: "unrecognized chain"}
	}
	return nil, nil
}

func (s *walletService) SendCalls(req SendCallsRequest) (*SendCallsResult, error) {
	s.received = &req
	if s.reject {
		return nil, &ProviderError{Code: CodeUserRejected, Message: "User rejected the request."}
	}
	return &SendCallsResult{ID: "0xbundle"}, nil
}

func newInProcProvider(t *testing.T, eth *ethService, w *walletService) *RPCProvider {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", eth))
	require.NoError(t, server.RegisterName("wallet", w))
	t.Cleanup(server.Stop)

	p := NewRPCProvider(rpc.DialInProc(server))
	t.Cleanup(p.Close)
	return p
}

func TestRPCProvider_Request(t *testing.T) {
	ctx := context.Background()
	eth := &ethService{chainID: "0x2105", accounts: []string{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"}}
	w := &walletService{}
	p := newInProcProvider(t, eth, w)

	t.Run("chain id", func(t *testing.T) {
		raw, err := p.Request(ctx, MethodChainID)
		require.NoError(t, err)
		var id string
		require.NoError(t, json.Unmarshal(raw, &id))
		assert.Equal(t, "0x2105", id)
	})

	t.Run("account", func(t *testing.T) {
		acc, err := RequestAccount(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, eth.accounts[0], acc)
	})

	t.Run("switch keeps provider error code", func(t *testing.T) {
		_, err := p.Request(ctx, MethodSwitchChain, chain.SwitchChainParams{ChainID: "0x1"})
		var pe *ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, CodeUnrecognizedChain, pe.Code)
	})

	t.Run("send calls", func(t *testing.T) {
		req := SendCallsRequest{
			Version:        SendCallsVersion,
			From:           eth.accounts[0],
			ChainID:        "0x2105",
			AtomicRequired: true,
			Calls:          []Call{{To: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Value: "0x0", Data: "0xa9059cbb"}},
			Capabilities:   Capabilities{DataSuffix: "0x6263"},
		}
		res, err := SendCalls(ctx, p, req)
		require.NoError(t, err)
		assert.Equal(t, "0xbundle", res.ID)
		require.NotNil(t, w.received)
		assert.Equal(t, req, *w.received)
	})

	t.Run("rejection surfaces code 4001", func(t *testing.T) {
		w.reject = true
		defer func() { w.reject = false }()

		_, err := SendCalls(ctx, p, SendCallsRequest{Version: SendCallsVersion})
		var pe *ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, CodeUserRejected, pe.Code)
		assert.Contains(t, pe.Error(), "rejected")
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := p.Request(ctx, "wallet_getCallsStatus", "0xbundle")
		require.Error(t, err)
	})
}

func TestRequestAccount_Empty(t *testing.T) {
	p := newInProcProvider(t, &ethService{chainID: "0x2105"}, &walletService{})
	_, err := RequestAccount(context.Background(), p)
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestDialRPC(t *testing.T) {
	_, err := DialRPC(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = DialRPC(context.Background(), "ftp://nowhere")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestSendCallsResult_UnmarshalJSON(t *testing.T) {
	var obj SendCallsResult
	require.NoError(t, json.Unmarshal([]byte(`{"id":"0xabc"}`), &obj))
	assert.Equal(t, "0xabc", obj.ID)

	var bare SendCallsResult
	require.NoError(t, json.Unmarshal([]byte(`"0xdef"`), &bare))
	assert.Equal(t, "0xdef", bare.ID)
}
