package chain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	chainID   string
	readErr   error
	switchErr error
	calls     []string
	switched  []SwitchChainParams
}

func (f *fakeRequester) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	f.calls = append(f.calls, method)
	switch method {
	case methodChainID:
		if f.readErr != nil {
			return nil, f.readErr
		}
		return json.Marshal(f.chainID)
	case methodSwitchChain:
		if f.switchErr != nil {
			return nil, f.switchErr
		}
		f.switched = append(f.switched, params[0].(SwitchChainParams))
		return json.RawMessage("null"), nil
	}
	return nil, errors.New("unexpected method " + method)
}

func TestNegotiator_Ensure(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps mainnet", func(t *testing.T) {
		p := &fakeRequester{chainID: "0x2105"}
		id, err := NewNegotiator().Ensure(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, Mainnet, id)
		assert.Equal(t, []string{methodChainID}, p.calls)
	})

	t.Run("keeps sepolia without forcing mainnet", func(t *testing.T) {
		p := &fakeRequester{chainID: "0x14a34"}
		id, err := NewNegotiator().Ensure(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, TestnetSepolia, id)
		assert.Empty(t, p.switched)
	})

	t.Run("switches other chains to mainnet", func(t *testing.T) {
		p := &fakeRequester{chainID: "0x1"}
		id, err := NewNegotiator().Ensure(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, Mainnet, id)
		require.Len(t, p.switched, 1)
		assert.Equal(t, Mainnet, p.switched[0].ChainID)
	})

	t.Run("garbage chain id triggers a switch", func(t *testing.T) {
		p := &fakeRequester{chainID: "base"}
		id, err := NewNegotiator().Ensure(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, Mainnet, id)
	})

	t.Run("failed switch is unsupported chain", func(t *testing.T) {
		rejected := errors.New("User rejected the request.")
		p := &fakeRequester{chainID: "0x89", switchErr: rejected}
		_, err := NewNegotiator().Ensure(ctx, p)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedChain)
		assert.ErrorIs(t, err, rejected)
		assert.Equal(t, []string{methodChainID, methodSwitchChain}, p.calls)
	})

	t.Run("read failure is passed through", func(t *testing.T) {
		boom := errors.New("provider disconnected")
		p := &fakeRequester{readErr: boom}
		_, err := NewNegotiator().Ensure(ctx, p)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrUnsupportedChain)
	})
}
