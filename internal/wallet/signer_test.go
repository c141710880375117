package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *KeystoreSigner {
	t.Helper()
	km := newTestManager(t)
	account, err := km.ImportKey(testPrivateKey, "pw")
	require.NoError(t, err)
	signer, err := km.GetSigner(account.Address, "pw")
	require.NoError(t, err)
	return signer
}

func dynamicTx(chainID *big.Int) *types.Transaction {
	to := common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		GasTipCap: big.NewInt(1_000_000),
		GasFeeCap: big.NewInt(2_000_000_000),
		Gas:       60_000,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      []byte{0xa9, 0x05, 0x9c, 0xbb},
	})
}

func TestKeystoreSigner_SignTransaction(t *testing.T) {
	t.Run("signature recovers the signer", func(t *testing.T) {
		signer := newTestSigner(t)
		chainID := big.NewInt(8453)

		signed, err := signer.SignTransaction(dynamicTx(chainID), chainID)
		require.NoError(t, err)

		from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), from)
		assert.Equal(t, chainID, signed.ChainId())
	})

	t.Run("fails after lock", func(t *testing.T) {
		signer := newTestSigner(t)
		signer.Lock()

		_, err := signer.SignTransaction(dynamicTx(big.NewInt(8453)), big.NewInt(8453))
		assert.ErrorIs(t, err, ErrAccountLocked)
	})
}

func TestKeystoreSigner_Lock(t *testing.T) {
	signer := newTestSigner(t)

	assert.NotPanics(t, func() {
		signer.Lock()
		signer.Lock()
	})
	assert.Equal(t, testAddress, signer.Address().Hex())

	var _ Signer = signer
}
