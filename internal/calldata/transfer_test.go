package calldata

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipient = "0x384Aa214be0B279cbf211e9b2C992d8633F77848"

func TestTransferSelector(t *testing.T) {
	want := crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
	assert.Equal(t, want, TransferSelector)
}

func TestEncodeTransfer(t *testing.T) {
	t.Run("matches the known layout", func(t *testing.T) {
		data, err := EncodeTransfer(recipient, big.NewInt(5_000_000))
		require.NoError(t, err)

		want := "0xa9059cbb" +
			"000000000000000000000000" + strings.ToLower(recipient[2:]) +
			strings.Repeat("0", 64-6) + "4c4b40"
		assert.Equal(t, want, Hex(data))
	})

	t.Run("length and prefix are fixed", func(t *testing.T) {
		amounts := []*big.Int{
			big.NewInt(0),
			big.NewInt(1),
			big.NewInt(3_999_999),
			new(big.Int).Lsh(big.NewInt(1), 128),
			new(big.Int).Set(maxUint256),
		}
		for _, amt := range amounts {
			data, err := EncodeTransfer(recipient, amt)
			require.NoError(t, err)
			assert.Len(t, data, TransferLength)
			assert.Equal(t, TransferSelector, data[:4])
			assert.Equal(t, 0, new(big.Int).SetBytes(data[36:]).Cmp(amt), "amount %s", amt)
		}
	})

	t.Run("address case does not matter", func(t *testing.T) {
		lower, err := EncodeTransfer(strings.ToLower(recipient), big.NewInt(1))
		require.NoError(t, err)
		mixed, err := EncodeTransfer(recipient, big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, lower, mixed)
	})

	t.Run("rejects malformed recipients", func(t *testing.T) {
		for _, r := range []string{"", "0x1234", "not-an-address", recipient + "00"} {
			_, err := EncodeTransfer(r, big.NewInt(1))
			assert.ErrorIs(t, err, ErrInvalidRecipient, "recipient %q", r)
		}
	})

	t.Run("rejects amounts outside uint256", func(t *testing.T) {
		tooBig := new(big.Int).Add(maxUint256, big.NewInt(1))
		for _, amt := range []*big.Int{nil, big.NewInt(-1), tooBig} {
			_, err := EncodeTransfer(recipient, amt)
			assert.ErrorIs(t, err, ErrAmountOutOfRange)
		}
	})
}

func TestDecodeTransfer(t *testing.T) {
	t.Run("reads back recipient and amount", func(t *testing.T) {
		amt, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		data, err := EncodeTransfer(recipient, amt)
		require.NoError(t, err)

		to, got, err := DecodeTransfer(data)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(recipient), to)
		assert.Equal(t, amt, got)
	})

	t.Run("ignores a trailing suffix", func(t *testing.T) {
		data, err := EncodeTransfer(recipient, big.NewInt(42))
		require.NoError(t, err)
		suffix, err := AttributionSuffix("bc_test")
		require.NoError(t, err)

		_, got, err := DecodeTransfer(append(data, suffix...))
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(42), got)
	})

	t.Run("rejects other payloads", func(t *testing.T) {
		_, _, err := DecodeTransfer(common.Hex2Bytes("70a08231"))
		assert.ErrorIs(t, err, ErrNotTransferPayload)
	})
}
