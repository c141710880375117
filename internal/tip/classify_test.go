package tip

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yolodolo42/basetip/internal/amount"
	"github.com/yolodolo42/basetip/internal/chain"
	"github.com/yolodolo42/basetip/internal/wallet"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		kind        Kind
		msg         string
		recoverable bool
	}{
		{
			name:        "wallet rejection by code message",
			err:         &wallet.ProviderError{Code: wallet.CodeUserRejected, Message: "User rejected the request."},
			kind:        KindUserCanceled,
			msg:         MsgCanceled,
			recoverable: true,
		},
		{
			name:        "denied wording",
			err:         errors.New("Request DENIED by wallet"),
			kind:        KindUserCanceled,
			msg:         MsgCanceled,
			recoverable: true,
		},
		{
			name:        "context canceled",
			err:         fmt.Errorf("warm-up: %w", context.Canceled),
			kind:        KindUserCanceled,
			msg:         MsgCanceled,
			recoverable: true,
		},
		{
			name:        "raw provider failure",
			err:         errors.New("insufficient funds for gas"),
			kind:        KindProviderError,
			msg:         "insufficient funds for gas",
			recoverable: true,
		},
		{
			name:        "tagged unsupported chain keeps kind despite rejection wording",
			err:         newError(KindUnsupportedChain, MsgUnsupportedChain, fmt.Errorf("%w: user rejected", chain.ErrUnsupportedChain)),
			kind:        KindUnsupportedChain,
			msg:         MsgUnsupportedChain,
			recoverable: true,
		},
		{
			name:        "config error is not recoverable",
			err:         newError(KindConfig, MsgMissingCode, nil),
			kind:        KindConfig,
			msg:         MsgMissingCode,
			recoverable: false,
		},
		{
			name:        "wrapped tagged error",
			err:         fmt.Errorf("attempt: %w", newError(KindNoAccount, MsgNoAccount, wallet.ErrNoAccount)),
			kind:        KindNoAccount,
			msg:         MsgNoAccount,
			recoverable: true,
		},
		{
			name:        "nil",
			err:         nil,
			kind:        KindProviderError,
			msg:         "unknown error",
			recoverable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.msg, got.Message)
			assert.Equal(t, tt.recoverable, got.Recoverable)
		})
	}
}

func TestAmountError(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"", KindEmptyAmount},
		{"   ", KindEmptyAmount},
		{"abc", KindInvalidFormat},
		{"-1", KindInvalidFormat},
		{"1e6", KindInvalidFormat},
		{"0", KindNonPositiveAmount},
		{"0.0000001", KindNonPositiveAmount},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.input), func(t *testing.T) {
			_, err := amount.ToBaseUnits(tt.input, 6)
			tagged := amountError(err)
			assert.Equal(t, tt.kind, tagged.Kind)
			assert.ErrorIs(t, tagged, err)
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "x", (&Error{Kind: KindProviderError, Message: "x"}).Error())
	assert.Equal(t, "boom", (&Error{Kind: KindProviderError, Err: errors.New("boom")}).Error())
	assert.Equal(t, "NoProvider", (&Error{Kind: KindNoProvider}).Error())
}
