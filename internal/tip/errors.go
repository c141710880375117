package tip

import (
	"errors"

	"github.com/yolodolo42/basetip/internal/amount"
)

// Kind classifies why an attempt ended.
type Kind string

const (
	KindConfig            Kind = "ConfigError"
	KindEmptyAmount       Kind = "EmptyAmount"
	KindInvalidFormat     Kind = "InvalidFormat"
	KindNonPositiveAmount Kind = "NonPositiveAmount"
	KindNoProvider        Kind = "NoProvider"
	KindUnsupportedChain  Kind = "UnsupportedChain"
	KindNoAccount         Kind = "NoAccount"
	KindUserCanceled      Kind = "UserCanceled"
	KindProviderError     Kind = "ProviderError"
)

// User-facing messages.
const (
	MsgEmptyAmount       = "Enter an amount"
	MsgInvalidFormat     = "Invalid amount"
	MsgNonPositiveAmount = "Amount must be > 0"
	MsgNoProvider        = "No wallet provider found. Set wallet_rpc_url or use the local provider."
	MsgUnsupportedChain  = "Please switch your wallet to Base network."
	MsgNoAccount         = "No wallet account selected."
	MsgCanceled          = "Tip canceled."
	MsgMissingCode       = "Set your builder code: run basetip setup"
	MsgMissingRecipient  = "Set your recipient address: run basetip setup"
)

var (
	ErrBusy              = errors.New("a tip is already in flight")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Error tags a failure with its kind and the message shown to the user.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// amountError tags an encoder failure.
func amountError(err error) *Error {
	switch {
	case errors.Is(err, amount.ErrEmpty):
		return newError(KindEmptyAmount, MsgEmptyAmount, err)
	case errors.Is(err, amount.ErrNonPositive):
		return newError(KindNonPositiveAmount, MsgNonPositiveAmount, err)
	default:
		return newError(KindInvalidFormat, MsgInvalidFormat, err)
	}
}
