package tip

import (
	"context"
	"errors"
	"regexp"
)

// Classification is what the user sees after a failed attempt.
type Classification struct {
	Kind        Kind
	Message     string
	Recoverable bool
}

// rejection matches the vocabulary wallets use when the user says no.
var rejection = regexp.MustCompile(`(?i)rejected|denied|user`)

// Classify maps any error to a user-facing outcome. Tagged errors keep
// their kind. Untagged errors are UserCanceled when they look like a
// rejection and ProviderError with the raw text otherwise.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindProviderError, Message: "unknown error", Recoverable: true}
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return Classification{
			Kind:        tagged.Kind,
			Message:     tagged.Error(),
			Recoverable: tagged.Kind != KindConfig,
		}
	}

	if errors.Is(err, context.Canceled) || rejection.MatchString(err.Error()) {
		return Classification{Kind: KindUserCanceled, Message: MsgCanceled, Recoverable: true}
	}

	return Classification{Kind: KindProviderError, Message: err.Error(), Recoverable: true}
}
