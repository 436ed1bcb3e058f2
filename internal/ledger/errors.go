package ledger

import (
	"strings"

	"github.com/Aidin1998/ethtransfer/pkg/errors"
	"github.com/ethereum/go-ethereum/rpc"
)

// Error kinds returned by Client. Match with errors.Is.
var (
	ErrConnection          = errors.NewWithKind("ConnectionError")
	ErrInvalidAccount      = errors.NewWithKind("InvalidAccountError")
	ErrInsufficientBalance = errors.NewWithKind("InsufficientBalanceError")
	ErrRejected            = errors.NewWithKind("RejectedError")
	ErrInvalidResponse     = errors.NewWithKind("InvalidResponseError")
	ErrInvalidRequest      = errors.NewWithKind("InvalidRequestError")
)

// JSON-RPC 2.0 invalid params
const invalidParamsCode = -32602

var insufficientFundsHints = []string{
	"insufficient funds",
	"insufficient balance",
	"not enough funds",
	"doesn't have enough funds",
	"exceeds balance",
}

var invalidAccountHints = []string{
	"unknown account",
	"invalid address",
	"account not recognized",
	"sender account not recognized",
	"no such account",
}

// classify maps a transport or endpoint error onto one of the error kinds.
// The original error is kept as the cause.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.KindOf(err) != "" {
		return err
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		msg := strings.ToLower(rpcErr.Error())
		switch {
		case containsAny(msg, insufficientFundsHints):
			return ErrInsufficientBalance.Explain("%s rejected by endpoint", op).Wrap(err)
		case rpcErr.ErrorCode() == invalidParamsCode, containsAny(msg, invalidAccountHints):
			return ErrInvalidAccount.Explain("%s rejected by endpoint", op).Wrap(err)
		default:
			return ErrRejected.Explain("%s rejected by endpoint", op).Wrap(err)
		}
	}
	if errors.Is(err, rpc.ErrNoResult) {
		return ErrInvalidResponse.Explain("%s: empty result", op).Wrap(err)
	}
	return ErrConnection.Explain("%s failed", op).Wrap(err)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
