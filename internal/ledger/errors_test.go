package ledger

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
)

type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string  { return e.msg }
func (e *codedError) ErrorCode() int { return e.code }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"geth funds", &codedError{-32000, "insufficient funds for gas * price + value"}, ErrInsufficientBalance},
		{"ganache funds", &codedError{-32000, "sender doesn't have enough funds to send tx"}, ErrInsufficientBalance},
		{"invalid params", &codedError{-32602, "invalid argument 0: hex string without 0x prefix"}, ErrInvalidAccount},
		{"unknown account", &codedError{-32000, "unknown account"}, ErrInvalidAccount},
		{"ganache sender", &codedError{-32000, "sender account not recognized"}, ErrInvalidAccount},
		{"nonce", &codedError{-32000, "nonce too low"}, ErrRejected},
		{"no result", rpc.ErrNoResult, ErrInvalidResponse},
		{"refused", &url.Error{Op: "Post", URL: "http://127.0.0.1:7545", Err: errors.New("connection refused")}, ErrConnection},
		{"http status", rpc.HTTPError{StatusCode: 503, Status: "503 Service Unavailable"}, ErrConnection},
		{"deadline", context.DeadlineExceeded, ErrConnection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify("op", tc.err)
			assert.True(t, errors.Is(got, tc.want), "got %v", got)
			assert.Equal(t, tc.err, errors.Unwrap(got))
		})
	}
}

func TestClassifyKeepsKindedErrors(t *testing.T) {
	in := ErrInvalidResponse.Explain("bad hash")
	assert.Same(t, in, classify("op", in))
	assert.Nil(t, classify("op", nil))
}
