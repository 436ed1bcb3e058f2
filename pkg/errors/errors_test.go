package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = NewWithKind("NotFound")

func TestIsMatchesKind(t *testing.T) {
	err := errNotFound.Explain("account %s", "0x1").Wrap(context.DeadlineExceeded)

	assert.True(t, Is(err, errNotFound))
	assert.True(t, Is(err, context.DeadlineExceeded))
	assert.False(t, Is(err, NewWithKind("Other")))
	assert.Equal(t, "[NotFound] account 0x1 (context deadline exceeded)", err.Error())
}

func TestWrapDoesNotMutateSentinel(t *testing.T) {
	_ = errNotFound.Wrap(context.Canceled)
	assert.Nil(t, errNotFound.Unwrap())
	assert.Empty(t, errNotFound.Message)
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", errNotFound.Explain("x"))
	assert.Equal(t, "NotFound", KindOf(wrapped))
	assert.Equal(t, "", KindOf(context.Canceled))
}

func TestProblemDetailsMarshal(t *testing.T) {
	p := NewValidationError("bad amount", "/api/v1/transfers").WithExtra("field", "amount")
	data, err := p.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "`+TypeValidationError+`",
		"title": "Validation Error",
		"status": 400,
		"detail": "bad amount",
		"instance": "/api/v1/transfers",
		"field": "amount"
	}`, string(data))
	assert.Equal(t, http.StatusBadRequest, p.Status)
}
