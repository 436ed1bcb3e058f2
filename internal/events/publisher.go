// Package events publishes notifications about accepted transfers.
package events

import (
	"context"
	"time"

	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/google/uuid"
)

// TransferSubmitted is emitted after the ledger accepted a transfer
type TransferSubmitted struct {
	ID          string    `json:"id"`
	Hash        string    `json:"hash"`
	Endpoint    string    `json:"endpoint"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	AmountWei   string    `json:"amount_wei"`
	AmountEther string    `json:"amount_ether"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewTransferSubmitted builds the event for result
func NewTransferSubmitted(endpoint string, result *ledger.TransferResult, at time.Time) TransferSubmitted {
	return TransferSubmitted{
		ID:          uuid.NewString(),
		Hash:        result.Hash,
		Endpoint:    endpoint,
		From:        result.From.String(),
		To:          result.To.String(),
		AmountWei:   result.Amount.String(),
		AmountEther: ledger.ToDisplayUnit(result.Amount),
		SubmittedAt: at.UTC(),
	}
}

// Publisher delivers transfer events
type Publisher interface {
	PublishTransfer(ctx context.Context, event TransferSubmitted) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishTransfer(context.Context, TransferSubmitted) error { return nil }
func (NopPublisher) Close() error                                            { return nil }
