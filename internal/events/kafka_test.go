package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleResult() *ledger.TransferResult {
	return &ledger.TransferResult{
		Hash:   "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
		From:   "0x0000000000000000000000000000000000000001",
		To:     "0x0000000000000000000000000000000000000002",
		Amount: ledger.MustToBaseUnit("1.5"),
	}
}

func TestNewTransferSubmitted(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	ev := NewTransferSubmitted("http://127.0.0.1:7545", sampleResult(), at)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "1500000000000000000", ev.AmountWei)
	assert.Equal(t, "1.5", ev.AmountEther)
	assert.Equal(t, time.UTC, ev.SubmittedAt.Location())
	assert.Equal(t, "http://127.0.0.1:7545", ev.Endpoint)
}

func TestKafkaPublisherWritesKeyedJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, zap.NewNop())
	ev := NewTransferSubmitted("http://node", sampleResult(), time.Now())

	require.NoError(t, p.PublishTransfer(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, ev.Hash, string(w.msgs[0].Key))

	var decoded TransferSubmitted
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, ev.AmountWei, decoded.AmountWei)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherPropagatesWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, zap.NewNop())

	err := p.PublishTransfer(context.Background(), NewTransferSubmitted("http://node", sampleResult(), time.Now()))
	assert.ErrorContains(t, err, "broker down")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishTransfer(context.Background(), TransferSubmitted{}))
	assert.NoError(t, p.Close())
}
