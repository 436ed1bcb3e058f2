// Package ledger is a narrow client for an EVM ledger endpoint: list the
// node's accounts, read balances and submit value transfers.
package ledger

import (
	"context"
	"math/big"
	"net/url"
	"time"

	"github.com/Aidin1998/ethtransfer/pkg/errors"
	"github.com/Aidin1998/ethtransfer/pkg/metrics"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	tracer   = otel.Tracer("ethtransfer/ledger")
	validate = validator.New()
)

// Client wraps one ledger endpoint. It holds no mutable state and is safe
// for concurrent use; ordering of concurrent transfers is up to the endpoint.
type Client struct {
	endpoint string
	backend  Backend
	logger   *zap.Logger
}

// Dial validates endpoint and connects to it over JSON-RPC.
func Dial(ctx context.Context, endpoint string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidRequest.Explain("malformed endpoint %q", endpoint).Wrap(err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, ErrInvalidRequest.Explain("unsupported endpoint scheme %q", u.Scheme)
	}

	backend, err := DialRPC(ctx, endpoint)
	if err != nil {
		return nil, ErrConnection.Explain("dial %s", endpoint).Wrap(err)
	}
	return NewClient(endpoint, backend, logger), nil
}

func NewClient(endpoint string, backend Backend, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		backend:  backend,
		logger:   logger.With(zap.String("endpoint", endpoint)),
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) Close() { c.backend.Close() }

// Accounts returns the accounts the endpoint manages, in the endpoint's order.
func (c *Client) Accounts(ctx context.Context) (accounts []Account, err error) {
	ctx, done := c.observe(ctx, "accounts")
	defer func() { done(err) }()

	accounts, err = c.backend.Accounts(ctx)
	if err != nil {
		return nil, classify("eth_accounts", err)
	}
	c.logger.Debug("Listed accounts", zap.Int("count", len(accounts)))
	return accounts, nil
}

// Balance returns the current balance of account in base units.
func (c *Client) Balance(ctx context.Context, account Account) (balance *big.Int, err error) {
	ctx, done := c.observe(ctx, "balance", attribute.String("ledger.account", string(account)))
	defer func() { done(err) }()

	balance, err = c.backend.Balance(ctx, account)
	if err != nil {
		return nil, classify("eth_getBalance", err)
	}
	if balance == nil || balance.Sign() < 0 {
		return nil, ErrInvalidResponse.Explain("eth_getBalance returned %v for %s", balance, account)
	}
	c.logger.Debug("Read balance",
		zap.String("account", string(account)),
		zap.String("wei", balance.String()))
	return balance, nil
}

// Transfer submits req and returns once the endpoint has accepted it. The
// ledger enforces the balance; no pre-flight check is made here.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (result *TransferResult, err error) {
	ctx, done := c.observe(ctx, "transfer",
		attribute.String("ledger.from", string(req.From)),
		attribute.String("ledger.to", string(req.To)))
	defer func() { done(err) }()

	if err := validate.Struct(req); err != nil {
		return nil, ErrInvalidRequest.Explain("from and to are required").Wrap(err)
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, ErrInvalidRequest.Explain("amount must be positive")
	}

	hash, err := c.backend.SendTransaction(ctx, req)
	if err != nil {
		err = classify("eth_sendTransaction", err)
		c.logger.Warn("Transfer rejected",
			zap.String("from", string(req.From)),
			zap.String("to", string(req.To)),
			zap.String("wei", req.Amount.String()),
			zap.Error(err))
		return nil, err
	}

	c.logger.Info("Transfer submitted",
		zap.String("hash", hash),
		zap.String("from", string(req.From)),
		zap.String("to", string(req.To)),
		zap.String("ether", ToDisplayUnit(req.Amount)))

	return &TransferResult{
		Hash:   hash,
		From:   req.From,
		To:     req.To,
		Amount: new(big.Int).Set(req.Amount),
	}, nil
}

// TransferDisplay transfers an amount given in display units.
func (c *Client) TransferDisplay(ctx context.Context, from, to Account, amount string) (*TransferResult, error) {
	wei, err := ToBaseUnit(amount)
	if err != nil {
		return nil, err
	}
	return c.Transfer(ctx, TransferRequest{From: from, To: to, Amount: wei})
}

// observe starts a span and returns a func recording the outcome in the span
// and in the ledger metrics.
func (c *Client) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		result := "ok"
		if err != nil {
			result = errors.KindOf(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		metrics.LedgerRequests.WithLabelValues(op, result).Inc()
		metrics.LedgerLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		span.End()
	}
}
