package wallet

import (
	"context"
	"math/big"
	"time"

	"github.com/Aidin1998/ethtransfer/internal/events"
	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"go.uber.org/zap"
)

// Balance is a balance in base units with its display rendering
type Balance struct {
	Account ledger.Account `json:"account"`
	Wei     string         `json:"wei"`
	Ether   string         `json:"ether"`

	Amount *big.Int `json:"-"`
}

// WalletService reads balances and submits transfers through one ledger
// endpoint, announcing accepted transfers on the publisher.
type WalletService struct {
	ledger    Ledger
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

var _ Service = (*WalletService)(nil)

// NewWalletService creates a new wallet service. A nil publisher disables events.
func NewWalletService(l Ledger, publisher events.Publisher, logger *zap.Logger) *WalletService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &WalletService{
		ledger:    l,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *WalletService) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	return s.ledger.Accounts(ctx)
}

func (s *WalletService) GetBalance(ctx context.Context, account ledger.Account) (*Balance, error) {
	amount, err := s.ledger.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	return &Balance{
		Account: account,
		Wei:     amount.String(),
		Ether:   ledger.ToDisplayUnit(amount),
		Amount:  amount,
	}, nil
}

// Transfer submits req. Once the ledger has accepted it the result is
// returned even if the event cannot be published.
func (s *WalletService) Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error) {
	result, err := s.ledger.Transfer(ctx, req)
	if err != nil {
		return nil, err
	}

	event := events.NewTransferSubmitted(s.ledger.Endpoint(), result, s.now())
	if err := s.publisher.PublishTransfer(ctx, event); err != nil {
		s.logger.Warn("Transfer accepted but event not published",
			zap.String("hash", result.Hash),
			zap.Error(err))
	}
	return result, nil
}
