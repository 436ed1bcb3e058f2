package wallet

import (
	"context"
	"math/big"

	"github.com/Aidin1998/ethtransfer/internal/ledger"
)

// Service is the account and transfer surface used by the API and CLI
type Service interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	GetBalance(ctx context.Context, account ledger.Account) (*Balance, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
}

// Ledger is the part of ledger.Client the service needs
type Ledger interface {
	Endpoint() string
	Accounts(ctx context.Context) ([]ledger.Account, error)
	Balance(ctx context.Context, account ledger.Account) (*big.Int, error)
	Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.TransferResult, error)
}
