package ledger

import "math/big"

// Account is an address as reported by the endpoint. It is never parsed
// locally; the endpoint decides whether it is valid.
type Account string

func (a Account) String() string { return string(a) }

// TransferRequest moves Amount base units from From to To.
type TransferRequest struct {
	From   Account  `json:"from" validate:"required"`
	To     Account  `json:"to" validate:"required"`
	Amount *big.Int `json:"amount" validate:"-"`
}

// TransferResult is the endpoint's acceptance of a transfer. Hash is the
// transaction hash returned by the submission call.
type TransferResult struct {
	Hash   string   `json:"hash"`
	From   Account  `json:"from"`
	To     Account  `json:"to"`
	Amount *big.Int `json:"amount"`
}
