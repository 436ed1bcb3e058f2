package ledger

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend is the request/response surface of a ledger endpoint. Errors are
// returned raw; Client classifies them.
type Backend interface {
	Accounts(ctx context.Context) ([]Account, error)
	Balance(ctx context.Context, account Account) (*big.Int, error)
	SendTransaction(ctx context.Context, req TransferRequest) (string, error)
	Close()
}

// RPCBackend speaks Ethereum JSON-RPC through a go-ethereum rpc.Client.
type RPCBackend struct {
	rpc *rpc.Client
}

// DialRPC connects to an http(s) or ws(s) endpoint. HTTP connections are
// established lazily on the first call.
func DialRPC(ctx context.Context, endpoint string) (*RPCBackend, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return NewRPCBackend(c), nil
}

func NewRPCBackend(c *rpc.Client) *RPCBackend {
	return &RPCBackend{rpc: c}
}

func (b *RPCBackend) call(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.rpc.CallContext(ctx, &raw, method, args...); err != nil {
		return nil, err
	}
	return raw, nil
}

func (b *RPCBackend) Accounts(ctx context.Context) ([]Account, error) {
	raw, err := b.call(ctx, "eth_accounts")
	if err != nil {
		return nil, err
	}
	var addrs []string
	if err := json.Unmarshal(raw, &addrs); err != nil {
		return nil, ErrInvalidResponse.Explain("eth_accounts: %s", raw).Wrap(err)
	}
	accounts := make([]Account, len(addrs))
	for i, a := range addrs {
		accounts[i] = Account(a)
	}
	return accounts, nil
}

func (b *RPCBackend) Balance(ctx context.Context, account Account) (*big.Int, error) {
	raw, err := b.call(ctx, "eth_getBalance", string(account), "latest")
	if err != nil {
		return nil, err
	}
	var bal hexutil.Big
	if err := json.Unmarshal(raw, &bal); err != nil {
		return nil, ErrInvalidResponse.Explain("eth_getBalance: %s", raw).Wrap(err)
	}
	return bal.ToInt(), nil
}

// sendTxArgs leaves gas, gas price and nonce to the node.
type sendTxArgs struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Value *hexutil.Big `json:"value"`
}

func (b *RPCBackend) SendTransaction(ctx context.Context, req TransferRequest) (string, error) {
	args := sendTxArgs{
		From:  string(req.From),
		To:    string(req.To),
		Value: (*hexutil.Big)(req.Amount),
	}
	raw, err := b.call(ctx, "eth_sendTransaction", args)
	if err != nil {
		return "", err
	}
	var hash common.Hash
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", ErrInvalidResponse.Explain("eth_sendTransaction: %s", raw).Wrap(err)
	}
	if hash == (common.Hash{}) {
		return "", ErrInvalidResponse.Explain("eth_sendTransaction returned no transaction hash")
	}
	return hash.Hex(), nil
}

func (b *RPCBackend) Close() {
	b.rpc.Close()
}
