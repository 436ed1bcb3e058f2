// Package testutil provides an in-process Ethereum JSON-RPC node for tests.
//
// The node serves eth_accounts, eth_getBalance and eth_sendTransaction over
// HTTP using go-ethereum's rpc.Server, so clients under test go through the
// real JSON-RPC transport. Accounts are unlocked and transfers are applied
// immediately, the way a local development chain behaves.
package testutil

import (
	"context"
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// TransferGas is the gas charged for a plain value transfer.
const TransferGas = 21000

// Ether returns n ether in wei.
func Ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// Node is a fake ledger endpoint.
type Node struct {
	mu        sync.Mutex
	accounts  []common.Address
	balances  map[common.Address]*big.Int
	gasPrice  *big.Int
	nonce     uint64
	emptyHash bool
	sent      []SentTx
	latency   time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	server *rpc.Server
	http   *httptest.Server
}

// SentTx records an accepted eth_sendTransaction call.
type SentTx struct {
	Hash  common.Hash
	From  common.Address
	To    common.Address
	Value *big.Int
	Fee   *big.Int
}

// NewNode starts a node with one account per balance. It is shut down when
// the test ends.
func NewNode(t testing.TB, balances ...*big.Int) *Node {
	t.Helper()

	n := &Node{
		balances: make(map[common.Address]*big.Int),
		gasPrice: new(big.Int),
		stop:     make(chan struct{}),
	}
	for i, b := range balances {
		addr := common.BytesToAddress(crypto.Keccak256([]byte(fmt.Sprintf("account-%d", i)))[12:])
		n.accounts = append(n.accounts, addr)
		n.balances[addr] = new(big.Int).Set(b)
	}

	n.server = rpc.NewServer()
	if err := n.server.RegisterName("eth", &ethAPI{node: n}); err != nil {
		t.Fatalf("register eth api: %v", err)
	}
	n.http = httptest.NewServer(n.server)
	t.Cleanup(n.Close)
	return n
}

// URL is the HTTP endpoint of the node.
func (n *Node) URL() string { return n.http.URL }

// Close stops the node. Calls made afterwards fail at the transport.
func (n *Node) Close() {
	n.stopOnce.Do(func() { close(n.stop) })
	n.http.Close()
	n.server.Stop()
}

// Accounts returns the node's accounts as hex strings.
func (n *Node) Accounts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.accounts))
	for i, a := range n.accounts {
		out[i] = hexutil.Encode(a.Bytes())
	}
	return out
}

// Balance returns the current balance of account, or nil if unknown.
func (n *Node) Balance(account string) *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.balances[common.HexToAddress(account)]
	if !ok {
		return nil
	}
	return new(big.Int).Set(b)
}

// SetLatency delays every RPC answer by d. A call whose context ends first, or
// that is pending when the node closes, returns early.
func (n *Node) SetLatency(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latency = d
}

// SetGasPrice makes every transfer cost TransferGas * price, paid by the sender.
func (n *Node) SetGasPrice(price *big.Int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gasPrice = new(big.Int).Set(price)
}

// ReturnEmptyHash makes eth_sendTransaction answer with the zero hash
// without applying the transfer.
func (n *Node) ReturnEmptyHash(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emptyHash = v
}

// Sent returns the accepted transactions in submission order.
func (n *Node) Sent() []SentTx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentTx(nil), n.sent...)
}

type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string  { return e.msg }
func (e *rpcError) ErrorCode() int { return e.code }

type sendTxArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Value    *hexutil.Big    `json:"value"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
}

type ethAPI struct {
	node *Node
}

func (n *Node) wait(ctx context.Context) error {
	n.mu.Lock()
	d := n.latency
	n.mu.Unlock()
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-n.stop:
		return &rpcError{code: -32000, msg: "node stopped"}
	}
}

func (api *ethAPI) Accounts(ctx context.Context) ([]common.Address, error) {
	n := api.node
	if err := n.wait(ctx); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]common.Address(nil), n.accounts...), nil
}

// GetBalance follows real nodes: malformed addresses are rejected by
// argument decoding, unknown well-formed ones have a zero balance.
func (api *ethAPI) GetBalance(ctx context.Context, addr common.Address, block string) (*hexutil.Big, error) {
	n := api.node
	if err := n.wait(ctx); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.balances[addr]
	if !ok {
		return (*hexutil.Big)(new(big.Int)), nil
	}
	return (*hexutil.Big)(new(big.Int).Set(b)), nil
}

func (api *ethAPI) SendTransaction(ctx context.Context, args sendTxArgs) (common.Hash, error) {
	n := api.node
	if err := n.wait(ctx); err != nil {
		return common.Hash{}, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if args.From == nil {
		return common.Hash{}, &rpcError{code: -32602, msg: "missing from address"}
	}
	from, ok := n.balances[*args.From]
	if !ok {
		return common.Hash{}, &rpcError{code: -32000, msg: "unknown account"}
	}
	if args.To == nil {
		return common.Hash{}, &rpcError{code: -32000, msg: "contract creation is not supported"}
	}
	if n.emptyHash {
		return common.Hash{}, nil
	}

	value := new(big.Int)
	if args.Value != nil {
		value.Set(args.Value.ToInt())
	}
	fee := new(big.Int).Mul(n.gasPrice, big.NewInt(TransferGas))
	cost := new(big.Int).Add(value, fee)
	if from.Cmp(cost) < 0 {
		return common.Hash{}, &rpcError{
			code: -32000,
			msg:  fmt.Sprintf("insufficient funds for gas * price + value: balance %s, tx cost %s", from, cost),
		}
	}

	from.Sub(from, cost)
	to, ok := n.balances[*args.To]
	if !ok {
		to = new(big.Int)
		n.balances[*args.To] = to
	}
	to.Add(to, value)

	n.nonce++
	hash := crypto.Keccak256Hash(args.From.Bytes(), args.To.Bytes(), value.Bytes(), new(big.Int).SetUint64(n.nonce).Bytes())
	n.sent = append(n.sent, SentTx{Hash: hash, From: *args.From, To: *args.To, Value: value, Fee: fee})
	return hash, nil
}
