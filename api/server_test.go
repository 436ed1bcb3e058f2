package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aidin1998/ethtransfer/api"
	"github.com/Aidin1998/ethtransfer/internal/ledger"
	"github.com/Aidin1998/ethtransfer/internal/wallet"
	"github.com/Aidin1998/ethtransfer/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// helper to set up router against a fake node with 100 and 10 ether
func setupRouter(t *testing.T, opts ...api.Option) (*testutil.Node, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	node := testutil.NewNode(t, testutil.Ether(100), testutil.Ether(10))
	client, err := ledger.Dial(context.Background(), node.URL(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	srv := api.NewServer(zap.NewNop(), wallet.NewWalletService(client, nil, zap.NewNop()), opts...)
	return node, srv.Router()
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	_, router := setupRouter(t)
	w := do(router, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestListAccounts(t *testing.T) {
	node, router := setupRouter(t)
	w := do(router, http.MethodGet, "/api/v1/accounts", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Accounts []string `json:"accounts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, node.Accounts(), resp.Accounts)
}

func TestGetBalance(t *testing.T) {
	node, router := setupRouter(t)
	w := do(router, http.MethodGet, "/api/v1/accounts/"+node.Accounts()[1]+"/balance", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "10", resp["ether"])
	assert.Equal(t, "10000000000000000000", resp["wei"])
}

func TestGetBalanceInvalidAccount(t *testing.T) {
	_, router := setupRouter(t)
	w := do(router, http.MethodGet, "/api/v1/accounts/not-a-real-account/balance", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "Invalid Account", decode(t, w)["title"])
}

func TestCreateTransfer(t *testing.T) {
	node, router := setupRouter(t)
	accounts := node.Accounts()

	w := do(router, http.MethodPost, "/api/v1/transfers", map[string]string{
		"from":   accounts[0],
		"to":     accounts[1],
		"amount": "1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "1000000000000000000", resp["wei"])
	assert.NotEmpty(t, resp["hash"])

	assert.Equal(t, 0, node.Balance(accounts[0]).Cmp(testutil.Ether(99)))
	assert.Equal(t, 0, node.Balance(accounts[1]).Cmp(testutil.Ether(11)))
}

func TestCreateTransferInWei(t *testing.T) {
	node, router := setupRouter(t)
	accounts := node.Accounts()

	w := do(router, http.MethodPost, "/api/v1/transfers", map[string]string{
		"from": accounts[0],
		"to":   accounts[1],
		"wei":  "12345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "0.000000000000012345", decode(t, w)["ether"])
}

func TestCreateTransferInsufficientFunds(t *testing.T) {
	node, router := setupRouter(t)
	accounts := node.Accounts()

	w := do(router, http.MethodPost, "/api/v1/transfers", map[string]string{
		"from":   accounts[1],
		"to":     accounts[0],
		"amount": "10.5",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, node.Sent())
}

func TestCreateTransferValidation(t *testing.T) {
	node, router := setupRouter(t)
	accounts := node.Accounts()

	bodies := []map[string]string{
		{"from": accounts[0], "to": accounts[1]},
		{"from": accounts[0], "amount": "1"},
		{"from": accounts[0], "to": accounts[1], "amount": "-1"},
		{"from": accounts[0], "to": accounts[1], "amount": "0"},
		{"from": accounts[0], "to": accounts[1], "wei": "1.5"},
		{"from": accounts[0], "to": accounts[1], "amount": "1", "wei": "1"},
	}
	for _, body := range bodies {
		w := do(router, http.MethodPost, "/api/v1/transfers", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v: %s", body, w.Body.String())
	}
	assert.Empty(t, node.Sent())
}

func TestLedgerUnavailable(t *testing.T) {
	node, router := setupRouter(t)
	node.Close()

	w := do(router, http.MethodGet, "/api/v1/accounts", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Ledger Unavailable", decode(t, w)["title"])
}

func TestRequestTimeoutMapsToLedgerUnavailable(t *testing.T) {
	node, router := setupRouter(t, api.WithRequestTimeout(50*time.Millisecond))
	node.SetLatency(2 * time.Second)

	start := time.Now()
	w := do(router, http.MethodGet, "/api/v1/accounts", nil)
	assert.Less(t, time.Since(start), time.Second)

	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Ledger Unavailable", resp["title"])
	assert.Contains(t, resp["detail"], "ConnectionError")
}

func TestRequestTimeoutLeavesFastCallsAlone(t *testing.T) {
	node, router := setupRouter(t, api.WithRequestTimeout(2*time.Second))
	node.SetLatency(10 * time.Millisecond)

	w := do(router, http.MethodGet, "/api/v1/accounts/"+node.Accounts()[0]+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", decode(t, w)["ether"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, router := setupRouter(t)
	do(router, http.MethodGet, "/api/v1/accounts", nil)

	w := do(router, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ethtransfer_ledger_requests_total")
}
