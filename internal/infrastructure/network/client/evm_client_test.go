package client

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"balance_watcher/internal/domain/entity"
)

const (
	selectorBalanceOf = "0x70a08231"
	selectorDecimals  = "0x313ce567"
	selectorSymbol    = "0x95d89b41"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type callObject struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Input string `json:"input"`
}

// newRPCServer starts an httptest server speaking just enough JSON-RPC for the
// client under test, including batch (array) requests.
func newRPCServer(t *testing.T, handle func(method string, params []json.RawMessage) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		trimmed := strings.TrimSpace(string(body))
		if strings.HasPrefix(trimmed, "[") {
			var reqs []rpcRequest
			require.NoError(t, json.Unmarshal(body, &reqs))
			resps := make([]rpcResponse, len(reqs))
			for i, req := range reqs {
				result, rpcErr := handle(req.Method, req.Params)
				resps[i] = rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
			}
			require.NoError(t, json.NewEncoder(w).Encode(resps))
			return
		}

		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))
		result, rpcErr := handle(req.Method, req.Params)
		require.NoError(t, json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr,
		}))
	}))
}

func decodeCall(t *testing.T, params []json.RawMessage) callObject {
	t.Helper()
	require.NotEmpty(t, params)
	var call callObject
	require.NoError(t, json.Unmarshal(params[0], &call))
	if call.Data == "" {
		call.Data = call.Input
	}
	return call
}

func packUint8(t *testing.T, v uint8) string {
	t.Helper()
	initParsedERC20ABI()
	out, err := parsedERC20ABI.Methods["decimals"].Outputs.Pack(v)
	require.NoError(t, err)
	return hexutil.Encode(out)
}

func packString(t *testing.T, v string) string {
	t.Helper()
	initParsedERC20ABI()
	out, err := parsedERC20ABI.Methods["symbol"].Outputs.Pack(v)
	require.NoError(t, err)
	return hexutil.Encode(out)
}

func packBalance(t *testing.T, v *big.Int) string {
	t.Helper()
	initParsedERC20ABI()
	out, err := parsedERC20ABI.Methods["balanceOf"].Outputs.Pack(v)
	require.NoError(t, err)
	return hexutil.Encode(out)
}

func testNetDef() entity.NetworkDefinition {
	return entity.NetworkDefinition{
		ChainID:      1,
		Name:         "Ethereum",
		Identifier:   "ethereum",
		NativeSymbol: "ETH",
		Decimals:     18,
	}
}

func dialTestClient(t *testing.T, url string) *EVMClient {
	t.Helper()
	ethClient, err := ethclient.Dial(url)
	require.NoError(t, err)
	t.Cleanup(ethClient.Close)
	return newEVMClient(ethClient, testNetDef(), url, 2*time.Second, gocache.New(gocache.NoExpiration, gocache.NoExpiration))
}

func TestNativeBalance(t *testing.T) {
	srv := newRPCServer(t, func(method string, _ []json.RawMessage) (interface{}, *rpcError) {
		if method == "eth_getBalance" {
			return "0xde0b6b3a7640000", nil // 1 ETH
		}
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	balance, err := client.NativeBalance(context.Background(), "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())
}

func TestTokenBalancesSingleToken(t *testing.T) {
	const usdtContract = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

	srv := newRPCServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		if method != "eth_call" {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
		call := decodeCall(t, params)
		switch {
		case strings.HasPrefix(call.Data, selectorDecimals):
			return packUint8(t, 6), nil
		case strings.HasPrefix(call.Data, selectorSymbol):
			return packString(t, "USDT"), nil
		case strings.HasPrefix(call.Data, selectorBalanceOf):
			return packBalance(t, big.NewInt(2_000_000)), nil
		}
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	readings, err := client.TokenBalances(context.Background(),
		"0x0000000000000000000000000000000000000001",
		map[string]string{"USDT": usdtContract})

	require.NoError(t, err)
	require.Contains(t, readings, "USDT")
	reading := readings["USDT"]
	require.NoError(t, reading.Err)
	assert.Equal(t, int64(2_000_000), reading.Raw.Int64())
	assert.Equal(t, uint8(6), reading.Decimals)
}

func TestTokenBalancesMetadataFailureIsolated(t *testing.T) {
	const (
		goodContract = "0x0000000000000000000000000000000000000aaa"
		badContract  = "0x0000000000000000000000000000000000000bbb"
	)

	srv := newRPCServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		if method != "eth_call" {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}
		call := decodeCall(t, params)
		if strings.EqualFold(call.To, badContract) {
			return nil, &rpcError{Code: 3, Message: "execution reverted"}
		}
		switch {
		case strings.HasPrefix(call.Data, selectorDecimals):
			return packUint8(t, 6), nil
		case strings.HasPrefix(call.Data, selectorSymbol):
			return packString(t, "USDC"), nil
		case strings.HasPrefix(call.Data, selectorBalanceOf):
			return packBalance(t, big.NewInt(750_000)), nil
		}
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	readings, err := client.TokenBalances(context.Background(),
		"0x0000000000000000000000000000000000000001",
		map[string]string{"USDC": goodContract, "USDT": badContract})

	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Error(t, readings["USDT"].Err)
	require.NoError(t, readings["USDC"].Err)
	assert.Equal(t, int64(750_000), readings["USDC"].Raw.Int64())
}

func TestTokenBalancesEmptyResultMeansZero(t *testing.T) {
	srv := newRPCServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		call := decodeCall(t, params)
		switch {
		case strings.HasPrefix(call.Data, selectorDecimals):
			return packUint8(t, 18), nil
		case strings.HasPrefix(call.Data, selectorSymbol):
			return packString(t, "USDT"), nil
		case strings.HasPrefix(call.Data, selectorBalanceOf):
			return "0x", nil // non-contract address answers with empty data
		}
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	readings, err := client.TokenBalances(context.Background(),
		"0x0000000000000000000000000000000000000001",
		map[string]string{"USDT": "0x0000000000000000000000000000000000000ccc"})

	require.NoError(t, err)
	reading := readings["USDT"]
	require.NoError(t, reading.Err)
	assert.Equal(t, int64(0), reading.Raw.Int64())
}

func TestTokenMetaIsCachedAcrossCalls(t *testing.T) {
	metaCalls := 0
	srv := newRPCServer(t, func(method string, params []json.RawMessage) (interface{}, *rpcError) {
		call := decodeCall(t, params)
		switch {
		case strings.HasPrefix(call.Data, selectorDecimals):
			metaCalls++
			return packUint8(t, 6), nil
		case strings.HasPrefix(call.Data, selectorSymbol):
			return packString(t, "USDT"), nil
		case strings.HasPrefix(call.Data, selectorBalanceOf):
			return packBalance(t, big.NewInt(1)), nil
		}
		return nil, &rpcError{Code: 3, Message: "execution reverted"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	tokens := map[string]string{"USDT": "0x0000000000000000000000000000000000000aaa"}

	_, err := client.TokenBalances(context.Background(), "0x0000000000000000000000000000000000000001", tokens)
	require.NoError(t, err)
	_, err = client.TokenBalances(context.Background(), "0x0000000000000000000000000000000000000001", tokens)
	require.NoError(t, err)

	assert.Equal(t, 1, metaCalls, "decimals must be resolved once per contract")
}

func TestTokenBalancesNoTokens(t *testing.T) {
	srv := newRPCServer(t, func(string, []json.RawMessage) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	})
	defer srv.Close()

	client := dialTestClient(t, srv.URL)
	readings, err := client.TokenBalances(context.Background(), "0x01", nil)
	require.NoError(t, err)
	assert.Empty(t, readings)
}
