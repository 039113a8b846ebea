package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"balance_watcher/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	gocache "github.com/patrickmn/go-cache"
)

// EVMClient implements the port.BlockchainClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	netDef         entity.NetworkDefinition
	url            string
	rpcCallTimeout time.Duration
	metaCache      *gocache.Cache // shared across clients, keyed chainID:contract
}

// ERC20 ABI minimal part for balanceOf, decimals and symbol.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

var (
	parsedERC20ABI  abi.ABI
	parsedERC20Once sync.Once
	erc20MethodID   []byte
)

func initParsedERC20ABI() {
	parsedERC20Once.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			// This is a critical error during initialization, panic is appropriate
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		balanceOfMethod, ok := parsedERC20ABI.Methods["balanceOf"]
		if !ok {
			panic("balanceOf method not found in parsed ERC20 ABI")
		}
		erc20MethodID = balanceOfMethod.ID
	})
}

// tokenMetadata is the lazily resolved on-chain metadata for one token contract.
type tokenMetadata struct {
	Decimals uint8
	Symbol   string
}

func newEVMClient(ethClient *ethclient.Client, netDef entity.NetworkDefinition, url string, rpcCallTimeout time.Duration, metaCache *gocache.Cache) *EVMClient {
	initParsedERC20ABI()
	return &EVMClient{
		ethClient:      ethClient,
		netDef:         netDef,
		url:            url,
		rpcCallTimeout: rpcCallTimeout,
		metaCache:      metaCache,
	}
}

// NativeBalance fetches the native currency balance for a wallet.
func (c *EVMClient) NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("native balance fetch failed on %s: %w", c.netDef.Name, err)
	}
	return balance, nil
}

// TokenBalances fetches balances for the given symbol -> contract mapping using
// a single JSON-RPC batch request. Per-token failures are captured inside the
// returned readings; the error return covers only total batch failure.
func (c *EVMClient) TokenBalances(ctx context.Context, walletAddress string, tokens map[string]string) (map[string]entity.TokenReading, error) {
	readings := make(map[string]entity.TokenReading, len(tokens))
	if len(tokens) == 0 {
		return readings, nil
	}

	type pending struct {
		symbol   string
		contract string
		meta     tokenMetadata
	}
	var toRead []pending

	for symbol, contract := range tokens {
		meta, err := c.tokenMeta(ctx, contract, symbol)
		if err != nil {
			readings[symbol] = entity.TokenReading{Symbol: symbol, Err: err}
			continue
		}
		toRead = append(toRead, pending{symbol: symbol, contract: contract, meta: meta})
	}

	if len(toRead) == 0 {
		return readings, nil
	}

	batchElems := make([]rpc.BatchElem, len(toRead))
	for i, p := range toRead {
		paddedWalletAddress := common.LeftPadBytes(common.HexToAddress(walletAddress).Bytes(), 32)
		callData := append(append([]byte{}, erc20MethodID...), paddedWalletAddress...)
		callArgs := map[string]interface{}{
			"to":   common.HexToAddress(p.contract),
			"data": hexutil.Bytes(callData),
		}
		batchElems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callArgs, "latest"},
			Result: new(hexutil.Bytes),
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.ethClient.Client().BatchCallContext(callCtx, batchElems); err != nil {
		// Batch transport failed wholesale: every pending token gets a marker.
		for _, p := range toRead {
			readings[p.symbol] = entity.TokenReading{Symbol: p.symbol, Err: fmt.Errorf("RPC batch call failed: %w", err)}
		}
		return readings, fmt.Errorf("RPC batch call failed on %s: %w", c.netDef.Name, err)
	}

	for i, p := range toRead {
		readings[p.symbol] = c.decodeTokenBalance(p.symbol, p.meta, batchElems[i])
	}
	return readings, nil
}

func (c *EVMClient) decodeTokenBalance(symbol string, meta tokenMetadata, elem rpc.BatchElem) entity.TokenReading {
	if elem.Error != nil {
		return entity.TokenReading{Symbol: symbol, Err: fmt.Errorf("failed to fetch balance of %s: %w", symbol, elem.Error)}
	}
	result, ok := elem.Result.(*hexutil.Bytes)
	if !ok || result == nil {
		return entity.TokenReading{Symbol: symbol, Err: fmt.Errorf("failed to decode balance of %s: unexpected result type", symbol)}
	}
	if len(*result) == 0 {
		return entity.TokenReading{Symbol: symbol, Raw: big.NewInt(0), Decimals: meta.Decimals}
	}

	unpacked, err := parsedERC20ABI.Unpack("balanceOf", *result)
	if err != nil {
		return entity.TokenReading{Symbol: symbol, Err: fmt.Errorf("failed to unpack balanceOf result for %s: %w", symbol, err)}
	}
	if len(unpacked) == 0 {
		return entity.TokenReading{Symbol: symbol, Err: fmt.Errorf("balanceOf unpack returned no data for %s", symbol)}
	}
	balance, ok := unpacked[0].(*big.Int)
	if !ok {
		return entity.TokenReading{Symbol: symbol, Err: fmt.Errorf("failed to assert balanceOf result to *big.Int for %s, got %T", symbol, unpacked[0])}
	}
	return entity.TokenReading{Symbol: symbol, Raw: balance, Decimals: meta.Decimals}
}

// tokenMeta resolves decimals and symbol for a token contract, fetching once
// per network+contract and reusing the shared cache thereafter.
func (c *EVMClient) tokenMeta(ctx context.Context, contract, configuredSymbol string) (tokenMetadata, error) {
	key := fmt.Sprintf("%d:%s", c.netDef.ChainID, strings.ToLower(contract))
	if cached, found := c.metaCache.Get(key); found {
		if meta, ok := cached.(tokenMetadata); ok {
			return meta, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	contractAddr := common.HexToAddress(contract)

	decimals, err := c.callUint8(callCtx, contractAddr, "decimals")
	if err != nil {
		return tokenMetadata{}, fmt.Errorf("failed to resolve decimals for %s on %s: %w", configuredSymbol, c.netDef.Name, err)
	}

	meta := tokenMetadata{Decimals: decimals, Symbol: configuredSymbol}
	// symbol() is informational only; some tokens return bytes32 and fail to
	// unpack as string, in which case the configured symbol stands.
	if onchainSymbol, err := c.callString(callCtx, contractAddr, "symbol"); err == nil && onchainSymbol != "" {
		meta.Symbol = onchainSymbol
	}

	c.metaCache.Set(key, meta, gocache.NoExpiration)
	return meta, nil
}

func (c *EVMClient) callUint8(ctx context.Context, to common.Address, method string) (uint8, error) {
	data, err := parsedERC20ABI.Pack(method)
	if err != nil {
		return 0, err
	}
	res, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return 0, err
	}
	unpacked, err := parsedERC20ABI.Unpack(method, res)
	if err != nil {
		return 0, err
	}
	if len(unpacked) == 0 {
		return 0, fmt.Errorf("%s returned no data", method)
	}
	v, ok := unpacked[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("%s returned %T, expected uint8", method, unpacked[0])
	}
	return v, nil
}

func (c *EVMClient) callString(ctx context.Context, to common.Address, method string) (string, error) {
	data, err := parsedERC20ABI.Pack(method)
	if err != nil {
		return "", err
	}
	res, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return "", err
	}
	unpacked, err := parsedERC20ABI.Unpack(method, res)
	if err != nil {
		return "", err
	}
	if len(unpacked) == 0 {
		return "", fmt.Errorf("%s returned no data", method)
	}
	v, ok := unpacked[0].(string)
	if !ok {
		return "", fmt.Errorf("%s returned %T, expected string", method, unpacked[0])
	}
	return v, nil
}

// EndpointURL returns the RPC URL this client is connected to.
func (c *EVMClient) EndpointURL() string {
	return c.url
}

// Definition returns the network definition for this client.
func (c *EVMClient) Definition() entity.NetworkDefinition {
	return c.netDef
}
