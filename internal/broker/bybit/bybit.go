// Package bybit provides a live account-equity feed for the risk kernel
// backed by the Bybit unified trading account API.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// Config holds the API credentials and environment selection.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // demo trading environment (paper trading)
}

// EquityFeed implements broker.BalanceProvider against the Bybit wallet
// endpoint, reporting total unified-account equity in USD.
type EquityFeed struct {
	httpClient *bybit_api.Client
	demo       bool
	testnet    bool
}

// NewEquityFeed creates a feed for the configured environment.
func NewEquityFeed(cfg Config) *EquityFeed {
	var baseURL string
	if cfg.Demo {
		baseURL = "https://api-demo.bybit.com"
	} else if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	httpClient := bybit_api.NewBybitHttpClient(
		cfg.APIKey,
		cfg.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	return &EquityFeed{
		httpClient: httpClient,
		demo:       cfg.Demo,
		testnet:    cfg.Testnet,
	}
}

// Environment describes which Bybit environment the feed talks to.
func (f *EquityFeed) Environment() string {
	switch {
	case f.demo:
		return "demo"
	case f.testnet:
		return "testnet"
	default:
		return "mainnet"
	}
}

// GetBalance returns the total equity of the unified account.
func (f *EquityFeed) GetBalance(ctx context.Context) (float64, error) {
	params := map[string]interface{}{"accountType": "UNIFIED"}

	result, err := f.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get account wallet: %w", err)
	}

	serverResp, ok := any(result).(*bybit_api.ServerResponse)
	if !ok {
		return 0, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return 0, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	var walletResult struct {
		List []struct {
			TotalEquity string `json:"totalEquity"`
		} `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &walletResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	if len(walletResult.List) == 0 {
		return 0, fmt.Errorf("no account data found")
	}

	equity, err := strconv.ParseFloat(walletResult.List[0].TotalEquity, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse total equity %q: %w", walletResult.List[0].TotalEquity, err)
	}
	return equity, nil
}
