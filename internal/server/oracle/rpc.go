package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
)

// RPCClient reads SPL token balances over Solana JSON-RPC
// (getTokenAccountsByOwner filtered by the governance mint).
type RPCClient struct {
	url    string
	mint   string
	client *http.Client
}

func NewRPCClient(url, mintAddress string, client *http.Client) *RPCClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RPCClient{url: url, mint: mintAddress, client: client}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount string `json:"amount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *RPCClient) GetTokenBalance(ctx context.Context, walletAddress string) (int64, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTokenAccountsByOwner",
		Params: []any{
			walletAddress,
			map[string]string{"mint": c.mint},
			map[string]string{"encoding": "jsonParsed"},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: rpc status %d", common.ErrOracleUnavailable, resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrOracleUnavailable, err)
	}
	if out.Error != nil {
		return 0, fmt.Errorf("%w: rpc error %d: %s", common.ErrOracleUnavailable, out.Error.Code, out.Error.Message)
	}

	// A wallet without a token account for the mint simply holds zero.
	var total int64
	for _, v := range out.Result.Value {
		amount, err := strconv.ParseInt(v.Account.Data.Parsed.Info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad amount: %v", common.ErrOracleUnavailable, err)
		}
		total += amount
	}

	return total, nil
}
