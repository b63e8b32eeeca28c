package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TokenInfo Blockscout tokenlist 返回的单个候选持仓
// 索引器数据可能过期, 只能当线索用, 余额必须链上复核
type TokenInfo struct {
	ContractAddress string `json:"contractAddress"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        string `json:"decimals"`
	Type            string `json:"type"` // "ERC-20", "ERC-721", ...
	LogoURL         string `json:"logoUrl"`
}

type tokenListResponse struct {
	Status string      `json:"status"` // "1" = ok
	Result []TokenInfo `json:"result"`
}

// Indexer Blockscout 账户接口客户端
type Indexer struct {
	baseURL string
	client  *http.Client
}

func NewIndexer(baseURL string) *Indexer {
	return &Indexer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// TokenList 查询地址的候选 ERC-20 持仓列表
func (i *Indexer) TokenList(ctx context.Context, address string) ([]TokenInfo, error) {
	endpoint := fmt.Sprintf("%s/api?module=account&action=tokenlist&address=%s",
		i.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indexer request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer status %d", resp.StatusCode)
	}

	var out tokenListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("indexer decode: %w", err)
	}
	if out.Status != "1" {
		// 空地址等情况 Blockscout 返回 status=0, 不算错误
		return nil, nil
	}
	return out.Result, nil
}
