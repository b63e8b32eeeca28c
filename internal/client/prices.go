package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"molt-core/pkg/logger"
)

// PriceOracle DefiLlama 现价接口客户端
// 价格是增强信息不是正确性要求: 整个分片失败只会让这批 token 没有价格
type PriceOracle struct {
	baseURL   string
	chunkSize int
	client    *http.Client
}

func NewPriceOracle(baseURL string, chunkSize int) *PriceOracle {
	if chunkSize <= 0 {
		chunkSize = 30
	}
	return &PriceOracle{
		baseURL:   baseURL,
		chunkSize: chunkSize,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type priceResponse struct {
	Coins map[string]struct {
		Price float64 `json:"price"`
	} `json:"coins"`
}

// Prices 批量查询 USD 现价, key 为小写的合约地址
// 按 chunkSize 分片, 主要是为了控制 URL 长度
func (p *PriceOracle) Prices(ctx context.Context, addresses []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(addresses))

	for start := 0; start < len(addresses); start += p.chunkSize {
		end := start + p.chunkSize
		if end > len(addresses) {
			end = len(addresses)
		}
		if err := p.priceChunk(ctx, addresses[start:end], prices); err != nil {
			logger.Warn("price chunk failed, continuing without it", zap.Error(err))
		}
	}
	return prices, nil
}

func (p *PriceOracle) priceChunk(ctx context.Context, addresses []string, out map[string]float64) error {
	keys := make([]string, len(addresses))
	for i, a := range addresses {
		keys[i] = "base:" + a
	}
	endpoint := fmt.Sprintf("%s/prices/current/%s", p.baseURL, strings.Join(keys, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("price status %d", resp.StatusCode)
	}

	var decoded priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("price decode: %w", err)
	}

	// key 形如 "base:0x...", 只保留地址部分
	for key, coin := range decoded.Coins {
		parts := strings.SplitN(key, ":", 2)
		if len(parts) != 2 {
			continue
		}
		out[strings.ToLower(parts[1])] = coin.Price
	}
	return nil
}
