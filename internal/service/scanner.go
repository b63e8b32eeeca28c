package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/pkg/cache"
	"molt-core/pkg/logger"
	"molt-core/pkg/monitor"
)

// TokenBalance 一次扫描产出的持仓条目, 不落库, 每次扫描重建
type TokenBalance struct {
	Address    string          `json:"address"`
	Name       string          `json:"name"`
	Symbol     string          `json:"symbol"`
	Decimals   int             `json:"decimals"`
	RawBalance decimal.Decimal `json:"raw_balance"`
	Balance    string          `json:"balance"` // 按精度格式化后的十进制字符串
	USDPrice   *float64        `json:"usd_price,omitempty"`
	Logo       string          `json:"logo,omitempty"`
}

// TokenLister 候选持仓来源 (索引器)
type TokenLister interface {
	TokenList(ctx context.Context, address string) ([]client.TokenInfo, error)
}

// PriceSource USD 价格来源
type PriceSource interface {
	Prices(ctx context.Context, addresses []string) (map[string]float64, error)
}

// Scanner 钱包持仓扫描
// 索引器给的列表只是线索: 余额必须链上复核, 奖励管线不能建立在
// 过期的或者对方恶意上报的数据上
type Scanner struct {
	reader  chain.Reader
	indexer TokenLister
	prices  PriceSource
	cache   cache.Cache
	ttl     time.Duration
}

func NewScanner(reader chain.Reader, indexer TokenLister, prices PriceSource, c cache.Cache, ttl time.Duration) *Scanner {
	return &Scanner{reader: reader, indexer: indexer, prices: prices, cache: c, ttl: ttl}
}

// Scan 发现 + 复核 + 定价, 全程一遍跑完
func (s *Scanner) Scan(ctx context.Context, address string) ([]TokenBalance, error) {
	cacheKey := "scan:" + strings.ToLower(address)
	if s.cache != nil {
		var cached []TokenBalance
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	started := time.Now()
	balances, err := s.scan(ctx, address)
	if err != nil {
		return nil, err
	}

	if monitor.Business != nil {
		monitor.Business.ScanDuration.Observe(time.Since(started).Seconds())
		monitor.Business.ScanTokensFound.Observe(float64(len(balances)))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, balances, s.ttl); err != nil {
			logger.Debug("scan cache set failed", zap.Error(err))
		}
	}
	return balances, nil
}

func (s *Scanner) scan(ctx context.Context, address string) ([]TokenBalance, error) {
	// 1. 发现: 索引器候选列表
	candidates, err := s.indexer.TokenList(ctx, address)
	if err != nil {
		return nil, err
	}

	// 2. 只留 ERC-20
	tokens := make([]client.TokenInfo, 0, len(candidates))
	for _, c := range candidates {
		if c.Type == "ERC-20" && c.ContractAddress != "" {
			tokens = append(tokens, c)
		}
	}
	if len(tokens) == 0 {
		return []TokenBalance{}, nil
	}

	// 3. 链上复核: 一次批量 multicall, 单个失败不影响整批
	addrs := make([]common.Address, len(tokens))
	for i, t := range tokens {
		addrs[i] = common.HexToAddress(t.ContractAddress)
	}
	raws, err := s.reader.BalanceBatch(ctx, common.HexToAddress(address), addrs)
	if err != nil {
		return nil, err
	}

	// 4. 只留复核后严格为正的余额
	verified := make([]TokenBalance, 0, len(tokens))
	for i, t := range tokens {
		raw := raws[i]
		if raw == nil || raw.Sign() <= 0 {
			continue
		}
		dec, err := strconv.Atoi(t.Decimals)
		if err != nil {
			dec = 18
		}
		rawDec := decimal.NewFromBigInt(raw, 0)
		verified = append(verified, TokenBalance{
			Address:    strings.ToLower(t.ContractAddress),
			Name:       t.Name,
			Symbol:     t.Symbol,
			Decimals:   dec,
			RawBalance: rawDec,
			Balance:    rawDec.Shift(int32(-dec)).String(),
			Logo:       t.LogoURL,
		})
	}
	if len(verified) == 0 {
		return verified, nil
	}

	// 5. 定价是增强不是必需, 失败静默降级为无价格
	priceAddrs := make([]string, len(verified))
	for i, v := range verified {
		priceAddrs[i] = v.Address
	}
	prices, err := s.prices.Prices(ctx, priceAddrs)
	if err != nil {
		logger.Warn("price fetch failed, continuing without prices", zap.Error(err))
		return verified, nil
	}
	for i := range verified {
		if p, ok := prices[verified[i].Address]; ok {
			price := p
			verified[i].USDPrice = &price
		}
	}
	return verified, nil
}
