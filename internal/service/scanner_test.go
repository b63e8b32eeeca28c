package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"molt-core/internal/client"
	"molt-core/pkg/cache"
)

type fakeLister struct {
	tokens []client.TokenInfo
	err    error
	calls  int
}

func (f *fakeLister) TokenList(ctx context.Context, address string) ([]client.TokenInfo, error) {
	f.calls++
	return f.tokens, f.err
}

type fakePrices struct {
	prices map[string]float64
	err    error
}

func (f *fakePrices) Prices(ctx context.Context, addresses []string) (map[string]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

var (
	scanToken1 = common.HexToAddress("0xaaa1111111111111111111111111111111111111")
	scanToken2 = common.HexToAddress("0xbbb2222222222222222222222222222222222222")
	scanNFT    = common.HexToAddress("0xccc3333333333333333333333333333333333333")
)

func TestScan_VerifiesOnChain(t *testing.T) {
	reader := newFakeReader()
	// token1 链上有余额; token2 索引器声称有但链上为零; NFT 直接被类型过滤
	reader.balances[scanToken1] = big.NewInt(1_500_000) // 1.5 @ 6 decimals

	lister := &fakeLister{tokens: []client.TokenInfo{
		{ContractAddress: scanToken1.Hex(), Name: "Token One", Symbol: "ONE", Decimals: "6", Type: "ERC-20"},
		{ContractAddress: scanToken2.Hex(), Name: "Token Two", Symbol: "TWO", Decimals: "18", Type: "ERC-20"},
		{ContractAddress: scanNFT.Hex(), Name: "Some NFT", Symbol: "NFT", Decimals: "0", Type: "ERC-721"},
	}}
	prices := &fakePrices{prices: map[string]float64{
		strings.ToLower(scanToken1.Hex()): 0.42,
	}}

	s := NewScanner(reader, lister, prices, nil, 0)
	result, err := s.Scan(context.Background(), testHolder.Hex())
	require.NoError(t, err)

	require.Len(t, result, 1)
	got := result[0]
	assert.Equal(t, strings.ToLower(scanToken1.Hex()), got.Address)
	assert.Equal(t, "ONE", got.Symbol)
	assert.Equal(t, "1500000", got.RawBalance.String())
	assert.Equal(t, "1.5", got.Balance)
	require.NotNil(t, got.USDPrice)
	assert.Equal(t, 0.42, *got.USDPrice)
}

func TestScan_PriceDegradation(t *testing.T) {
	reader := newFakeReader()
	reader.balances[scanToken1] = big.NewInt(100)

	lister := &fakeLister{tokens: []client.TokenInfo{
		{ContractAddress: scanToken1.Hex(), Name: "Token One", Symbol: "ONE", Decimals: "2", Type: "ERC-20"},
	}}
	prices := &fakePrices{err: fmt.Errorf("price api down")}

	// 价格失败只丢价格, 不丢余额
	s := NewScanner(reader, lister, prices, nil, 0)
	result, err := s.Scan(context.Background(), testHolder.Hex())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Nil(t, result[0].USDPrice)
	assert.Equal(t, "1", result[0].Balance)
}

func TestScan_BadDecimalsFallback(t *testing.T) {
	reader := newFakeReader()
	reader.balances[scanToken1] = big.NewInt(1)

	lister := &fakeLister{tokens: []client.TokenInfo{
		{ContractAddress: scanToken1.Hex(), Symbol: "ONE", Decimals: "not-a-number", Type: "ERC-20"},
	}}

	s := NewScanner(reader, lister, &fakePrices{}, nil, 0)
	result, err := s.Scan(context.Background(), testHolder.Hex())
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 18, result[0].Decimals)
}

func TestScan_CacheHit(t *testing.T) {
	reader := newFakeReader()
	reader.balances[scanToken1] = big.NewInt(500)

	lister := &fakeLister{tokens: []client.TokenInfo{
		{ContractAddress: scanToken1.Hex(), Symbol: "ONE", Decimals: "2", Type: "ERC-20"},
	}}

	c := cache.NewMemoryCache(time.Minute, time.Minute)
	s := NewScanner(reader, lister, &fakePrices{}, c, 30*time.Second)

	first, err := s.Scan(context.Background(), testHolder.Hex())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, lister.calls)

	// 第二次直接命中缓存, 不再打索引器 (地址大小写不同也命中)
	second, err := s.Scan(context.Background(), strings.ToLower(testHolder.Hex()))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, lister.calls)
}

func TestScan_EmptyWallet(t *testing.T) {
	s := NewScanner(newFakeReader(), &fakeLister{}, &fakePrices{}, nil, 0)
	result, err := s.Scan(context.Background(), testHolder.Hex())
	require.NoError(t, err)
	assert.Empty(t, result)
}
