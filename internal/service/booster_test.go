package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/internal/model"
	"molt-core/internal/service/mq"
	"molt-core/pkg/cache"
	"molt-core/pkg/errno"
)

var testPlatform = common.HexToAddress("0x5555555555555555555555555555555555555555")

func newTestBooster(db *gorm.DB, reader chain.Reader, social client.SocialGraph) *Booster {
	return NewBooster(db, reader, social, nil, BoosterConfig{
		PlatformWallet: testPlatform,
		PriceShortWei:  big.NewInt(500_000_000_000_000),   // 0.0005 ETH
		PriceLongWei:   big.NewInt(1_000_000_000_000_000), // 0.001 ETH
		BurnRatePerUsd: 2,
	})
}

func testCast() *client.Cast {
	return &client.Cast{
		Hash: "0xcast",
		Author: client.CastAuthor{
			FID:      7,
			Username: "alice",
			PfpURL:   "https://pfp.example/alice.png",
		},
		Text:   "gm",
		Embeds: []client.CastEmbed{{URL: "https://img.example/1.png"}},
	}
}

func TestCreateBoost_Paid(t *testing.T) {
	db := newTestDB(t)
	reader := newFakeReader()
	reader.addTx(testHash, testPlatform, big.NewInt(1_000_000_000_000_000))

	b := newTestBooster(db, reader, nil)
	before := time.Now()
	until, err := b.CreateBoost(context.Background(), CreateBoostInput{
		Action:   "boost",
		FID:      42,
		TxHash:   testHash.Hex(),
		Duration: DurationLong,
		Cast:     testCast(),
	})
	require.NoError(t, err)
	assert.InDelta(t, before.Add(30*time.Minute).UnixMilli(), until, 2000)

	var boost model.Boost
	require.NoError(t, db.First(&boost).Error)
	assert.Equal(t, "cast", boost.SubjectType)
	assert.Equal(t, "0xcast", boost.SubjectRef)
	assert.Equal(t, "alice", boost.AuthorName)
	assert.Equal(t, "https://img.example/1.png", boost.Image)

	// 推广事件同事务落 outbox
	var event model.OutboxEvent
	require.NoError(t, db.First(&event).Error)
	assert.Equal(t, mq.TopicBoosts, event.Topic)
	assert.Equal(t, "PENDING", event.Status)
}

func TestCreateBoost_PaymentRejections(t *testing.T) {
	tests := []struct {
		name    string
		to      common.Address
		value   *big.Int
		dur     string
		wantErr error
	}{
		{"below short floor", testPlatform, big.NewInt(100), DurationShort, errno.ErrInsufficientPayment},
		{"short price for long tier", testPlatform, big.NewInt(500_000_000_000_000), DurationLong, errno.ErrInsufficientPayment},
		{"wrong recipient", common.HexToAddress("0x6666666666666666666666666666666666666666"), big.NewInt(1_000_000_000_000_000), DurationLong, errno.ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			reader := newFakeReader()
			reader.addTx(testHash, tt.to, tt.value)

			b := newTestBooster(db, reader, nil)
			_, err := b.CreateBoost(context.Background(), CreateBoostInput{
				Action:   "boost",
				FID:      42,
				TxHash:   testHash.Hex(),
				Duration: tt.dur,
				Cast:     testCast(),
			})
			assert.ErrorIs(t, err, tt.wantErr)

			// 拒绝的请求不留行
			var count int64
			db.Model(&model.Boost{}).Count(&count)
			assert.Zero(t, count)
		})
	}
}

func TestCreateBoost_BurnBoostDuration(t *testing.T) {
	tests := []struct {
		name    string
		usd     decimal.Decimal
		wantDur time.Duration
	}{
		{"5 usd buys 10 minutes", decimal.NewFromInt(5), 10 * time.Minute},
		{"30 usd buys an hour", decimal.NewFromInt(30), 60 * time.Minute},
		{"dust still gets the floor", decimal.NewFromFloat(0.01), time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			reader := newFakeReader()
			reader.addTx(testHash, testToken, big.NewInt(0),
				transferLog(testToken, testHolder, chain.DeadAddress, big.NewInt(1000)))

			b := newTestBooster(db, reader, nil)
			before := time.Now()
			until, err := b.CreateBoost(context.Background(), CreateBoostInput{
				Action: "burn_boost",
				FID:    42,
				TxHash: testHash.Hex(),
				Coin: &CoinSubject{
					Address: testToken.Hex(),
					Symbol:  "MOLT",
					Name:    "Molt Token",
				},
				TokenValueUsd: tt.usd,
			})
			require.NoError(t, err)
			assert.InDelta(t, before.Add(tt.wantDur).UnixMilli(), until, 2000)

			var boost model.Boost
			require.NoError(t, db.First(&boost).Error)
			assert.Equal(t, "coin", boost.SubjectType)
			assert.Equal(t, "MOLT", boost.AuthorName)
		})
	}
}

func TestCreateBoost_BurnBoostWithoutBurn(t *testing.T) {
	db := newTestDB(t)
	reader := newFakeReader()
	// 交易成功但没有任何销毁日志
	reader.addTx(testHash, testToken, big.NewInt(0))

	b := newTestBooster(db, reader, nil)
	_, err := b.CreateBoost(context.Background(), CreateBoostInput{
		Action:        "burn_boost",
		FID:           42,
		TxHash:        testHash.Hex(),
		Coin:          &CoinSubject{Address: testToken.Hex(), Symbol: "MOLT"},
		TokenValueUsd: decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, errno.ErrNoValidBurn)
}

func TestCreateBoost_FreeDaily(t *testing.T) {
	db := newTestDB(t)
	seedSubscriber(t, db, 42, time.Now().Add(time.Hour))

	b := newTestBooster(db, newFakeReader(), nil)
	before := time.Now()
	// 请求 30 分钟档, 免费档强制压到 10 分钟
	until, err := b.CreateBoost(context.Background(), CreateBoostInput{
		Action:   "boost",
		FID:      42,
		TxHash:   SentinelFreeBoost,
		Duration: DurationLong,
		Cast:     testCast(),
	})
	require.NoError(t, err)
	assert.InDelta(t, before.Add(10*time.Minute).UnixMilli(), until, 2000)

	// 每日只有一次
	_, err = b.CreateBoost(context.Background(), CreateBoostInput{
		Action:   "boost",
		FID:      42,
		TxHash:   SentinelFreeBoost,
		Duration: DurationShort,
		Cast:     testCast(),
	})
	assert.ErrorIs(t, err, errno.ErrDailyFreeLimit)

	// 滚动窗口过去后额度恢复
	require.NoError(t, db.Model(&model.Boost{}).
		Where("tx_hash = ?", SentinelFreeBoost).
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)
	_, err = b.CreateBoost(context.Background(), CreateBoostInput{
		Action:   "boost",
		FID:      42,
		TxHash:   SentinelFreeBoost,
		Duration: DurationShort,
		Cast:     testCast(),
	})
	require.NoError(t, err)
}

func TestListActive(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	rows := []model.Boost{
		{FID: 1, SubjectType: "cast", SubjectRef: "a", TxHash: "0x1", BoostedUntil: now.Add(-time.Minute).UnixMilli(), CreatedAt: now},
		{FID: 2, SubjectType: "cast", SubjectRef: "b", TxHash: "0x2", BoostedUntil: now.Add(30 * time.Minute).UnixMilli(), CreatedAt: now},
		{FID: 3, SubjectType: "coin", SubjectRef: "c", TxHash: "0x3", BoostedUntil: now.Add(10 * time.Minute).UnixMilli(), CreatedAt: now},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	b := newTestBooster(db, newFakeReader(), nil)
	active, err := b.ListActive(context.Background())
	require.NoError(t, err)

	// 过期的被过滤, 剩下的按到期时间升序
	require.Len(t, active, 2)
	assert.Equal(t, int64(3), active[0].FID)
	assert.Equal(t, int64(2), active[1].FID)
}

func TestListActive_Cached(t *testing.T) {
	db := newTestDB(t)
	reader := newFakeReader()
	reader.addTx(testHash, testPlatform, big.NewInt(1_000_000_000_000_000))

	c := cache.NewMemoryCache(time.Minute, time.Minute)
	b := NewBooster(db, reader, nil, c, BoosterConfig{
		PlatformWallet: testPlatform,
		PriceShortWei:  big.NewInt(500_000_000_000_000),
		PriceLongWei:   big.NewInt(1_000_000_000_000_000),
		BurnRatePerUsd: 2,
	})

	now := time.Now()
	require.NoError(t, db.Create(&model.Boost{
		FID: 1, SubjectType: "cast", SubjectRef: "a", TxHash: "0x1",
		BoostedUntil: now.Add(30 * time.Minute).UnixMilli(), CreatedAt: now,
	}).Error)

	first, err := b.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 绕开服务直插一行: 短缓存窗口内读不到
	require.NoError(t, db.Create(&model.Boost{
		FID: 2, SubjectType: "cast", SubjectRef: "b", TxHash: "0x2",
		BoostedUntil: now.Add(30 * time.Minute).UnixMilli(), CreatedAt: now,
	}).Error)
	cached, err := b.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// 经服务创建会主动失效缓存, 下一次读全量可见
	_, err = b.CreateBoost(context.Background(), CreateBoostInput{
		Action:   "boost",
		FID:      3,
		TxHash:   testHash.Hex(),
		Duration: DurationLong,
		Cast:     testCast(),
	})
	require.NoError(t, err)

	fresh, err := b.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestPreview(t *testing.T) {
	db := newTestDB(t)
	social := &fakeSocial{casts: map[string]*client.Cast{
		"https://warpcast.com/alice/0xcast": testCast(),
	}}

	b := newTestBooster(db, newFakeReader(), social)

	cast, err := b.Preview(context.Background(), "https://warpcast.com/alice/0xcast")
	require.NoError(t, err)
	assert.Equal(t, "alice", cast.Author.Username)

	_, err = b.Preview(context.Background(), "https://warpcast.com/bob/0xmissing")
	assert.ErrorIs(t, err, errno.ErrCastNotFound)
}
