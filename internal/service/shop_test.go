package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"molt-core/internal/chain"
	"molt-core/internal/model"
	"molt-core/pkg/errno"
)

func newTestShop(db *gorm.DB, reader chain.Reader) *Shop {
	return NewShop(db, reader, ShopConfig{
		PlatformWallet:       testPlatform,
		PriceSubscriptionWei: big.NewInt(2_000_000_000_000_000),
		PriceTrialWei:        big.NewInt(200_000_000_000_000),
	})
}

func TestPurchase_NewSubscription(t *testing.T) {
	db := newTestDB(t)
	reader := newFakeReader()
	reader.addTx(testHash, testPlatform, big.NewInt(2_000_000_000_000_000))

	s := newTestShop(db, reader)
	end, err := s.Purchase(context.Background(), 42, testHash.Hex(), PlanSubscription)
	require.NoError(t, err)

	// 新订阅从现在起 +1 个月
	wantEnd := time.Now().AddDate(0, 1, 0)
	assert.WithinDuration(t, wantEnd, end, 5*time.Second)

	var user model.User
	require.NoError(t, db.First(&user, "fid = ?", 42).Error)
	assert.Equal(t, "active", user.Metadata.SubscriptionStatus)
	assert.Equal(t, PlanSubscription, user.Metadata.SubscriptionPlan)
	assert.Equal(t, normalizeHash(testHash.Hex()), user.Metadata.LastPaymentHash)
}

func TestPurchase_ExtendsFromCurrentEnd(t *testing.T) {
	db := newTestDB(t)
	currentEnd := time.Now().Add(10 * 24 * time.Hour)
	seedSubscriber(t, db, 42, currentEnd)

	reader := newFakeReader()
	reader.addTx(testHash, testPlatform, big.NewInt(2_000_000_000_000_000))

	s := newTestShop(db, reader)
	end, err := s.Purchase(context.Background(), 42, testHash.Hex(), PlanSubscription)
	require.NoError(t, err)

	// 未到期的订阅在原到期时间上顺延, 不吃掉剩余天数
	assert.WithinDuration(t, currentEnd.AddDate(0, 1, 0), end, 5*time.Second)
}

func TestPurchase_TrialDoesNotStack(t *testing.T) {
	db := newTestDB(t)
	currentEnd := time.Now().Add(10 * 24 * time.Hour)
	seedSubscriber(t, db, 42, currentEnd)

	reader := newFakeReader()
	reader.addTx(testHash, testPlatform, big.NewInt(200_000_000_000_000))

	s := newTestShop(db, reader)
	end, err := s.Purchase(context.Background(), 42, testHash.Hex(), PlanTrial)
	require.NoError(t, err)

	// 订阅期内买体验版不改变到期时间
	assert.WithinDuration(t, currentEnd, end, time.Second)
}

func TestPurchase_Rejections(t *testing.T) {
	t.Run("invalid plan", func(t *testing.T) {
		s := newTestShop(newTestDB(t), newFakeReader())
		_, err := s.Purchase(context.Background(), 42, testHash.Hex(), "lifetime")
		assert.ErrorIs(t, err, errno.ErrInvalidPlan)
	})

	t.Run("underpaid", func(t *testing.T) {
		reader := newFakeReader()
		reader.addTx(testHash, testPlatform, big.NewInt(100))
		s := newTestShop(newTestDB(t), reader)
		_, err := s.Purchase(context.Background(), 42, testHash.Hex(), PlanSubscription)
		assert.ErrorIs(t, err, errno.ErrInsufficientPayment)
	})

	t.Run("reverted", func(t *testing.T) {
		reader := newFakeReader()
		reader.addTx(testHash, testPlatform, big.NewInt(2_000_000_000_000_000))
		reader.receipts[testHash].Status = types.ReceiptStatusFailed
		s := newTestShop(newTestDB(t), reader)
		_, err := s.Purchase(context.Background(), 42, testHash.Hex(), PlanSubscription)
		assert.ErrorIs(t, err, errno.ErrTransactionReverted)
	})
}
