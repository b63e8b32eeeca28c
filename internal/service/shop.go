package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"molt-core/internal/chain"
	"molt-core/internal/model"
	"molt-core/pkg/errno"
	"molt-core/pkg/logger"
)

// 订阅方案
const (
	PlanSubscription = "subscription" // +1 个月
	PlanTrial        = "trial"        // +24 小时
)

// ShopConfig 订阅价格
type ShopConfig struct {
	PlatformWallet       common.Address
	PriceSubscriptionWei *big.Int
	PriceTrialWei        *big.Int
}

// Shop 订阅购买
type Shop struct {
	db     *gorm.DB
	reader chain.Reader
	cfg    ShopConfig
}

func NewShop(db *gorm.DB, reader chain.Reader, cfg ShopConfig) *Shop {
	return &Shop{db: db, reader: reader, cfg: cfg}
}

// Purchase 验证支付并开通/续期订阅, 返回新的到期时间
func (s *Shop) Purchase(ctx context.Context, fid int64, txHash, plan string) (time.Time, error) {
	var price *big.Int
	switch plan {
	case PlanSubscription:
		price = s.cfg.PriceSubscriptionWei
	case PlanTrial:
		price = s.cfg.PriceTrialWei
	default:
		return time.Time{}, errno.ErrInvalidPlan
	}

	if err := s.verifyPayment(ctx, txHash, price); err != nil {
		return time.Time{}, err
	}

	now := time.Now()
	var end time.Time

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 元数据整体读改写
		var user model.User
		if err := tx.First(&user, "fid = ?", fid).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrDatabase
			}
			user = model.User{FID: fid, CreatedAt: now}
		}

		meta := user.Metadata
		// 未到期的订阅在原到期时间上顺延, 体验版不叠加
		base := now
		if meta.SubscriptionEnd != nil && meta.SubscriptionEnd.After(now) {
			if plan == PlanTrial {
				end = *meta.SubscriptionEnd
				return nil
			}
			base = *meta.SubscriptionEnd
		}
		if plan == PlanSubscription {
			end = base.AddDate(0, 1, 0)
		} else {
			end = base.Add(24 * time.Hour)
		}

		meta.SubscriptionStatus = "active"
		meta.SubscriptionPlan = plan
		meta.SubscriptionEnd = &end
		meta.LastPaymentHash = normalizeHash(txHash)

		user.Metadata = meta
		user.LastActive = now
		user.UpdatedAt = now
		if err := tx.Save(&user).Error; err != nil {
			return errno.ErrDatabase
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return end, nil
}

func (s *Shop) verifyPayment(ctx context.Context, txHash string, price *big.Int) error {
	hash := common.HexToHash(txHash)

	receipt, err := s.reader.TransactionReceipt(ctx, hash)
	if err != nil {
		logger.Warn("subscription receipt fetch failed", zap.String("tx", txHash), zap.Error(err))
		return errno.ErrChainRead
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return errno.ErrTransactionReverted
	}

	tx, _, err := s.reader.TransactionByHash(ctx, hash)
	if err != nil {
		return errno.ErrChainRead
	}
	if price != nil && tx.Value().Cmp(price) < 0 {
		return errno.ErrInsufficientPayment
	}
	if tx.To() == nil || *tx.To() != s.cfg.PlatformWallet {
		return errno.ErrInvalidRecipient
	}
	return nil
}
