package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"molt-core/internal/model"
	"molt-core/pkg/errno"
)

// SentinelFreeBoost 订阅用户每日免费操作的哨兵值, 不是真实交易哈希
const SentinelFreeBoost = "FREE_BOOST"

const freeBoostWindow = 24 * time.Hour

// checkFreeBoost 校验哨兵操作的资格:
// 1. 订阅状态 active 且未过期
// 2. 过去 24 小时内没用过免费额度 (以 boosts 表里的哨兵行为准)
// 验证路径和推广路径各自独立调用, 因为二者是不同的入口
func checkFreeBoost(ctx context.Context, db *gorm.DB, fid int64, now time.Time) error {
	var user model.User
	if err := db.WithContext(ctx).First(&user, "fid = ?", fid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errno.ErrNotSubscriber
		}
		return errno.ErrDatabase
	}

	meta := user.Metadata
	if meta.SubscriptionStatus != "active" {
		return errno.ErrNotSubscriber
	}
	if meta.SubscriptionEnd == nil || !meta.SubscriptionEnd.After(now) {
		return errno.ErrSubscriptionExpired
	}

	cutoff := now.Add(-freeBoostWindow)
	var count int64
	err := db.WithContext(ctx).Model(&model.Boost{}).
		Where("fid = ? AND tx_hash = ? AND created_at > ?", fid, SentinelFreeBoost, cutoff).
		Count(&count).Error
	if err != nil {
		return errno.ErrDatabase
	}
	if count > 0 {
		return errno.ErrDailyFreeLimit
	}
	return nil
}

// subscriptionActive 用户订阅是否有效, 用户不存在视为无订阅
// 其余数据库错误必须上抛: 吞掉会让付费用户静默拿到错误的倍率
func subscriptionActive(ctx context.Context, db *gorm.DB, fid int64, now time.Time) (bool, error) {
	var user model.User
	if err := db.WithContext(ctx).First(&user, "fid = ?", fid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, errno.ErrDatabase
	}
	return user.Metadata.SubscriptionActive(now), nil
}
