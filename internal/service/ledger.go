package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"molt-core/internal/model"
	"molt-core/internal/service/mq"
	"molt-core/pkg/errno"
	"molt-core/pkg/monitor"
)

// Ledger 奖励台账
// 记账和用户积分更新在一个数据库事务里完成;
// tx_hash 唯一索引兜底并发, 即使两个请求同时通过了验证, 也只有一个能入账
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// RewardEvent 入账后投递到 MQ 的事件体
type RewardEvent struct {
	TxHash     string `json:"tx_hash"`
	FID        int64  `json:"fid"`
	Token      string `json:"token"`
	Amount     string `json:"amount"`
	XPAwarded  int64  `json:"xp_awarded"`
	NewTotalXP int64  `json:"new_total_xp"`
	Kind       string `json:"kind"`
}

// Record 落一条奖励记录并更新用户积分, 返回新的总 XP
// usdValue 可为零值, 有值时并入用户的分类 USD 累计
func (l *Ledger) Record(ctx context.Context, txHash string, fid int64, token string, amount decimal.Decimal, xp int64, kind ActionKind, usdValue decimal.Decimal) (int64, error) {
	txHash = normalizeHash(txHash)
	now := time.Now()
	var newTotal int64

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := model.BurnRecord{
			TxHash:    txHash,
			FID:       fid,
			Token:     token,
			Amount:    amount,
			XPAwarded: xp,
			CreatedAt: now,
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errno.ErrAlreadyProcessed
			}
			return errno.ErrDatabase
		}

		// 元数据整体读改写: 先读当前值, 只改要改的字段, 回写整个结构
		// 绝不直接写部分字段, 避免覆盖掉并发写入的兄弟字段
		var user model.User
		if err := tx.First(&user, "fid = ?", fid).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrDatabase
			}
			user = model.User{FID: fid, CreatedAt: now}
		}

		user.XP += xp
		user.LastActive = now
		user.UpdatedAt = now
		switch kind {
		case ActionBurn:
			user.Metadata.TotalBurnedUsd = user.Metadata.TotalBurnedUsd.Add(usdValue)
		case ActionSwap:
			user.Metadata.TotalSwappedUsd = user.Metadata.TotalSwappedUsd.Add(usdValue)
		}
		if err := tx.Save(&user).Error; err != nil {
			return errno.ErrDatabase
		}
		newTotal = user.XP

		payload, _ := json.Marshal(RewardEvent{
			TxHash:     txHash,
			FID:        fid,
			Token:      token,
			Amount:     amount.String(),
			XPAwarded:  xp,
			NewTotalXP: newTotal,
			Kind:       string(kind),
		})
		event := model.OutboxEvent{
			Topic:     mq.TopicRewards,
			Key:       strconv.FormatInt(fid, 10),
			Payload:   payload,
			Status:    "PENDING",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&event).Error; err != nil {
			return errno.ErrDatabase
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if monitor.Business != nil {
		monitor.Business.XPAwardedTotal.Add(float64(xp))
	}
	return newTotal, nil
}

// Level XP 等级曲线: floor(sqrt(xp/100)) + 1
// 二次曲线, 前期升级快, 后期每级代价不成比例地高
func Level(xp int64) int64 {
	if xp < 0 {
		return 1
	}
	return int64(math.Sqrt(float64(xp)/100)) + 1
}

// Rank 排名 = 比我 XP 严格更高的用户数 + 1
// 同分用户共享名次, 次序不做保证
func (l *Ledger) Rank(ctx context.Context, fid int64) (int64, error) {
	var user model.User
	if err := l.db.WithContext(ctx).First(&user, "fid = ?", fid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errno.ErrUserNotFound
		}
		return 0, errno.ErrDatabase
	}

	var higher int64
	if err := l.db.WithContext(ctx).Model(&model.User{}).
		Where("xp > ?", user.XP).Count(&higher).Error; err != nil {
		return 0, errno.ErrDatabase
	}
	return higher + 1, nil
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	FID   int64 `json:"fid"`
	XP    int64 `json:"xp"`
	Level int64 `json:"level"`
}

// Leaderboard 按 XP 降序取前 limit 名
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []model.User
	if err := l.db.WithContext(ctx).
		Order("xp DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, errno.ErrDatabase
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{FID: u.FID, XP: u.XP, Level: Level(u.XP)}
	}
	return entries, nil
}

// Profile 个人档案
type Profile struct {
	FID             int64              `json:"fid"`
	XP              int64              `json:"xp"`
	Level           int64              `json:"level"`
	Rank            int64              `json:"rank"`
	TotalBurnedUsd  string             `json:"total_burned_usd"`
	TotalSwappedUsd string             `json:"total_swapped_usd"`
	RecentActivity  []model.BurnRecord `json:"recent_activity"`
}

// GetProfile 聚合用户的积分/等级/排名/近期记录
func (l *Ledger) GetProfile(ctx context.Context, fid int64) (*Profile, error) {
	var user model.User
	if err := l.db.WithContext(ctx).First(&user, "fid = ?", fid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrUserNotFound
		}
		return nil, errno.ErrDatabase
	}

	rank, err := l.Rank(ctx, fid)
	if err != nil {
		return nil, err
	}

	var recent []model.BurnRecord
	if err := l.db.WithContext(ctx).
		Where("fid = ?", fid).
		Order("created_at DESC").Limit(10).
		Find(&recent).Error; err != nil {
		return nil, errno.ErrDatabase
	}

	return &Profile{
		FID:             user.FID,
		XP:              user.XP,
		Level:           Level(user.XP),
		Rank:            rank,
		TotalBurnedUsd:  user.Metadata.TotalBurnedUsd.StringFixed(2),
		TotalSwappedUsd: user.Metadata.TotalSwappedUsd.StringFixed(2),
		RecentActivity:  recent,
	}, nil
}
