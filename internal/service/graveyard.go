package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"molt-core/internal/model"
	"molt-core/pkg/errno"
)

// Graveyard 币符号墓地: 社区投票宣告某个币已死
type Graveyard struct {
	db *gorm.DB
}

func NewGraveyard(db *gorm.DB) *Graveyard {
	return &Graveyard{db: db}
}

// Declare 宣告一个币死亡, 重复宣告累加计数
func (g *Graveyard) Declare(ctx context.Context, symbol string, fid int64) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errno.ErrBind
	}
	now := time.Now()

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coin model.Coin
		err := tx.Where("symbol = ?", symbol).First(&coin).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return errno.ErrDatabase
			}
			coin = model.Coin{Symbol: symbol, CreatedAt: now}
		}

		coin.DeathCount++
		coin.Status = "dead"
		coin.LastDeclaredBy = fid
		coin.UpdatedAt = now
		if err := tx.Save(&coin).Error; err != nil {
			return errno.ErrDatabase
		}
		return nil
	})
}

// Top 死亡次数最多的币
func (g *Graveyard) Top(ctx context.Context, limit int) ([]model.Coin, error) {
	if limit <= 0 {
		limit = 10
	}
	var coins []model.Coin
	err := g.db.WithContext(ctx).
		Where("status = ?", "dead").
		Order("death_count DESC").Limit(limit).
		Find(&coins).Error
	if err != nil {
		return nil, errno.ErrDatabase
	}
	return coins, nil
}
