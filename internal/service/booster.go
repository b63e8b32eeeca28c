package service

import (
	"context"
	"encoding/json"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/internal/model"
	"molt-core/internal/service/mq"
	"molt-core/pkg/cache"
	"molt-core/pkg/errno"
	"molt-core/pkg/logger"
	"molt-core/pkg/monitor"
)

// 推广时长档位
const (
	DurationShort = "10m"
	DurationLong  = "30m"

	boostShort = 10 * time.Minute
	boostLong  = 30 * time.Minute
)

// 活跃列表是首页热路径, 短缓存扛读; 写入时主动失效
const (
	activeBoostsKey = "boosts:active"
	activeBoostsTTL = 15 * time.Second
)

// BoosterConfig 价格与兑换率参数
type BoosterConfig struct {
	PlatformWallet common.Address
	PriceShortWei  *big.Int // 10 分钟档价格下限
	PriceLongWei   *big.Int // 30 分钟档价格下限
	BurnRatePerUsd int      // 每燃烧 1 USD 兑换的推广分钟数
}

// CoinSubject 推广一个币时的展示快照
type CoinSubject struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// CreateBoostInput 创建推广位的入参 (handler 已按 action 分支校验过必填字段)
type CreateBoostInput struct {
	Action        string // "boost" | "burn_boost"
	FID           int64
	TxHash        string
	Duration      string // "10m" | "30m", 仅 action=boost
	Cast          *client.Cast
	Coin          *CoinSubject
	TokenValueUsd decimal.Decimal // 仅 action=burn_boost
}

// Booster 限时推广位调度
type Booster struct {
	db     *gorm.DB
	reader chain.Reader
	social client.SocialGraph
	cache  cache.Cache
	cfg    BoosterConfig
}

func NewBooster(db *gorm.DB, reader chain.Reader, social client.SocialGraph, c cache.Cache, cfg BoosterConfig) *Booster {
	if cfg.BurnRatePerUsd <= 0 {
		cfg.BurnRatePerUsd = 2
	}
	return &Booster{db: db, reader: reader, social: social, cache: c, cfg: cfg}
}

// Preview 拉取帖子内容供前端确认, 不落库
func (b *Booster) Preview(ctx context.Context, castURL string) (*client.Cast, error) {
	cast, err := b.social.CastByURL(ctx, castURL)
	if err != nil {
		logger.Warn("cast preview failed", zap.String("url", castURL), zap.Error(err))
		return nil, errno.ErrCastNotFound
	}
	return cast, nil
}

// CreateBoost 校验支付凭证并创建推广位, 返回到期时刻 (ms epoch)
func (b *Booster) CreateBoost(ctx context.Context, in CreateBoostInput) (int64, error) {
	now := time.Now()

	duration, err := b.resolveDuration(in)
	if err != nil {
		return 0, err
	}

	// 支付凭证: 哨兵走订阅资格 (含每日限额, 此处独立复查), 否则验链上支付
	if in.TxHash == SentinelFreeBoost {
		if err := checkFreeBoost(ctx, b.db, in.FID, now); err != nil {
			return 0, err
		}
		// 免费档强制最短时长
		duration = boostShort
	} else {
		if err := b.verifyPayment(ctx, in); err != nil {
			return 0, err
		}
	}

	boostedUntil := now.Add(duration).UnixMilli()
	boost := model.Boost{
		FID:          in.FID,
		BoostedUntil: boostedUntil,
		TxHash:       in.TxHash,
		CreatedAt:    now,
	}
	b.snapshotSubject(&boost, in)

	err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&boost).Error; err != nil {
			return errno.ErrDatabase
		}

		payload, _ := json.Marshal(boost)
		event := model.OutboxEvent{
			Topic:     mq.TopicBoosts,
			Key:       strconv.FormatInt(in.FID, 10),
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

	// 新推广位要立刻可见, 不等缓存自然过期
	if b.cache != nil {
		if err := b.cache.Delete(ctx, activeBoostsKey); err != nil {
			logger.Debug("active boosts cache invalidation failed", zap.Error(err))
		}
	}

	if monitor.Business != nil {
		monitor.Business.BoostsCreatedTotal.WithLabelValues(in.Action).Inc()
	}
	return boostedUntil, nil
}

// resolveDuration 档位时长或者燃烧价值换算的时长
// burn_boost: 每 USD 兑 BurnRatePerUsd 分钟, 下限 1 分钟, 上限未设 (产品待定)
func (b *Booster) resolveDuration(in CreateBoostInput) (time.Duration, error) {
	if in.Action == "burn_boost" {
		minutes := in.TokenValueUsd.Mul(decimal.NewFromInt(int64(b.cfg.BurnRatePerUsd)))
		if minutes.LessThan(decimal.NewFromInt(1)) {
			minutes = decimal.NewFromInt(1)
		}
		return time.Duration(minutes.InexactFloat64() * float64(time.Minute)), nil
	}

	if in.Duration == DurationShort {
		return boostShort, nil
	}
	return boostLong, nil
}

// verifyPayment 校验链上支付/燃烧凭证
// 付费档: 未回滚 + 金额达到档位下限 + 收款人是平台地址
// burn_boost: 未回滚 + 交易里确实有打进黑洞地址的转账
func (b *Booster) verifyPayment(ctx context.Context, in CreateBoostInput) error {
	txHash := common.HexToHash(in.TxHash)

	receipt, err := b.reader.TransactionReceipt(ctx, txHash)
	if err != nil {
		logger.Warn("payment receipt fetch failed", zap.String("tx", in.TxHash), zap.Error(err))
		return errno.ErrChainRead
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return errno.ErrTransactionReverted
	}

	if in.Action == "burn_boost" {
		for _, lg := range receipt.Logs {
			ev, err := chain.DecodeTransfer(lg)
			if err != nil {
				continue
			}
			if ev.To == chain.DeadAddress {
				return nil
			}
		}
		return errno.ErrNoValidBurn
	}

	tx, _, err := b.reader.TransactionByHash(ctx, txHash)
	if err != nil {
		logger.Warn("payment tx fetch failed", zap.String("tx", in.TxHash), zap.Error(err))
		return errno.ErrChainRead
	}

	floor := b.cfg.PriceLongWei
	if in.Duration == DurationShort {
		floor = b.cfg.PriceShortWei
	}
	if floor != nil && tx.Value().Cmp(floor) < 0 {
		return errno.ErrInsufficientPayment
	}
	// common.Address 比较天然大小写无关 (HexToAddress 已规整)
	if tx.To() == nil || *tx.To() != b.cfg.PlatformWallet {
		return errno.ErrInvalidRecipient
	}
	return nil
}

// snapshotSubject 把推广主题冗余进行里
func (b *Booster) snapshotSubject(boost *model.Boost, in CreateBoostInput) {
	if in.Cast != nil {
		boost.SubjectType = "cast"
		boost.SubjectRef = in.Cast.Hash
		boost.AuthorName = in.Cast.Author.Username
		boost.AuthorPfp = in.Cast.Author.PfpURL
		boost.Text = in.Cast.Text
		if len(in.Cast.Embeds) > 0 {
			boost.Image = in.Cast.Embeds[0].URL
		}
		return
	}
	if in.Coin != nil {
		boost.SubjectType = "coin"
		boost.SubjectRef = in.Coin.Address
		boost.AuthorName = in.Coin.Symbol
		boost.Text = in.Coin.Name
		boost.Image = in.Coin.Image
	}
}

// ListActive 当前活跃的推广位, 最先到期的排最前
// 过滤在查询里做: boosted_until > now
func (b *Booster) ListActive(ctx context.Context) ([]model.Boost, error) {
	if b.cache != nil {
		var cached []model.Boost
		if err := b.cache.Get(ctx, activeBoostsKey, &cached); err == nil {
			return cached, nil
		}
	}

	nowMs := time.Now().UnixMilli()
	var boosts []model.Boost
	err := b.db.WithContext(ctx).
		Where("boosted_until > ?", nowMs).
		Order("boosted_until ASC").
		Find(&boosts).Error
	if err != nil {
		return nil, errno.ErrDatabase
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, activeBoostsKey, boosts, activeBoostsTTL); err != nil {
			logger.Debug("active boosts cache set failed", zap.Error(err))
		}
	}
	return boosts, nil
}
