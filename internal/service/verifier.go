package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"molt-core/internal/chain"
	"molt-core/internal/model"
	"molt-core/pkg/errno"
	"molt-core/pkg/logger"
)

// ActionKind 链上操作类别
type ActionKind string

const (
	ActionBurn ActionKind = "burn"
	ActionSwap ActionKind = "swap"
)

// XP 基础奖励: burn 约为 swap 的 3 倍, 订阅用户在发放时翻倍
const (
	xpBurn int64 = 150
	xpSwap int64 = 50
)

// baseSwapRouters Base 上已知 DEX 路由合约
// swap 的证明就是交易直达其中之一, 不做金额解码
var baseSwapRouters = map[common.Address]bool{
	common.HexToAddress("0x6fF5693b99212Da76ad316178A184AB56D299b43"): true, // Uniswap Universal Router
	common.HexToAddress("0x2626664c2603336E57B271c5C0b26F421741e481"): true, // Uniswap SwapRouter02
	common.HexToAddress("0xDef1C0ded9bec7F1a1670819833240f027b25EfF"): true, // 0x Exchange Proxy
}

// VerifyInput 一次验证请求
type VerifyInput struct {
	TxHash       string
	FID          int64
	Kind         ActionKind
	TokenAddress string // 可选: 只认这个合约发出的销毁日志
}

// VerifyResult 验证通过后的结论
type VerifyResult struct {
	Kind    ActionKind
	Free    bool            // 哨兵免费操作, 不产生台账记录
	Token   string          // 被销毁的 token 合约 (burn) 或空
	Amount  decimal.Decimal // raw 单位
	XPAward int64
}

// Verifier 独立验证一笔声称的链上操作
// 输入不可信: 用户有白拿 XP 的动机, 一切以链上回执为准
type Verifier struct {
	db     *gorm.DB
	reader chain.Reader
}

func NewVerifier(db *gorm.DB, reader chain.Reader) *Verifier {
	return &Verifier{db: db, reader: reader}
}

// Verify 验证 txHash 声称的操作并给出奖励结论
// 幂等门在最前面: 已入账的 hash 直接拒绝, 不再碰链,
// 否则重试窗口内同一交易可能被奖励两次
func (v *Verifier) Verify(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	now := time.Now()

	// 哨兵值完全绕过链上验证, 走订阅资格检查
	if in.TxHash == SentinelFreeBoost {
		if err := checkFreeBoost(ctx, v.db, in.FID, now); err != nil {
			return nil, err
		}
		return &VerifyResult{Kind: in.Kind, Free: true, Amount: decimal.Zero}, nil
	}

	// 1. 幂等门 (hash 先规整, 大小写变体不能绕过唯一键)
	in.TxHash = normalizeHash(in.TxHash)
	var count int64
	if err := v.db.WithContext(ctx).Model(&model.BurnRecord{}).
		Where("tx_hash = ?", in.TxHash).Count(&count).Error; err != nil {
		return nil, errno.ErrDatabase
	}
	if count > 0 {
		return nil, errno.ErrAlreadyProcessed
	}

	// 2. 回执。拿不到回执 (节点还没看到这笔交易) 算基础设施失败, 调用方带退避重试
	receipt, err := v.reader.TransactionReceipt(ctx, common.HexToHash(in.TxHash))
	if err != nil {
		logger.Warn("receipt fetch failed", zap.String("tx", in.TxHash), zap.Error(err))
		return nil, errno.ErrChainRead
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, errno.ErrTransactionReverted
	}

	var result *VerifyResult
	switch in.Kind {
	case ActionBurn:
		result, err = v.classifyBurn(ctx, in, receipt)
	case ActionSwap:
		result, err = v.classifySwap(ctx, in)
	default:
		return nil, errno.ErrNoValidAction
	}
	if err != nil {
		return nil, err
	}

	// 3. 发放倍率在这里算, 幂等性完全靠第 1 步挡重入
	active, err := subscriptionActive(ctx, v.db, in.FID, now)
	if err != nil {
		return nil, err
	}
	if active {
		result.XPAward *= 2
	}
	return result, nil
}

// classifyBurn 扫描回执日志找一条打进黑洞地址的转账
// 与目标事件无关的日志解码失败是常态, 静默跳过继续扫
func (v *Verifier) classifyBurn(ctx context.Context, in VerifyInput, receipt *types.Receipt) (*VerifyResult, error) {
	// 交易直接打给黑洞地址 => 原生资产销毁
	tx, _, err := v.reader.TransactionByHash(ctx, common.HexToHash(in.TxHash))
	if err != nil {
		logger.Warn("tx fetch failed", zap.String("tx", in.TxHash), zap.Error(err))
		return nil, errno.ErrChainRead
	}
	if tx.To() != nil && *tx.To() == chain.DeadAddress {
		return &VerifyResult{
			Kind:    ActionBurn,
			Token:   "ETH",
			Amount:  decimal.NewFromBigInt(tx.Value(), 0),
			XPAward: xpBurn,
		}, nil
	}

	var filter *common.Address
	if in.TokenAddress != "" {
		addr := common.HexToAddress(in.TokenAddress)
		filter = &addr
	}

	for _, lg := range receipt.Logs {
		if filter != nil && lg.Address != *filter {
			continue
		}
		ev, err := chain.DecodeTransfer(lg)
		if err != nil {
			continue
		}
		if ev.To == chain.DeadAddress {
			// 第一条命中的日志就是结论
			return &VerifyResult{
				Kind:    ActionBurn,
				Token:   ev.Token.Hex(),
				Amount:  decimal.NewFromBigInt(ev.Value, 0),
				XPAward: xpBurn,
			}, nil
		}
	}
	return nil, errno.ErrNoValidBurn
}

// classifySwap 交易的直接收件人在路由白名单里即算有效
func (v *Verifier) classifySwap(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	tx, _, err := v.reader.TransactionByHash(ctx, common.HexToHash(in.TxHash))
	if err != nil {
		logger.Warn("tx fetch failed", zap.String("tx", in.TxHash), zap.Error(err))
		return nil, errno.ErrChainRead
	}
	if tx.To() == nil || !baseSwapRouters[*tx.To()] {
		return nil, errno.ErrNoValidAction
	}
	return &VerifyResult{
		Kind:    ActionSwap,
		Amount:  decimal.Zero,
		XPAward: xpSwap,
	}, nil
}

// IsRetryable 该错误是否属于可重试的基础设施故障
func IsRetryable(err error) bool {
	return errors.Is(err, errno.ErrChainRead)
}

// normalizeHash 小写规整, 作为幂等键存储前统一形态
func normalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
