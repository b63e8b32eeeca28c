package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/monitor"
	"molt-core/pkg/validator"
)

// ActionHandler 链上操作验证与奖励入账
type ActionHandler struct {
	verifier *service.Verifier
	ledger   *service.Ledger
}

func NewActionHandler(verifier *service.Verifier, ledger *service.Ledger) *ActionHandler {
	return &ActionHandler{verifier: verifier, ledger: ledger}
}

// Verify 验证一笔链上操作并发放 XP
// @Summary 验证链上操作
// @Description 校验 burn/swap 交易凭证, 通过后入账并返回新总积分
// @Tags Action
// @Accept json
// @Produce json
// @Param request body request.VerifyActionRequest true "验证参数"
// @Success 200 {object} response.Response
// @Router /api/v1/actions/verify [post]
func (h *ActionHandler) Verify(c *gin.Context) {
	var req request.VerifyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), service.VerifyInput{
		TxHash:       req.TxHash,
		FID:          req.FID,
		Kind:         service.ActionKind(req.ActionKind),
		TokenAddress: req.TokenAddress,
	})
	if err != nil {
		if monitor.Business != nil {
			monitor.Business.ActionsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		}
		response.Error(c, err)
		return
	}

	// 免费哨兵操作不产生台账记录
	if result.Free {
		if monitor.Business != nil {
			monitor.Business.ActionsVerifiedTotal.WithLabelValues("free").Inc()
		}
		response.Success(c, gin.H{
			"success": true,
			"free":    true,
		})
		return
	}

	newTotal, err := h.ledger.Record(c.Request.Context(),
		req.TxHash, req.FID, result.Token, result.Amount, result.XPAward, result.Kind, decimal.Zero)
	if err != nil {
		response.Error(c, err)
		return
	}

	if monitor.Business != nil {
		monitor.Business.ActionsVerifiedTotal.WithLabelValues(string(result.Kind)).Inc()
	}
	response.Success(c, gin.H{
		"success":    true,
		"xpAwarded":  result.XPAward,
		"newTotalXp": newTotal,
		"token":      result.Token,
	})
}

// rejectReason 把拒绝错误折叠成有限的指标标签集
func rejectReason(err error) string {
	switch {
	case errors.Is(err, errno.ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, errno.ErrTransactionReverted):
		return "reverted"
	case errors.Is(err, errno.ErrNoValidBurn):
		return "no_valid_burn"
	case errors.Is(err, errno.ErrNoValidAction):
		return "no_valid_action"
	case errors.Is(err, errno.ErrChainRead):
		return "chain_read"
	case errors.Is(err, errno.ErrNotSubscriber),
		errors.Is(err, errno.ErrSubscriptionExpired),
		errors.Is(err, errno.ErrDailyFreeLimit):
		return "not_eligible"
	default:
		return "other"
	}
}
