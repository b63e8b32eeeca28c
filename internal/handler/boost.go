package handler

import (
	"github.com/gin-gonic/gin"

	"molt-core/internal/client"
	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/validator"
)

// BoostHandler 限时推广位
type BoostHandler struct {
	booster *service.Booster
}

func NewBoostHandler(booster *service.Booster) *BoostHandler {
	return &BoostHandler{booster: booster}
}

// Create 统一入口: preview / boost / burn_boost 三种动作
// @Summary 推广位操作
// @Description 按 action 分支: preview 预览帖子, boost 付费推广, burn_boost 燃烧推广
// @Tags Boost
// @Accept json
// @Produce json
// @Param request body request.BoostRequest true "推广参数"
// @Success 200 {object} response.Response
// @Router /api/v1/boosts [post]
func (h *BoostHandler) Create(c *gin.Context) {
	var req request.BoostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	switch req.Action {
	case "preview":
		h.preview(c, req)
	case "boost":
		h.createPaid(c, req)
	case "burn_boost":
		h.createBurn(c, req)
	}
}

func (h *BoostHandler) preview(c *gin.Context, req request.BoostRequest) {
	if req.URL == "" {
		response.Error(c, errno.ErrBind.WithMessage("url is required for preview"))
		return
	}
	cast, err := h.booster.Preview(c.Request.Context(), req.URL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"cast": cast})
}

func (h *BoostHandler) createPaid(c *gin.Context, req request.BoostRequest) {
	if req.FID <= 0 || req.TxHash == "" || req.Cast == nil {
		response.Error(c, errno.ErrBind.WithMessage("fid, txHash and cast are required for boost"))
		return
	}

	boostedUntil, err := h.booster.CreateBoost(c.Request.Context(), service.CreateBoostInput{
		Action:   "boost",
		FID:      req.FID,
		TxHash:   req.TxHash,
		Duration: req.Duration,
		Cast:     castFromRequest(req.Cast),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "boostedUntil": boostedUntil})
}

func (h *BoostHandler) createBurn(c *gin.Context, req request.BoostRequest) {
	if req.FID <= 0 || req.TxHash == "" || req.Coin == nil {
		response.Error(c, errno.ErrBind.WithMessage("fid, txHash and coin are required for burn_boost"))
		return
	}

	boostedUntil, err := h.booster.CreateBoost(c.Request.Context(), service.CreateBoostInput{
		Action: "burn_boost",
		FID:    req.FID,
		TxHash: req.TxHash,
		Coin: &service.CoinSubject{
			Address: req.Coin.Address,
			Symbol:  req.Coin.Symbol,
			Name:    req.Coin.Name,
			Image:   req.Coin.Image,
		},
		TokenValueUsd: req.TokenValueUsd,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"success": true, "boostedUntil": boostedUntil})
}

// List 当前活跃的推广位
// @Summary 活跃推广位列表
// @Tags Boost
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/boosts [get]
func (h *BoostHandler) List(c *gin.Context) {
	boosts, err := h.booster.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"boosts": boosts})
}

// castFromRequest 前端带回的帖子快照只取入库需要的字段
func castFromRequest(rc *request.BoostCast) *client.Cast {
	cast := &client.Cast{
		Hash: rc.Hash,
		Text: rc.Text,
		Author: client.CastAuthor{
			FID:      rc.Author.FID,
			Username: rc.Author.Username,
			PfpURL:   rc.Author.PfpURL,
		},
	}
	for _, e := range rc.Embeds {
		cast.Embeds = append(cast.Embeds, client.CastEmbed{URL: e.URL})
	}
	return cast
}
