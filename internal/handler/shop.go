package handler

import (
	"github.com/gin-gonic/gin"

	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/validator"
)

// ShopHandler 订阅购买
type ShopHandler struct {
	shop *service.Shop
}

func NewShopHandler(shop *service.Shop) *ShopHandler {
	return &ShopHandler{shop: shop}
}

// Purchase 验证支付并开通/续期订阅
// @Summary 购买订阅
// @Tags Shop
// @Accept json
// @Produce json
// @Param request body request.PurchaseRequest true "购买参数"
// @Success 200 {object} response.Response
// @Router /api/v1/shop/purchase [post]
func (h *ShopHandler) Purchase(c *gin.Context) {
	var req request.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	end, err := h.shop.Purchase(c.Request.Context(), req.FID, req.TxHash, req.Plan)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"success":         true,
		"plan":            req.Plan,
		"subscriptionEnd": end.UnixMilli(),
	})
}
