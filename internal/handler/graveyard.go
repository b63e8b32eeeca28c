package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/validator"
)

// GraveyardHandler 币符号墓地
type GraveyardHandler struct {
	graveyard *service.Graveyard
}

func NewGraveyardHandler(graveyard *service.Graveyard) *GraveyardHandler {
	return &GraveyardHandler{graveyard: graveyard}
}

// Declare 宣告一个币死亡
// @Summary 宣告币死亡
// @Tags Graveyard
// @Accept json
// @Produce json
// @Param request body request.DeclareDeadRequest true "参数"
// @Success 200 {object} response.Response
// @Router /api/v1/graveyard [post]
func (h *GraveyardHandler) Declare(c *gin.Context) {
	var req request.DeclareDeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	if err := h.graveyard.Declare(c.Request.Context(), req.Symbol, req.FID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"success": true})
}

// Top 死亡次数最多的币
// @Summary 墓地排行
// @Tags Graveyard
// @Produce json
// @Param limit query int false "条数, 默认 10"
// @Success 200 {object} response.Response
// @Router /api/v1/graveyard [get]
func (h *GraveyardHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	coins, err := h.graveyard.Top(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"coins": coins})
}
