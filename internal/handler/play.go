package handler

import (
	"github.com/gin-gonic/gin"

	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/validator"
)

// PlayHandler 每日小游戏
type PlayHandler struct {
	arcade *service.Arcade
}

func NewPlayHandler(arcade *service.Arcade) *PlayHandler {
	return &PlayHandler{arcade: arcade}
}

// Play 每日小游戏统一入口, game 分支: spin / quiz
// @Summary 每日小游戏
// @Tags Play
// @Accept json
// @Produce json
// @Param request body request.PlayRequest true "参数"
// @Success 200 {object} response.Response
// @Router /api/v1/play [post]
func (h *PlayHandler) Play(c *gin.Context) {
	var req request.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	switch req.Game {
	case "spin":
		result, err := h.arcade.Spin(c.Request.Context(), req.FID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	case "quiz":
		result, err := h.arcade.Quiz(c.Request.Context(), req.FID, req.Answers)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	}
}
