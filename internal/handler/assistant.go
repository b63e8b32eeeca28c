package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"molt-core/internal/handler/request"
	"molt-core/internal/handler/response"
	"molt-core/pkg/completion"
	"molt-core/pkg/errno"
	"molt-core/pkg/logger"
	"molt-core/pkg/validator"
)

// systemPrompt 助手人设, 放在每轮对话最前
const systemPrompt = "You are Molty, the in-app assistant of a burn-to-earn game on Base. " +
	"You help users understand burning tokens for XP, boosts, subscriptions and the leaderboard. " +
	"Keep answers short and playful. Never give financial advice."

// AssistantHandler 应用内助手, 多 Provider 故障转移
type AssistantHandler struct {
	chain *completion.Chain
}

func NewAssistantHandler(chain *completion.Chain) *AssistantHandler {
	return &AssistantHandler{chain: chain}
}

// Chat 助手对话
// @Summary 助手对话
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body request.AssistantRequest true "对话消息"
// @Success 200 {object} response.Response
// @Router /api/v1/assistant [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	if h.chain == nil || !h.chain.Available() {
		response.Error(c, errno.ErrUpstreamFailed)
		return
	}

	var req request.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	messages := make([]completion.Message, 0, len(req.Messages)+1)
	messages = append(messages, completion.Message{Role: "system", Content: systemPrompt})
	for _, m := range req.Messages {
		// 前端带来的 system 消息丢弃, 人设只认服务端的
		if m.Role == "system" {
			continue
		}
		messages = append(messages, completion.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := h.chain.Complete(c.Request.Context(), messages)
	if err != nil {
		logger.Warn("assistant completion failed", zap.Error(err))
		response.Error(c, errno.ErrUpstreamFailed)
		return
	}
	response.Success(c, gin.H{"reply": reply})
}
