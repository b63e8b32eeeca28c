package request

// AssistantMessage 对话中的一条消息
type AssistantMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

// AssistantRequest 助手对话入参, 前端负责携带历史消息
type AssistantRequest struct {
	Messages []AssistantMessage `json:"messages" binding:"required,min=1,dive"`
}
