package request

// VerifyActionRequest 链上操作验证入参
// txHash 可能是哨兵值 FREE_BOOST, 真实性由 service 层裁决
type VerifyActionRequest struct {
	TxHash       string `json:"txHash" binding:"required"`
	FID          int64  `json:"fid" binding:"required,gt=0"`
	ActionKind   string `json:"actionKind" binding:"required,oneof=burn swap"`
	TokenAddress string `json:"tokenAddress"`
}
