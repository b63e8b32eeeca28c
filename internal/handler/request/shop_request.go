package request

// PurchaseRequest 订阅购买入参
type PurchaseRequest struct {
	FID    int64  `json:"fid" binding:"required,gt=0"`
	TxHash string `json:"txHash" binding:"required"`
	Plan   string `json:"plan" binding:"required,oneof=subscription trial"`
}
