package request

// DeclareDeadRequest 宣告币死亡入参
type DeclareDeadRequest struct {
	Symbol string `json:"symbol" binding:"required,max=32"`
	FID    int64  `json:"fid" binding:"required,gt=0"`
}
