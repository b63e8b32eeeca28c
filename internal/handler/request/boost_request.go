package request

import "github.com/shopspring/decimal"

// BoostCast 帖子快照, 由前端在 preview 后原样带回
type BoostCast struct {
	Hash   string `json:"hash"`
	Text   string `json:"text"`
	Author struct {
		FID      int64  `json:"fid"`
		Username string `json:"username"`
		PfpURL   string `json:"pfp_url"`
	} `json:"author"`
	Embeds []struct {
		URL string `json:"url"`
	} `json:"embeds"`
}

// BoostCoin 推广币的展示信息
type BoostCoin struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// BoostRequest 三种动作共用一个端点, 按 action 分支校验必填字段
//   - preview:    url
//   - boost:      fid + txHash + cast (+duration)
//   - burn_boost: fid + txHash + coin + tokenValueUsd
type BoostRequest struct {
	Action        string          `json:"action" binding:"required,oneof=preview boost burn_boost"`
	URL           string          `json:"url"`
	FID           int64           `json:"fid"`
	TxHash        string          `json:"txHash"`
	Duration      string          `json:"duration" binding:"omitempty,oneof=10m 30m"`
	Cast          *BoostCast      `json:"cast"`
	Coin          *BoostCoin      `json:"coin"`
	TokenValueUsd decimal.Decimal `json:"tokenValueUsd"`
}
