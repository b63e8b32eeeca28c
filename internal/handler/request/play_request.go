package request

// PlayRequest 每日小游戏入参, game 区分玩法
type PlayRequest struct {
	FID     int64    `json:"fid" binding:"required,gt=0"`
	Game    string   `json:"game" binding:"required,oneof=spin quiz"`
	Answers []string `json:"answers"` // 仅 game=quiz
}
