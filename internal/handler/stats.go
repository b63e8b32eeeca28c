package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"molt-core/internal/client"
	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
	"molt-core/pkg/logger"
)

// StatsHandler 排行榜与个人档案
type StatsHandler struct {
	ledger *service.Ledger
	social client.SocialGraph
}

func NewStatsHandler(ledger *service.Ledger, social client.SocialGraph) *StatsHandler {
	return &StatsHandler{ledger: ledger, social: social}
}

// Leaderboard 按 XP 降序的排行榜
// @Summary 排行榜
// @Tags Stats
// @Produce json
// @Param limit query int false "条数, 默认 10"
// @Success 200 {object} response.Response
// @Router /api/v1/leaderboard [get]
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.ledger.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"leaderboard": entries})
}

// Profile 个人档案: 积分/等级/排名/近期记录, 社交信息尽力附加
// @Summary 个人档案
// @Tags Stats
// @Produce json
// @Param fid path int true "Farcaster ID"
// @Success 200 {object} response.Response
// @Router /api/v1/profile/{fid} [get]
func (h *StatsHandler) Profile(c *gin.Context) {
	fid, err := strconv.ParseInt(c.Param("fid"), 10, 64)
	if err != nil || fid <= 0 {
		response.Error(c, errno.ErrBind.WithMessage("invalid fid"))
		return
	}

	profile, err := h.ledger.GetProfile(c.Request.Context(), fid)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 社交档案是展示增强, 拉不到不影响主数据
	var social *client.FarcasterUser
	if h.social != nil {
		social, err = h.social.UserByFID(c.Request.Context(), fid)
		if err != nil {
			logger.Debug("social profile fetch failed", zap.Int64("fid", fid), zap.Error(err))
			social = nil
		}
	}

	response.Success(c, gin.H{
		"profile": profile,
		"social":  social,
	})
}
