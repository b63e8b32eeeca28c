package handler

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"molt-core/internal/handler/response"
	"molt-core/internal/service"
	"molt-core/pkg/errno"
)

// ScanHandler 钱包持仓扫描
type ScanHandler struct {
	scanner *service.Scanner
}

func NewScanHandler(scanner *service.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Scan 扫描一个地址的可燃烧持仓
// @Summary 扫描钱包持仓
// @Description 索引器发现 + 链上余额复核 + USD 定价
// @Tags Scan
// @Produce json
// @Param address query string true "钱包地址"
// @Success 200 {object} response.Response
// @Router /api/v1/scan [get]
func (h *ScanHandler) Scan(c *gin.Context) {
	address := c.Query("address")
	if !common.IsHexAddress(address) {
		response.Error(c, errno.ErrBind.WithMessage("invalid wallet address"))
		return
	}

	tokens, err := h.scanner.Scan(c.Request.Context(), address)
	if err != nil {
		response.Error(c, errno.ErrUpstreamFailed)
		return
	}
	response.Success(c, gin.H{
		"address": address,
		"count":   len(tokens),
		"tokens":  tokens,
	})
}
