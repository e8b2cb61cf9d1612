package handler

import (
	"net/http"

	"qrcode-platform/internal/model"
	"qrcode-platform/internal/tracking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScanStatsHandler 汇总统计查询
type ScanStatsHandler struct {
	stats  *tracking.Stats
	logger *zap.SugaredLogger
}

func NewScanStatsHandler(stats *tracking.Stats, logger *zap.SugaredLogger) *ScanStatsHandler {
	return &ScanStatsHandler{stats: stats, logger: logger.Named("scan_stats")}
}

// ScanStatsResponse 单个二维码的统计
type ScanStatsResponse struct {
	Stats *model.ScanStats `json:"stats"`
}

// ListScanStatsResponse 店铺统计列表，count 为分页前的总数
type ListScanStatsResponse struct {
	Stats []*model.ScanStats `json:"stats"`
	Count int64              `json:"count"`
}

type listScanStatsQuery struct {
	StoreHash  string `form:"store_hash" binding:"required"`
	Limit      int    `form:"limit,default=10" binding:"min=1,max=100"`
	Offset     int    `form:"offset,default=0" binding:"min=0"`
	TimePeriod string `form:"time_period"`
}

// GetScanStats godoc
// @Summary 获取单个二维码的扫码统计
// @Description 尚无扫码时返回全零统计
// @Tags ScanStats
// @Produce  json
// @Param   qr_code_id  path  string  true  "二维码 id"
// @Success 200 {object} ScanStatsResponse
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /scan-stats/{qr_code_id} [get]
func (h *ScanStatsHandler) GetScanStats(c *gin.Context) {
	id := c.Param("qr_code_id")
	stats, err := h.stats.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("读取扫码统计失败", "qr_code_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "读取扫码统计失败", err)
		return
	}
	if stats == nil {
		stats = model.EmptyScanStats(id, "unknown")
	} else if !storeAllowed(c, stats.StoreHash) {
		return
	}
	c.JSON(http.StatusOK, ScanStatsResponse{Stats: stats})
}

// ListScanStats godoc
// @Summary 店铺扫码统计列表
// @Description 按 total_scans 倒序分页；time_period 只裁剪 daily_scans
// @Tags ScanStats
// @Produce  json
// @Param   store_hash   query  string  true   "店铺标识"
// @Param   limit        query  int     false  "每页数量，默认 10，最大 100"
// @Param   offset       query  int     false  "偏移量"
// @Param   time_period  query  string  false  "7days | 30days | 90days | year"
// @Success 200 {object} ListScanStatsResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /scan-stats [get]
func (h *ScanStatsHandler) ListScanStats(c *gin.Context) {
	var q listScanStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "无效的查询参数", err)
		return
	}
	if !storeAllowed(c, q.StoreHash) {
		return
	}

	rows, count, err := h.stats.ListByStore(c.Request.Context(), q.StoreHash, q.Limit, q.Offset, q.TimePeriod)
	if err != nil {
		h.logger.Errorw("查询店铺扫码统计失败", "store_hash", q.StoreHash, "error", err)
		respondError(c, http.StatusInternalServerError, "查询扫码统计失败", err)
		return
	}
	if rows == nil {
		rows = []*model.ScanStats{}
	}
	c.JSON(http.StatusOK, ListScanStatsResponse{Stats: rows, Count: count})
}
