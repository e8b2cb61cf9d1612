package handler

import (
	"errors"
	"net/http"
	"time"

	"qrcode-platform/internal/analytics"
	"qrcode-platform/internal/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyticsHandler 报表接口
type AnalyticsHandler struct {
	service *analytics.Service
	codes   analytics.CodeLookup
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewAnalyticsHandler(service *analytics.Service, codes analytics.CodeLookup, logger *zap.SugaredLogger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, codes: codes, logger: logger.Named("analytics"), now: time.Now}
}

type windowQuery struct {
	Period string `form:"period"`
	From   *int64 `form:"from_timestamp"`
	To     *int64 `form:"to_timestamp"`
}

type overviewQuery struct {
	StoreHash string `form:"store_hash" binding:"required"`
	Period    string `form:"period"`
	From      *int64 `form:"from_timestamp"`
	To        *int64 `form:"to_timestamp"`
}

// Overview godoc
// @Summary 店铺报表
// @Description 基于扫码事件重新计算指定时间范围内的报表
// @Tags Analytics
// @Produce  json
// @Param   store_hash      query  string  true   "店铺标识"
// @Param   period          query  string  false  "7d | 30d | 90d | custom，默认 7d"
// @Param   from_timestamp  query  int     false  "开始时间（unix 秒）"
// @Param   to_timestamp    query  int     false  "结束时间（unix 秒）"
// @Success 200 {object} analytics.Report
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	var q overviewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "无效的查询参数", err)
		return
	}
	if !storeAllowed(c, q.StoreHash) {
		return
	}
	w, err := analytics.ResolveWindow(q.Period, q.From, q.To, h.now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的时间范围", err)
		return
	}

	report, err := h.service.Overview(c.Request.Context(), q.StoreHash, w)
	if err != nil {
		h.logger.Errorw("生成店铺报表失败", "store_hash", q.StoreHash, "error", err)
		respondError(c, http.StatusInternalServerError, "生成报表失败", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// QRCodeOverview godoc
// @Summary 单个二维码报表
// @Tags Analytics
// @Produce  json
// @Param   qr_code_id      path   string  true   "二维码 id"
// @Param   period          query  string  false  "7d | 30d | 90d | custom，默认 7d"
// @Param   from_timestamp  query  int     false  "开始时间（unix 秒）"
// @Param   to_timestamp    query  int     false  "结束时间（unix 秒）"
// @Success 200 {object} analytics.Report
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 404 {object} map[string]interface{} "二维码不存在"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /analytics/qrcode/{qr_code_id} [get]
func (h *AnalyticsHandler) QRCodeOverview(c *gin.Context) {
	id := c.Param("qr_code_id")
	var q windowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "无效的查询参数", err)
		return
	}
	w, err := analytics.ResolveWindow(q.Period, q.From, q.To, h.now())
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的时间范围", err)
		return
	}

	code, err := h.codes.FindByID(c.Request.Context(), id)
	if errors.Is(err, registry.ErrNotFound) {
		respondError(c, http.StatusNotFound, "二维码不存在", err)
		return
	}
	if err != nil {
		h.logger.Errorw("读取二维码失败", "qr_code_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "读取二维码失败", err)
		return
	}
	if !storeAllowed(c, code.StoreHash) {
		return
	}

	report, err := h.service.OverviewForCode(c.Request.Context(), id, w)
	if errors.Is(err, registry.ErrNotFound) {
		respondError(c, http.StatusNotFound, "二维码不存在", err)
		return
	}
	if err != nil {
		h.logger.Errorw("生成二维码报表失败", "qr_code_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "生成报表失败", err)
		return
	}
	c.JSON(http.StatusOK, report)
}
