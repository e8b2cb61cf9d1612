package handler

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"qrcode-platform/internal/config"
	"qrcode-platform/internal/metrics"
	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"
	"qrcode-platform/internal/useragent"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScanQueue 接收扫码事件的后台队列
type ScanQueue interface {
	Enqueue(ev *model.ScanEvent) bool
}

// TrackHandler 扫码跳转
type TrackHandler struct {
	registry *registry.Registry
	queue    ScanQueue
	cfg      config.Tracking
	logger   *zap.SugaredLogger
}

func NewTrackHandler(reg *registry.Registry, queue ScanQueue, cfg config.Tracking, logger *zap.SugaredLogger) *TrackHandler {
	return &TrackHandler{registry: reg, queue: queue, cfg: cfg, logger: logger.Named("track")}
}

// Track godoc
// @Summary 扫码跳转
// @Description 解析二维码并 307 跳转到目标地址；二维码不存在或已停用时跳转到对应的提示页。扫码记录在响应之后异步写入。
// @Tags Track
// @Param   qr_code_id  path  string  true  "二维码 id"
// @Success 307 "跳转"
// @Router /track/{qr_code_id} [get]
func (h *TrackHandler) Track(c *gin.Context) {
	id := c.Param("qr_code_id")

	res, err := h.registry.Resolve(c.Request.Context(), id)
	if err != nil || res.TargetURL == "" {
		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			h.logger.Errorw("解析二维码失败", "qr_code_id", id, "error", err)
		}
		metrics.Redirects.WithLabelValues(metrics.OutcomeInvalid).Inc()
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.InvalidQRURL)
		return
	}
	if !res.Active() {
		metrics.Redirects.WithLabelValues(metrics.OutcomeInactive).Inc()
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.InactiveQRURL)
		return
	}

	ua := c.Request.UserAgent()
	info := useragent.Classify(ua)
	ev := &model.ScanEvent{
		QRCodeID:   res.ID,
		StoreHash:  res.StoreHash,
		IPAddress:  clientIP(c.Request),
		UserAgent:  ua,
		Referrer:   c.Request.Referer(),
		DeviceType: info.DeviceType,
		Browser:    info.Browser,
		OS:         info.OS,
		Country:    h.country(c.Request),
	}

	metrics.Redirects.WithLabelValues(metrics.OutcomeTarget).Inc()
	c.Redirect(http.StatusTemporaryRedirect, res.TargetURL)

	// 响应已写出，入队失败只影响统计
	h.queue.Enqueue(ev)
}

// country 从 CDN 注入的请求头读取国家代码，XX 表示未知
func (h *TrackHandler) country(r *http.Request) string {
	code := strings.ToUpper(strings.TrimSpace(r.Header.Get(h.cfg.CountryHeader)))
	if code == "" || code == "XX" {
		return ""
	}
	return code
}

// clientIP X-Forwarded-For 的第一个地址，否则取连接对端地址
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
