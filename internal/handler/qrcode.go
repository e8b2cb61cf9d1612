package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	testStoreHash = "test-store"
	testTargetURL = "https://example.com"
)

// CodeSource 提供新二维码的 id
type CodeSource interface {
	GetCode(ctx context.Context) (string, error)
}

// QRCodeHandler 二维码管理
type QRCodeHandler struct {
	registry      *registry.Registry
	codes         CodeSource
	publicBaseURL string
	logger        *zap.SugaredLogger
}

func NewQRCodeHandler(reg *registry.Registry, codes CodeSource, publicBaseURL string, logger *zap.SugaredLogger) *QRCodeHandler {
	return &QRCodeHandler{
		registry:      reg,
		codes:         codes,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.Named("qrcode"),
	}
}

// QRCodeView 对外输出的二维码，附带派生的 active 字段
type QRCodeView struct {
	*model.QRCode
	Active bool `json:"active"`
}

func newQRCodeView(code *model.QRCode) QRCodeView {
	return QRCodeView{QRCode: code, Active: code.Active()}
}

// QRCodeResponse 单个二维码及其扫码地址
type QRCodeResponse struct {
	QRCode      QRCodeView `json:"qr_code"`
	TrackingURL string     `json:"tracking_url" example:"http://localhost:8080/track/aB3xY9q"`
}

// ListQRCodesResponse 店铺二维码列表
type ListQRCodesResponse struct {
	QRCodes []QRCodeView `json:"qr_codes"`
	Count   int          `json:"count"`
}

// CreateQRCodeBase 各类二维码共用的字段
type CreateQRCodeBase struct {
	StoreHash  string         `json:"store_hash" binding:"required" example:"abc123"`
	Name       string         `json:"name" binding:"required,max=255" example:"门店海报"`
	Style      *model.QRStyle `json:"style"`
	CampaignID string         `json:"campaign_id"`
}

type CreateProductQRRequest struct {
	CreateQRCodeBase
	ProductID int64 `json:"product_id" binding:"required,gt=0" example:"42"`
	AddToCart bool  `json:"add_to_cart"`
}

type CreateCategoryQRRequest struct {
	CreateQRCodeBase
	CategoryID int64 `json:"category_id" binding:"required,gt=0" example:"7"`
}

type CreateCouponQRRequest struct {
	CreateQRCodeBase
	CouponCode string `json:"coupon_code" binding:"required,max=64" example:"WELCOME10"`
}

type CreateCustomQRRequest struct {
	CreateQRCodeBase
	URL string `json:"url" binding:"required,url" example:"https://shop.example/landing"`
}

type listQRCodesQuery struct {
	Limit  int `form:"limit,default=100" binding:"min=1,max=500"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// UpdateQRCodeRequest 未提供的字段保持不变
type UpdateQRCodeRequest struct {
	Name       *string        `json:"name" binding:"omitempty,min=1,max=255"`
	Style      *model.QRStyle `json:"style"`
	Active     *bool          `json:"active"`
	CampaignID *string        `json:"campaign_id"`
}

// CreateProductQR godoc
// @Summary 创建商品二维码
// @Description add_to_cart 为 true 时扫码直接加入购物车
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body  body  CreateProductQRRequest  true  "商品二维码"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/product [post]
func (h *QRCodeHandler) CreateProductQR(c *gin.Context) {
	var req CreateProductQRRequest
	if !bindJSON(c, &req) {
		return
	}
	h.create(c, req.CreateQRCodeBase, model.ProductDestination{ProductID: req.ProductID, AddToCart: req.AddToCart})
}

// CreateCategoryQR godoc
// @Summary 创建分类二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body  body  CreateCategoryQRRequest  true  "分类二维码"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/category [post]
func (h *QRCodeHandler) CreateCategoryQR(c *gin.Context) {
	var req CreateCategoryQRRequest
	if !bindJSON(c, &req) {
		return
	}
	h.create(c, req.CreateQRCodeBase, model.CategoryDestination{CategoryID: req.CategoryID})
}

// CreateHomepageQR godoc
// @Summary 创建首页二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body  body  CreateQRCodeBase  true  "首页二维码"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/homepage [post]
func (h *QRCodeHandler) CreateHomepageQR(c *gin.Context) {
	var req CreateQRCodeBase
	if !bindJSON(c, &req) {
		return
	}
	h.create(c, req, model.HomepageDestination{})
}

// CreateCouponQR godoc
// @Summary 创建优惠券二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body  body  CreateCouponQRRequest  true  "优惠券二维码"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/coupon [post]
func (h *QRCodeHandler) CreateCouponQR(c *gin.Context) {
	var req CreateCouponQRRequest
	if !bindJSON(c, &req) {
		return
	}
	h.create(c, req.CreateQRCodeBase, model.CouponDestination{Code: req.CouponCode})
}

// CreateCustomQR godoc
// @Summary 创建自定义链接二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   body  body  CreateCustomQRRequest  true  "自定义二维码"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/custom [post]
func (h *QRCodeHandler) CreateCustomQR(c *gin.Context) {
	var req CreateCustomQRRequest
	if !bindJSON(c, &req) {
		return
	}
	if !model.ValidTargetURL(req.URL) {
		respondError(c, http.StatusBadRequest, "目标地址必须是 http(s) 绝对地址", nil)
		return
	}
	h.create(c, req.CreateQRCodeBase, model.CustomDestination{Link: req.URL})
}

// CreateTestQR godoc
// @Summary 创建测试二维码
// @Description 在 test-store 下创建一个指向给定地址的二维码，用于验证扫码链路
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   url  query  string  false  "目标地址，默认 https://example.com"
// @Success 201 {object} QRCodeResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "需要管理员权限"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/test [post]
func (h *QRCodeHandler) CreateTestQR(c *gin.Context) {
	target := c.DefaultQuery("url", testTargetURL)
	if !model.ValidTargetURL(target) {
		respondError(c, http.StatusBadRequest, "目标地址必须是 http(s) 绝对地址", nil)
		return
	}
	base := CreateQRCodeBase{StoreHash: testStoreHash, Name: "Test QR Code"}
	h.create(c, base, model.CustomDestination{Link: target, Test: true})
}

func (h *QRCodeHandler) create(c *gin.Context, base CreateQRCodeBase, dest model.Destination) {
	if !storeAllowed(c, base.StoreHash) {
		return
	}
	ctx := c.Request.Context()

	storeURL, err := h.registry.StoreBaseURL(ctx, base.StoreHash)
	if err != nil {
		h.logger.Errorw("读取店铺地址失败", "store_hash", base.StoreHash, "error", err)
		respondError(c, http.StatusInternalServerError, "读取店铺信息失败", err)
		return
	}

	id, err := h.codes.GetCode(ctx)
	if err != nil {
		h.logger.Errorw("生成二维码 id 失败", "error", err)
		respondError(c, http.StatusInternalServerError, "生成二维码 id 失败", err)
		return
	}

	code := &model.QRCode{
		ID:         id,
		StoreHash:  base.StoreHash,
		Name:       base.Name,
		Style:      model.DefaultStyle(),
		CampaignID: base.CampaignID,
		CreatedBy:  c.GetString("username"),
		Status:     model.QRStatusActive,
	}
	if base.Style != nil {
		code.Style = *base.Style
	}
	code.SetDestination(dest, storeURL)

	if err := h.registry.Create(ctx, code); err != nil {
		h.logger.Errorw("创建二维码失败", "store_hash", base.StoreHash, "error", err)
		respondError(c, http.StatusInternalServerError, "创建二维码失败", err)
		return
	}
	h.logger.Infow("二维码已创建", "qr_code_id", code.ID, "store_hash", code.StoreHash, "type", code.Type)
	c.JSON(http.StatusCreated, QRCodeResponse{QRCode: newQRCodeView(code), TrackingURL: h.trackingURL(code.ID)})
}

// GetQRCode godoc
// @Summary 获取二维码
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "二维码 id"
// @Success 200 {object} QRCodeResponse
// @Failure 404 {object} map[string]interface{} "二维码不存在"
// @Router /qr-codes/{id} [get]
func (h *QRCodeHandler) GetQRCode(c *gin.Context) {
	code, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, QRCodeResponse{QRCode: newQRCodeView(code), TrackingURL: h.trackingURL(code.ID)})
}

// ListQRCodes godoc
// @Summary 店铺二维码列表
// @Description 仅返回 active 状态的二维码，按创建时间倒序
// @Tags QRCode
// @Security ApiKeyAuth
// @Produce  json
// @Param   store_hash  path   string  true   "店铺标识"
// @Param   limit       query  int     false  "每页数量，默认 100，最大 500"
// @Param   offset      query  int     false  "偏移量"
// @Success 200 {object} ListQRCodesResponse
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /qr-codes/list/{store_hash} [get]
func (h *QRCodeHandler) ListQRCodes(c *gin.Context) {
	var q listQRCodesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "无效的查询参数", err)
		return
	}
	storeHash := c.Param("store_hash")
	if !storeAllowed(c, storeHash) {
		return
	}
	codes, err := h.registry.ListByStore(c.Request.Context(), storeHash, q.Limit, q.Offset)
	if err != nil {
		h.logger.Errorw("查询店铺二维码失败", "store_hash", storeHash, "error", err)
		respondError(c, http.StatusInternalServerError, "查询二维码失败", err)
		return
	}
	views := make([]QRCodeView, 0, len(codes))
	for i := range codes {
		views = append(views, newQRCodeView(&codes[i]))
	}
	c.JSON(http.StatusOK, ListQRCodesResponse{QRCodes: views, Count: len(views)})
}

// UpdateQRCode godoc
// @Summary 更新二维码
// @Description 已删除的二维码不能重新启用
// @Tags QRCode
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   id    path  string               true  "二维码 id"
// @Param   body  body  UpdateQRCodeRequest  true  "需要修改的字段"
// @Success 200 {object} QRCodeView
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 404 {object} map[string]interface{} "二维码不存在"
// @Failure 409 {object} map[string]interface{} "二维码已删除"
// @Router /qr-codes/{id} [put]
func (h *QRCodeHandler) UpdateQRCode(c *gin.Context) {
	var req UpdateQRCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	code, ok := h.find(c)
	if !ok {
		return
	}

	if req.Active != nil {
		if code.Status == model.QRStatusDeleted && *req.Active {
			respondError(c, http.StatusConflict, "二维码已删除，不能重新启用", registry.ErrDeleted)
			return
		}
		if code.Status != model.QRStatusDeleted {
			code.Status = model.QRStatusInactive
			if *req.Active {
				code.Status = model.QRStatusActive
			}
		}
	}
	if req.Name != nil {
		code.Name = *req.Name
	}
	if req.Style != nil {
		code.Style = *req.Style
	}
	if req.CampaignID != nil {
		code.CampaignID = *req.CampaignID
	}

	if err := h.registry.Update(c.Request.Context(), code); err != nil {
		h.logger.Errorw("更新二维码失败", "qr_code_id", code.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "更新二维码失败", err)
		return
	}
	c.JSON(http.StatusOK, newQRCodeView(code))
}

// DeleteQRCode godoc
// @Summary 删除二维码
// @Description 逻辑删除：默认停用，hard_delete=true 时标记为 deleted。记录与统计数据都会保留。
// @Tags QRCode
// @Security ApiKeyAuth
// @Param   id           path   string  true   "二维码 id"
// @Param   hard_delete  query  bool    false  "标记为 deleted"
// @Success 204 "删除成功"
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "无权访问"
// @Failure 404 {object} map[string]interface{} "二维码不存在"
// @Router /qr-codes/{id} [delete]
func (h *QRCodeHandler) DeleteQRCode(c *gin.Context) {
	var q struct {
		HardDelete bool `form:"hard_delete"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "无效的查询参数", err)
		return
	}

	code, ok := h.find(c)
	if !ok {
		return
	}
	id := code.ID
	status := model.QRStatusInactive
	if q.HardDelete {
		status = model.QRStatusDeleted
	}

	_, err := h.registry.SetStatus(c.Request.Context(), id, status)
	switch {
	case err == nil, errors.Is(err, registry.ErrDeleted):
		// 已经是 deleted 的二维码再次停用视为成功
		h.logger.Infow("二维码已删除", "qr_code_id", id, "status", status)
		c.Status(http.StatusNoContent)
	case errors.Is(err, registry.ErrNotFound):
		respondError(c, http.StatusNotFound, "二维码不存在", err)
	default:
		h.logger.Errorw("删除二维码失败", "qr_code_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "删除二维码失败", err)
	}
}

func (h *QRCodeHandler) find(c *gin.Context) (*model.QRCode, bool) {
	id := c.Param("id")
	code, err := h.registry.FindByID(c.Request.Context(), id)
	if errors.Is(err, registry.ErrNotFound) {
		respondError(c, http.StatusNotFound, "二维码不存在", err)
		return nil, false
	}
	if err != nil {
		h.logger.Errorw("读取二维码失败", "qr_code_id", id, "error", err)
		respondError(c, http.StatusInternalServerError, "读取二维码失败", err)
		return nil, false
	}
	if !storeAllowed(c, code.StoreHash) {
		return nil, false
	}
	return code, true
}

func (h *QRCodeHandler) trackingURL(id string) string {
	return h.publicBaseURL + "/track/" + id
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求数据", err)
		return false
	}
	return true
}
