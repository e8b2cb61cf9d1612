package handler

import (
	"net/http"

	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoreHandler 店铺信息
type StoreHandler struct {
	registry *registry.Registry
	logger   *zap.SugaredLogger
}

func NewStoreHandler(reg *registry.Registry, logger *zap.SugaredLogger) *StoreHandler {
	return &StoreHandler{registry: reg, logger: logger.Named("store")}
}

// UpsertStoreRequest 店铺前台地址相关字段
type UpsertStoreRequest struct {
	StoreName string `json:"store_name" example:"示例商店"`
	Domain    string `json:"domain" binding:"omitempty,hostname" example:"shop.example.com"`
	StoreURL  string `json:"store_url" binding:"omitempty,url" example:"https://shop.example.com"`
	Active    *bool  `json:"active"`
}

// UpsertStore godoc
// @Summary 登记或更新店铺
// @Description 新建二维码时用店铺的 domain / store_url 生成目标地址
// @Tags Store
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   store_hash  path  string              true  "店铺标识"
// @Param   body        body  UpsertStoreRequest  true  "店铺信息"
// @Success 200 {object} model.Store
// @Failure 400 {object} map[string]interface{} "请求无效"
// @Failure 403 {object} map[string]interface{} "需要管理员权限"
// @Failure 500 {object} map[string]interface{} "服务器内部错误"
// @Router /stores/{store_hash} [put]
func (h *StoreHandler) UpsertStore(c *gin.Context) {
	var req UpsertStoreRequest
	if !bindJSON(c, &req) {
		return
	}

	store := &model.Store{
		StoreHash: c.Param("store_hash"),
		StoreName: req.StoreName,
		Domain:    req.Domain,
		StoreURL:  req.StoreURL,
		Active:    true,
	}
	if req.Active != nil {
		store.Active = *req.Active
	}

	if err := h.registry.UpsertStore(c.Request.Context(), store); err != nil {
		h.logger.Errorw("保存店铺失败", "store_hash", store.StoreHash, "error", err)
		respondError(c, http.StatusInternalServerError, "保存店铺失败", err)
		return
	}
	c.JSON(http.StatusOK, store)
}
