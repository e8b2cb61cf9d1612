// Package registry 是二维码记录的读写入口，扫码跳转时的解析结果缓存在 Redis。
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"qrcode-platform/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("二维码不存在")
	ErrDeleted  = errors.New("二维码已删除，不能重新启用")
)

const cacheKeyPrefix = "qrcode:"

// Resolution 跳转所需的最小字段集合
type Resolution struct {
	ID        string         `json:"id"`
	StoreHash string         `json:"store_hash"`
	TargetURL string         `json:"target_url"`
	Status    model.QRStatus `json:"status"`
}

// Active 是否可以跳转到目标地址
func (r *Resolution) Active() bool {
	return r.Status == model.QRStatusActive
}

// Registry 二维码注册表
type Registry struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

// New 创建注册表，cache 为 nil 时直接读数据库
func New(db *gorm.DB, cache *redis.Client, cacheTTL time.Duration, logger *zap.SugaredLogger) *Registry {
	return &Registry{db: db, cache: cache, cacheTTL: cacheTTL, logger: logger.Named("registry")}
}

// FindByID 读取完整记录
func (r *Registry) FindByID(ctx context.Context, id string) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询二维码 %s 失败: %w", id, err)
	}
	return &code, nil
}

// Resolve 扫码路径使用，优先读缓存，缓存故障时静默回退数据库
func (r *Registry) Resolve(ctx context.Context, id string) (*Resolution, error) {
	if r.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		raw, err := r.cache.Get(cctx, cacheKeyPrefix+id).Bytes()
		cancel()
		if err == nil {
			var res Resolution
			if json.Unmarshal(raw, &res) == nil {
				return &res, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			r.logger.Warnw("读取二维码缓存失败", "qr_code_id", id, "error", err)
		}
	}

	code, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := resolutionOf(code)
	r.fillCache(ctx, res)
	return res, nil
}

func resolutionOf(code *model.QRCode) *Resolution {
	return &Resolution{ID: code.ID, StoreHash: code.StoreHash, TargetURL: code.TargetURL, Status: code.Status}
}

// Create 保存新记录
func (r *Registry) Create(ctx context.Context, code *model.QRCode) error {
	if code.Status == "" {
		code.Status = model.QRStatusActive
	}
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("保存二维码失败: %w", err)
	}
	return nil
}

// Update 整体保存记录并把新的解析结果写入缓存；scan_count 由 IncrementScanCount 单独维护，这里不覆盖
func (r *Registry) Update(ctx context.Context, code *model.QRCode) error {
	err := r.db.WithContext(ctx).Model(&model.QRCode{ID: code.ID}).
		Select("*").Omit("id", "scan_count", "created_at").
		Updates(code).Error
	if err != nil {
		return fmt.Errorf("更新二维码 %s 失败: %w", code.ID, err)
	}
	r.writeCache(ctx, resolutionOf(code))
	return nil
}

// SetStatus 修改生命周期状态，deleted 为终态
func (r *Registry) SetStatus(ctx context.Context, id string, status model.QRStatus) (*model.QRCode, error) {
	code, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if code.Status == model.QRStatusDeleted && status != model.QRStatusDeleted {
		return nil, ErrDeleted
	}
	code.Status = status
	if err := r.Update(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// IncrementScanCount 原子地给 scan_count 加一，返回受影响行数为 0 时报 ErrNotFound
func (r *Registry) IncrementScanCount(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.QRCode{}).Where("id = ?", id).
		UpdateColumn("scan_count", gorm.Expr("scan_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("更新扫码次数失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByStore 店铺下仍处于 active 状态的二维码，按创建时间倒序分页
func (r *Registry) ListByStore(ctx context.Context, storeHash string, limit, offset int) ([]model.QRCode, error) {
	var codes []model.QRCode
	err := r.db.WithContext(ctx).
		Where("store_hash = ? AND status = ?", storeHash, model.QRStatusActive).
		Order("created_at DESC, id ASC").
		Limit(limit).Offset(offset).
		Find(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("查询店铺二维码失败: %w", err)
	}
	return codes, nil
}

// Names 批量读取显示名称，不存在的 id 不会出现在结果中
func (r *Registry) Names(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []struct {
		ID   string
		Name string
	}
	if err := r.db.WithContext(ctx).Model(&model.QRCode{}).Select("id", "name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询二维码名称失败: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

// Exists 供 id 生成器检查冲突
func (r *Registry) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.QRCode{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// fillCache 只在缓存为空时写入。读库与写缓存之间记录可能已被 Update 修改，
// 此时 Update 写入的新值已在缓存中，旧快照不能覆盖它。
func (r *Registry) fillCache(ctx context.Context, res *Resolution) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := r.cache.SetNX(cctx, cacheKeyPrefix+res.ID, payload, r.cacheTTL).Err(); err != nil {
		r.logger.Warnw("写入二维码缓存失败", "qr_code_id", res.ID, "error", err)
	}
}

// writeCache 覆盖写入；失败时删除旧值，让下一次扫码回源读库
func (r *Registry) writeCache(ctx context.Context, res *Resolution) {
	if r.cache == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		r.invalidate(ctx, res.ID)
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.cache.Set(cctx, cacheKeyPrefix+res.ID, payload, r.cacheTTL).Err(); err != nil {
		r.logger.Warnw("更新二维码缓存失败", "qr_code_id", res.ID, "error", err)
		r.invalidate(ctx, res.ID)
	}
}

func (r *Registry) invalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.cache.Del(cctx, cacheKeyPrefix+id).Err(); err != nil {
		r.logger.Errorw("清理二维码缓存失败，缓存可能在过期前返回旧状态", "qr_code_id", id, "error", err)
	}
}
