package registry

import (
	"context"
	"errors"
	"fmt"
	"qrcode-platform/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreBaseURL 店铺前台地址，未登记的店铺使用 BigCommerce 默认域名
func (r *Registry) StoreBaseURL(ctx context.Context, storeHash string) (string, error) {
	var store model.Store
	err := r.db.WithContext(ctx).Where("store_hash = ?", storeHash).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultStoreURL(storeHash), nil
	}
	if err != nil {
		return "", fmt.Errorf("查询店铺 %s 失败: %w", storeHash, err)
	}
	return store.BaseURL(), nil
}

// UpsertStore 新增或覆盖店铺信息
func (r *Registry) UpsertStore(ctx context.Context, store *model.Store) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_name", "domain", "store_url", "active", "updated_at"}),
	}).Create(store).Error
	if err != nil {
		return fmt.Errorf("保存店铺 %s 失败: %w", store.StoreHash, err)
	}
	return nil
}
