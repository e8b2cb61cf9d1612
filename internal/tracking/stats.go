package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"qrcode-platform/internal/model"

	"gorm.io/gorm"
)

// 列表查询支持的时间范围
var timePeriods = map[string]int{
	"7days":  7,
	"30days": 30,
	"90days": 90,
	"year":   365,
}

// Stats 读取汇总后的扫码统计
type Stats struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db, now: time.Now}
}

// Get 读取单个二维码的统计，不存在时返回 nil
func (s *Stats) Get(ctx context.Context, qrCodeID string) (*model.ScanStats, error) {
	var result *model.ScanStats
	err := s.readTx(ctx, func(tx *gorm.DB) error {
		var row model.ScanStats
		err := tx.Where("qr_code_id = ?", qrCodeID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rows := []*model.ScanStats{&row}
		if err := loadBuckets(tx, rows); err != nil {
			return err
		}
		result = &row
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("读取扫码统计失败: %w", err)
	}
	return result, nil
}

// ListByStore 按 total_scans 倒序分页，返回当页结果与店铺下统计总条数。
// timePeriod 只裁剪 daily_scans，不影响 total_scans；未知取值不过滤。
func (s *Stats) ListByStore(ctx context.Context, storeHash string, limit, offset int, timePeriod string) ([]*model.ScanStats, int64, error) {
	var (
		rows  []*model.ScanStats
		count int64
	)
	err := s.readTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&model.ScanStats{}).Where("store_hash = ?", storeHash).Count(&count).Error; err != nil {
			return err
		}
		err := tx.Where("store_hash = ?", storeHash).
			Order("total_scans DESC, qr_code_id ASC").
			Limit(limit).Offset(offset).
			Find(&rows).Error
		if err != nil {
			return err
		}
		return loadBuckets(tx, rows)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("查询店铺扫码统计失败: %w", err)
	}

	if days, ok := timePeriods[timePeriod]; ok {
		cutoff := s.now().AddDate(0, 0, -days).Format(DateLayout)
		for _, row := range rows {
			for date := range row.DailyScans {
				if date < cutoff {
					delete(row.DailyScans, date)
				}
			}
		}
	}
	return rows, count, nil
}

// readTx 统计行与分项桶在同一个只读事务中读取
func (s *Stats) readTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{ReadOnly: true})
}

func loadBuckets(tx *gorm.DB, rows []*model.ScanStats) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, 0, len(rows))
	byID := make(map[string]*model.ScanStats, len(rows))
	for _, row := range rows {
		row.EnsureMaps()
		ids = append(ids, row.QRCodeID)
		byID[row.QRCodeID] = row
	}

	var buckets []model.ScanStatBucket
	if err := tx.Where("qr_code_id IN ?", ids).Find(&buckets).Error; err != nil {
		return err
	}
	for _, b := range buckets {
		if row, ok := byID[b.QRCodeID]; ok {
			row.ApplyBucket(b)
		}
	}
	return nil
}
