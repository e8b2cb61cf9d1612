// Package tracking 负责扫码后的后台工作：写入扫码事件并累加统计。
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qrcode-platform/internal/metrics"
	"qrcode-platform/internal/model"
	"qrcode-platform/internal/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateLayout 日统计桶使用的日期格式（服务器本地时区）
const DateLayout = "2006-01-02"

// ScanCounter 维护二维码记录上的冗余扫码次数
type ScanCounter interface {
	IncrementScanCount(ctx context.Context, id string) error
}

// Aggregator 把单个扫码事件累加到 scan_count 与 scan_stats
type Aggregator struct {
	counter ScanCounter
	db      *gorm.DB
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewAggregator 创建聚合器
func NewAggregator(db *gorm.DB, counter ScanCounter, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		counter: counter,
		db:      db,
		logger:  logger.Named("aggregator"),
		now:     time.Now,
	}
}

// Apply 累加一个事件，所有错误只记录日志不向上返回
func (a *Aggregator) Apply(ctx context.Context, ev *model.ScanEvent) {
	if err := a.apply(ctx, ev); err != nil {
		a.logger.Errorw("更新扫码统计失败",
			"operation", "aggregate",
			"qr_code_id", ev.QRCodeID,
			"store_hash", ev.StoreHash,
			"error", err,
		)
	}
}

func (a *Aggregator) apply(ctx context.Context, ev *model.ScanEvent) error {
	// 计数器与统计行相互独立，计数器失败不影响后续统计
	if err := a.counter.IncrementScanCount(ctx, ev.QRCodeID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			a.logger.Warnw("二维码已不存在，跳过统计", "qr_code_id", ev.QRCodeID, "store_hash", ev.StoreHash)
			return nil
		}
		metrics.TrackFailures.WithLabelValues(metrics.StageScanCount).Inc()
		a.logger.Errorw("更新扫码次数失败",
			"operation", "increment_scan_count",
			"qr_code_id", ev.QRCodeID,
			"store_hash", ev.StoreHash,
			"error", err,
		)
	}

	if err := a.upsertStats(ctx, ev); err != nil {
		metrics.TrackFailures.WithLabelValues(metrics.StageStats).Inc()
		return err
	}
	return nil
}

// upsertStats 在一个事务内累加总数与各分项桶，读者要么看到全部要么都看不到
func (a *Aggregator) upsertStats(ctx context.Context, ev *model.ScanEvent) error {
	var conv int64
	if ev.Conversion {
		conv = 1
	}
	now := a.now().Unix()

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.ScanStats{
			QRCodeID:    ev.QRCodeID,
			StoreHash:   ev.StoreHash,
			TotalScans:  1,
			Conversions: conv,
			LastUpdated: now,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "qr_code_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_scans":  gorm.Expr("scan_stats.total_scans + ?", 1),
				"conversions":  gorm.Expr("scan_stats.conversions + ?", conv),
				"last_updated": now,
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("写入 scan_stats 失败: %w", err)
		}

		buckets := Buckets(ev)
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "qr_code_id"}, {Name: "dimension"}, {Name: "bucket"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"scans": gorm.Expr("scan_stat_buckets.scans + ?", 1),
			}),
		}).Create(&buckets).Error
		if err != nil {
			return fmt.Errorf("写入 scan_stat_buckets 失败: %w", err)
		}
		return nil
	})
}

// Buckets 列出一个事件需要累加的分项桶。日期与设备总会累加，地区和浏览器仅在有值时累加。
func Buckets(ev *model.ScanEvent) []model.ScanStatBucket {
	device := ev.DeviceType
	if device == "" {
		device = "unknown"
	}
	buckets := []model.ScanStatBucket{
		{QRCodeID: ev.QRCodeID, Dimension: model.DimensionDaily, Bucket: DayOf(ev.Timestamp), Scans: 1},
		{QRCodeID: ev.QRCodeID, Dimension: model.DimensionDevice, Bucket: device, Scans: 1},
	}
	if ev.Country != "" {
		buckets = append(buckets, model.ScanStatBucket{QRCodeID: ev.QRCodeID, Dimension: model.DimensionLocation, Bucket: ev.Country, Scans: 1})
	}
	if ev.Browser != "" {
		buckets = append(buckets, model.ScanStatBucket{QRCodeID: ev.QRCodeID, Dimension: model.DimensionBrowser, Bucket: ev.Browser, Scans: 1})
	}
	return buckets
}

// DayOf 把 unix 秒转换为本地日期
func DayOf(ts int64) string {
	return time.Unix(ts, 0).Local().Format(DateLayout)
}
