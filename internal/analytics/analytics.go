// Package analytics 基于原始扫码事件按时间窗口重新计算报表。
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"qrcode-platform/internal/model"
	"qrcode-platform/internal/tracking"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NoData 没有数据时 top_device / top_location 的取值
const NoData = "No data"

const secondsPerDay = 24 * 60 * 60

var ErrInvalidWindow = errors.New("无效的时间范围")

// 预设周期对应的天数
var periods = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// Window 闭区间 [From, To]，unix 秒
type Window struct {
	From int64
	To   int64
}

// ResolveWindow 解析查询周期。预设周期以当前时刻向前推 N 天，不对齐到零点；
// custom 或仅给出 from/to 时使用显式区间，custom 缺少任一端点时和其他未知取值一样按 7d 处理。
func ResolveWindow(period string, from, to *int64, now time.Time) (Window, error) {
	explicit := from != nil && to != nil
	if explicit && (period == "custom" || period == "") {
		if *from > *to {
			return Window{}, fmt.Errorf("%w: from_timestamp 不能晚于 to_timestamp", ErrInvalidWindow)
		}
		return Window{From: *from, To: *to}, nil
	}

	days, ok := periods[period]
	if !ok {
		days = 7
	}
	return Window{From: now.AddDate(0, 0, -days).Unix(), To: now.Unix()}, nil
}

// Days 窗口跨越的天数，可以是小数
func (w Window) Days() float64 {
	return float64(w.To-w.From) / secondsPerDay
}

// SeriesPoint 按日期聚合的扫码数
type SeriesPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// CodeCount 单个二维码的扫码数
type CodeCount struct {
	QRCodeID string `json:"qr_code_id"`
	Name     string `json:"name"`
	Count    int64  `json:"count"`
}

// Report 分析报表
type Report struct {
	TotalScans      int64            `json:"total_scans"`
	AvgDailyScans   float64          `json:"avg_daily_scans"`
	TopDevice       string           `json:"top_device"`
	TopLocation     string           `json:"top_location"`
	Series          []SeriesPoint    `json:"series"`
	TopQRCodes      []CodeCount      `json:"top_qr_codes"`
	DeviceBreakdown map[string]int64 `json:"device_breakdown"`
}

// EmptyReport 窗口内没有事件时的报表
func EmptyReport() *Report {
	return &Report{
		TopDevice:       NoData,
		TopLocation:     NoData,
		Series:          []SeriesPoint{},
		TopQRCodes:      []CodeCount{},
		DeviceBreakdown: map[string]int64{},
	}
}

// CodeLookup 读取二维码记录
type CodeLookup interface {
	FindByID(ctx context.Context, id string) (*model.QRCode, error)
	Names(ctx context.Context, ids []string) (map[string]string, error)
}

// Service 分析查询服务
type Service struct {
	db     *gorm.DB
	codes  CodeLookup
	logger *zap.SugaredLogger
}

func NewService(db *gorm.DB, codes CodeLookup, logger *zap.SugaredLogger) *Service {
	return &Service{db: db, codes: codes, logger: logger.Named("analytics")}
}

// Overview 店铺级报表
func (s *Service) Overview(ctx context.Context, storeHash string, w Window) (*Report, error) {
	events, err := s.events(ctx, "store_hash = ?", storeHash, w)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return EmptyReport(), nil
	}

	report := summarize(events, w)

	counts := make(map[string]int64)
	for _, ev := range events {
		counts[ev.QRCodeID]++
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	names, err := s.codes.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("Unknown QR Code (%s)", id)
		}
		report.TopQRCodes = append(report.TopQRCodes, CodeCount{QRCodeID: id, Name: name, Count: counts[id]})
	}
	return report, nil
}

// OverviewForCode 单个二维码的报表，二维码不存在时返回 registry.ErrNotFound
func (s *Service) OverviewForCode(ctx context.Context, qrCodeID string, w Window) (*Report, error) {
	code, err := s.codes.FindByID(ctx, qrCodeID)
	if err != nil {
		return nil, err
	}
	events, err := s.events(ctx, "qr_code_id = ?", qrCodeID, w)
	if err != nil {
		return nil, err
	}

	report := EmptyReport()
	if len(events) > 0 {
		report = summarize(events, w)
	}
	report.TopQRCodes = []CodeCount{{QRCodeID: code.ID, Name: code.Name, Count: report.TotalScans}}
	return report, nil
}

func (s *Service) events(ctx context.Context, cond string, arg string, w Window) ([]model.ScanEvent, error) {
	var events []model.ScanEvent
	err := s.db.WithContext(ctx).
		Select("id", "qr_code_id", "timestamp", "device_type", "country").
		Where(cond, arg).
		Where("timestamp >= ? AND timestamp <= ?", w.From, w.To).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("查询扫码事件失败: %w", err)
	}
	s.logger.Debugw("加载扫码事件", "filter", cond, "value", arg, "from", w.From, "to", w.To, "count", len(events))
	return events, nil
}

// summarize 计算总数、均值、日序列和设备/地区排行，events 需按时间升序
func summarize(events []model.ScanEvent, w Window) *Report {
	report := EmptyReport()
	report.TotalScans = int64(len(events))
	if days := w.Days(); days > 0 {
		report.AvgDailyScans = math.Round(float64(report.TotalScans)/days*10) / 10
	}

	devices := newTally()
	locations := newTally()
	daily := make(map[string]int64)
	for _, ev := range events {
		devices.add(ev.DeviceType)
		if ev.Country != "" {
			locations.add(ev.Country)
		}
		daily[tracking.DayOf(ev.Timestamp)]++
	}

	report.TopDevice = devices.top()
	report.TopLocation = locations.top()
	report.DeviceBreakdown = devices.counts

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		report.Series = append(report.Series, SeriesPoint{Date: date, Count: daily[date]})
	}
	return report
}

// tally 记录计数与首次出现顺序，计数相同时先出现的胜出
type tally struct {
	counts map[string]int64
	order  []string
}

func newTally() *tally {
	return &tally{counts: map[string]int64{}}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

func (t *tally) top() string {
	best, bestCount := NoData, int64(0)
	for _, key := range t.order {
		if c := t.counts[key]; c > bestCount {
			best, bestCount = key, c
		}
	}
	return best
}
