package model

// 聚合桶维度
const (
	DimensionDaily    = "daily"
	DimensionDevice   = "device"
	DimensionLocation = "location"
	DimensionBrowser  = "browser"
)

// ScanStats 每个二维码一行的滚动统计。分项计数保存在 scan_stat_buckets 中，
// 读取时组装到各个 map 字段。
type ScanStats struct {
	QRCodeID    string `gorm:"primaryKey;size:16" json:"qr_code_id"`
	StoreHash   string `gorm:"size:64;not null;index" json:"store_hash"`
	TotalScans  int64  `gorm:"not null;default:0;index" json:"total_scans"`
	Conversions int64  `gorm:"not null;default:0" json:"conversions"`
	LastUpdated int64  `gorm:"not null" json:"last_updated"`

	DailyScans        map[string]int64 `gorm:"-" json:"daily_scans"`
	DeviceBreakdown   map[string]int64 `gorm:"-" json:"device_breakdown"`
	LocationBreakdown map[string]int64 `gorm:"-" json:"location_breakdown"`
	BrowserBreakdown  map[string]int64 `gorm:"-" json:"browser_breakdown"`
}

func (ScanStats) TableName() string {
	return "scan_stats"
}

// EmptyScanStats 尚无扫码时返回的零值统计
func EmptyScanStats(qrCodeID, storeHash string) *ScanStats {
	s := &ScanStats{QRCodeID: qrCodeID, StoreHash: storeHash}
	s.EnsureMaps()
	return s
}

// ApplyBucket 把一个分项桶合并进对应的 map
func (s *ScanStats) ApplyBucket(b ScanStatBucket) {
	s.EnsureMaps()
	switch b.Dimension {
	case DimensionDaily:
		s.DailyScans[b.Bucket] += b.Scans
	case DimensionDevice:
		s.DeviceBreakdown[b.Bucket] += b.Scans
	case DimensionLocation:
		s.LocationBreakdown[b.Bucket] += b.Scans
	case DimensionBrowser:
		s.BrowserBreakdown[b.Bucket] += b.Scans
	}
}

// EnsureMaps 初始化为空的分项 map，保证 JSON 输出 {} 而不是 null
func (s *ScanStats) EnsureMaps() {
	if s.DailyScans == nil {
		s.DailyScans = map[string]int64{}
	}
	if s.DeviceBreakdown == nil {
		s.DeviceBreakdown = map[string]int64{}
	}
	if s.LocationBreakdown == nil {
		s.LocationBreakdown = map[string]int64{}
	}
	if s.BrowserBreakdown == nil {
		s.BrowserBreakdown = map[string]int64{}
	}
}

// ScanStatBucket 单个分项计数，(qr_code_id, dimension, bucket) 唯一
type ScanStatBucket struct {
	QRCodeID  string `gorm:"primaryKey;size:16"`
	Dimension string `gorm:"primaryKey;size:16"`
	Bucket    string `gorm:"primaryKey;size:128"`
	Scans     int64  `gorm:"not null;default:0"`
}

func (ScanStatBucket) TableName() string {
	return "scan_stat_buckets"
}
