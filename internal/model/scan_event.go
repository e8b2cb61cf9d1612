package model

// ScanEvent 单次扫码记录，写入后不可变
type ScanEvent struct {
	ID         string   `gorm:"primaryKey;size:36" json:"id"`
	QRCodeID   string   `gorm:"size:16;not null;index" json:"qr_code_id"`
	StoreHash  string   `gorm:"size:64;not null;index:idx_scan_events_store_ts" json:"store_hash"`
	Timestamp  int64    `gorm:"not null;index;index:idx_scan_events_store_ts" json:"timestamp"`
	IPAddress  string   `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string   `gorm:"type:text" json:"user_agent,omitempty"`
	Referrer   string   `gorm:"type:text" json:"referrer,omitempty"`
	DeviceType string   `gorm:"size:16;not null;default:'unknown'" json:"device_type"`
	Browser    string   `gorm:"size:64;not null;default:'unknown'" json:"browser"`
	OS         string   `gorm:"size:64;not null;default:'unknown'" json:"os"`
	Country    string   `gorm:"size:8" json:"country,omitempty"`
	City       string   `gorm:"size:100" json:"city,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	SessionID  string   `gorm:"size:36" json:"session_id,omitempty"`
	Conversion bool     `gorm:"default:false" json:"conversion"`
}

func (ScanEvent) TableName() string {
	return "scan_events"
}
