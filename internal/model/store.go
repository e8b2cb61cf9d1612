package model

import "strings"

// Store 已安装应用的店铺
type Store struct {
	StoreHash   string `gorm:"primaryKey;size:64" json:"store_hash"`
	StoreName   string `gorm:"size:255" json:"store_name,omitempty"`
	Domain      string `gorm:"size:255" json:"domain,omitempty"`
	StoreURL    string `gorm:"type:text" json:"store_url,omitempty"`
	Active      bool   `gorm:"not null" json:"active"`
	InstalledAt int64  `gorm:"autoCreateTime" json:"installed_at"`
	UpdatedAt   int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Store) TableName() string {
	return "stores"
}

// BaseURL 店铺前台地址：domain > store_url > BigCommerce 默认域名
func (s *Store) BaseURL() string {
	if s.Domain != "" {
		return "https://" + strings.TrimRight(s.Domain, "/")
	}
	if s.StoreURL != "" {
		return strings.TrimRight(s.StoreURL, "/")
	}
	return DefaultStoreURL(s.StoreHash)
}

// DefaultStoreURL 未登记店铺时使用的默认地址
func DefaultStoreURL(storeHash string) string {
	return "https://store-" + storeHash + ".mybigcommerce.com"
}
