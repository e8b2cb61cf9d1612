package model

import (
	"fmt"
	"net/url"
	"strings"
)

// QRType 二维码类型标签
type QRType string

const (
	QRTypeProduct  QRType = "product"
	QRTypeCart     QRType = "cart"
	QRTypeCategory QRType = "category"
	QRTypeHomepage QRType = "homepage"
	QRTypeCoupon   QRType = "coupon"
	QRTypeCustom   QRType = "custom"
	QRTypeTest     QRType = "test"
)

// QRStatus 二维码生命周期状态，deleted 为终态
type QRStatus string

const (
	QRStatusActive   QRStatus = "active"
	QRStatusInactive QRStatus = "inactive"
	QRStatusDeleted  QRStatus = "deleted"
)

// QRStyle 二维码外观
type QRStyle struct {
	ForegroundColor string  `gorm:"size:16;default:'#000000'" json:"foreground_color"`
	BackgroundColor string  `gorm:"size:16;default:'#FFFFFF'" json:"background_color"`
	LogoURL         string  `gorm:"type:text" json:"logo_url,omitempty"`
	DotsStyle       string  `gorm:"size:16;default:'square'" json:"dots_style"`
	CornerStyle     string  `gorm:"size:16;default:'square'" json:"corner_style"`
	CornerColor     string  `gorm:"size:16" json:"corner_color,omitempty"`
	LogoSize        float64 `gorm:"default:0.3" json:"logo_size"`
}

// DefaultStyle 返回默认外观
func DefaultStyle() QRStyle {
	return QRStyle{
		ForegroundColor: "#000000",
		BackgroundColor: "#FFFFFF",
		DotsStyle:       "square",
		CornerStyle:     "square",
		LogoSize:        0.3,
	}
}

// QRCode 二维码记录。目标以扁平列存储，通过 Destination() 以具体变体访问。
type QRCode struct {
	ID         string   `gorm:"primaryKey;size:16" json:"id"`
	StoreHash  string   `gorm:"size:64;not null;index" json:"store_hash"`
	Name       string   `gorm:"size:255;not null" json:"name"`
	Type       QRType   `gorm:"size:16;not null" json:"type"`
	TargetURL  string   `gorm:"type:text;not null" json:"target_url"`
	ProductID  *int64   `json:"product_id,omitempty"`
	CategoryID *int64   `json:"category_id,omitempty"`
	CouponCode string   `gorm:"size:64" json:"coupon_code,omitempty"`
	AddToCart  bool     `gorm:"default:false" json:"add_to_cart"`
	Style      QRStyle  `gorm:"embedded;embeddedPrefix:style_" json:"style"`
	CampaignID string   `gorm:"size:64;index" json:"campaign_id,omitempty"`
	CreatedBy  string   `gorm:"size:64" json:"created_by,omitempty"`
	ScanCount  int64    `gorm:"default:0" json:"scan_count"`
	Status     QRStatus `gorm:"size:16;not null;default:'active';index" json:"status"`
	CreatedAt  int64    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  int64    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (QRCode) TableName() string {
	return "qr_codes"
}

// Active 只有 active 状态的二维码可以跳转
func (q *QRCode) Active() bool {
	return q.Status == QRStatusActive
}

// Destination 把扁平列还原为具体的目标变体
func (q *QRCode) Destination() Destination {
	switch q.Type {
	case QRTypeProduct, QRTypeCart:
		var id int64
		if q.ProductID != nil {
			id = *q.ProductID
		}
		return ProductDestination{ProductID: id, AddToCart: q.AddToCart}
	case QRTypeCategory:
		var id int64
		if q.CategoryID != nil {
			id = *q.CategoryID
		}
		return CategoryDestination{CategoryID: id}
	case QRTypeHomepage:
		return HomepageDestination{}
	case QRTypeCoupon:
		return CouponDestination{Code: q.CouponCode}
	default:
		return CustomDestination{Link: q.TargetURL, Test: q.Type == QRTypeTest}
	}
}

// SetDestination 写入目标变体及其解析后的 URL
func (q *QRCode) SetDestination(d Destination, storeURL string) {
	q.Type = d.Type()
	q.TargetURL = d.URL(storeURL)
	q.ProductID, q.CategoryID, q.CouponCode, q.AddToCart = nil, nil, "", false
	switch v := d.(type) {
	case ProductDestination:
		id := v.ProductID
		q.ProductID = &id
		q.AddToCart = v.AddToCart
	case CategoryDestination:
		id := v.CategoryID
		q.CategoryID = &id
	case CouponDestination:
		q.CouponCode = v.Code
	}
}

// Destination 二维码指向的目标
type Destination interface {
	Type() QRType
	URL(storeURL string) string
}

// ProductDestination 商品页，或直接加入购物车
type ProductDestination struct {
	ProductID int64
	AddToCart bool
}

func (d ProductDestination) Type() QRType {
	if d.AddToCart {
		return QRTypeCart
	}
	return QRTypeProduct
}

func (d ProductDestination) URL(storeURL string) string {
	if d.AddToCart {
		return fmt.Sprintf("%s/cart.php?action=add&product_id=%d", storeURL, d.ProductID)
	}
	return fmt.Sprintf("%s/products.php?product_id=%d", storeURL, d.ProductID)
}

// CategoryDestination 分类页
type CategoryDestination struct {
	CategoryID int64
}

func (CategoryDestination) Type() QRType { return QRTypeCategory }

func (d CategoryDestination) URL(storeURL string) string {
	return fmt.Sprintf("%s/categories.php?category_id=%d", storeURL, d.CategoryID)
}

// HomepageDestination 店铺首页
type HomepageDestination struct{}

func (HomepageDestination) Type() QRType { return QRTypeHomepage }

func (HomepageDestination) URL(storeURL string) string { return storeURL }

// CouponDestination 带优惠码的购物车
type CouponDestination struct {
	Code string
}

func (CouponDestination) Type() QRType { return QRTypeCoupon }

func (d CouponDestination) URL(storeURL string) string {
	return storeURL + "/cart.php?coupon=" + url.QueryEscape(d.Code)
}

// CustomDestination 任意外部链接，Test 标记测试码
type CustomDestination struct {
	Link string
	Test bool
}

func (d CustomDestination) Type() QRType {
	if d.Test {
		return QRTypeTest
	}
	return QRTypeCustom
}

func (d CustomDestination) URL(string) string { return d.Link }

// ValidTargetURL 自定义目标必须是绝对的 http(s) 地址
func ValidTargetURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
