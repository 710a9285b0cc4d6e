package model

import "time"

type CartItemStatus string

const (
	CartItemStatusActive    CartItemStatus = "active"
	CartItemStatusPurchased CartItemStatus = "purchased"
	CartItemStatusRemoved   CartItemStatus = "removed"
)

// カートの明細（サーバー側が持ち主）
// 追加時点の単価を保存。小計は読み出し時に計算する。
type CartItem struct {
	No         string         `gorm:"primaryKey;type:varchar(64)" json:"no"`
	UserNo     string         `gorm:"type:varchar(64);not null;index:idx_cart_user_product,unique" json:"userNo"`
	ProductNo  string         `gorm:"type:varchar(64);not null;index:idx_cart_user_product,unique" json:"productNo"`
	Quantity   int64          `gorm:"not null" json:"quantity"`
	UnitPrice  Money          `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice Money          `gorm:"-" json:"totalPrice"`
	Status     CartItemStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status,omitempty"`
	Product    *Product       `gorm:"-" json:"product,omitempty"`
	AddedAt    time.Time      `gorm:"not null;autoCreateTime" json:"addedAt,omitzero"`
	UpdatedAt  time.Time      `gorm:"not null;autoUpdateTime" json:"updatedAt,omitzero"`
}
