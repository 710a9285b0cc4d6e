package model

import "time"

type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "pending"
	OrderItemStatusConfirmed OrderItemStatus = "confirmed"
	OrderItemStatusShipped   OrderItemStatus = "shipped"
	OrderItemStatusDelivered OrderItemStatus = "delivered"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
	OrderItemStatusRefunded  OrderItemStatus = "refunded"
)

func (s OrderItemStatus) Valid() bool {
	switch s {
	case OrderItemStatusPending, OrderItemStatusConfirmed, OrderItemStatusShipped,
		OrderItemStatusDelivered, OrderItemStatusCancelled, OrderItemStatusRefunded:
		return true
	}
	return false
}

// 注文明細。商品は作成時点のスナップショットを持つ。
type OrderItem struct {
	No              string          `gorm:"primaryKey;type:varchar(64)" json:"no,omitempty"`
	OrderNo         string          `gorm:"type:varchar(64);not null;index" json:"orderNo"`
	ProductNo       string          `gorm:"type:varchar(64);not null;index" json:"productNo"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	UnitPrice       Money           `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice      Money           `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	DiscountAmount  Money           `gorm:"type:decimal(12,2);not null" json:"discountAmount"`
	FinalPrice      Money           `gorm:"type:decimal(12,2);not null" json:"finalPrice"`
	Status          OrderItemStatus `gorm:"type:varchar(20);not null" json:"status"`
	ProductSnapshot *Product        `gorm:"serializer:json;type:text" json:"productSnapshot,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"createdAt,omitzero"`
}

// /order-item/batch の結果
type BatchResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}
