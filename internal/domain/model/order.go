package model

import "time"

type OrderStatus string

const (
	OrderStatusOrdered   OrderStatus = "已下单"
	OrderStatusUnpaid    OrderStatus = "未付款"
	OrderStatusPaid      OrderStatus = "已付款"
	OrderStatusCanceled  OrderStatus = "已取消"
	OrderStatusDelivered OrderStatus = "已配送"
	OrderStatusException OrderStatus = "异常单"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusOrdered, OrderStatusUnpaid, OrderStatusPaid,
		OrderStatusCanceled, OrderStatusDelivered, OrderStatusException:
		return true
	}
	return false
}

// 注文。noはサーバーが採番する。
type Order struct {
	No          string      `gorm:"primaryKey;type:varchar(64)" json:"no"`
	UserNo      string      `gorm:"type:varchar(64);not null;index" json:"userNo"`
	ShipAddress string      `gorm:"type:varchar(512)" json:"shipAddress,omitempty"`
	OrderTotal  Money       `gorm:"type:decimal(12,2);not null" json:"orderTotal"`
	OrderStatus OrderStatus `gorm:"type:varchar(20);not null;index" json:"orderStatus"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Remark      string      `gorm:"type:text" json:"remark,omitempty"`
	OperatorNo  string      `gorm:"type:varchar(64)" json:"operatorNo,omitempty"`
	CustomerNo  string      `gorm:"type:varchar(64)" json:"customerNo,omitempty"`
	LogisticsNo string      `gorm:"type:varchar(64)" json:"logisticsNo,omitempty"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime" json:"createdAt,omitzero"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime" json:"updatedAt,omitzero"`
}
