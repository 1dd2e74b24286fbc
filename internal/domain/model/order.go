package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 許される遷移。Pending→Processing→Shipped→Delivered、
// Cancelledは終端以外のどこからでも可。
var orderStatusNext = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeliveredとCancelledは終端
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range orderStatusNext[s] {
		if n == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//注文者（会員機能はないので連絡先をそのまま持つ）
	CustomerName string `gorm:"type:varchar(255);not null" json:"customer_name"`
	Phone        string `gorm:"type:varchar(30);not null" json:"phone"`
	Email        string `gorm:"type:varchar(255)" json:"email"`

	//配送先
	Address    string `gorm:"type:varchar(500);not null" json:"address"`
	City       string `gorm:"type:varchar(255);not null" json:"city"`
	Province   string `gorm:"type:varchar(255);not null" json:"province"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`

	//小計＋配送料
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	//サーバー側で再計算した配送料
	DeliveryCharges float64 `gorm:"not null;default:0" json:"delivery_charges"`

	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
