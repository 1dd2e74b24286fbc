package model

import "time"

// 注文明細。価格は購入時スナップショットで、以後カタログから再計算しない。
// 商品が後で消えてもproduct_idはそのまま残す（読み出し時にnull解決）。
type OrderItem struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64     `gorm:"not null;index" json:"order_id"`
	ProductID     int64     `gorm:"not null;index" json:"product_id"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	PriceSnapshot float64   `gorm:"not null;column:price_snapshot" json:"price"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
