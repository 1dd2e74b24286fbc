package model

import "time"

type Product struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`

	//メイン画像（images[0]と同じ）
	Image string `gorm:"type:varchar(500)" json:"image"`

	//画像一覧
	Images []string `gorm:"serializer:json" json:"images"`

	//カテゴリ削除時にnullになる
	CategoryID *int64 `gorm:"index" json:"category_id"`

	//在庫（負にならない。減算は条件付きUPDATEのみ）
	Stock int64 `gorm:"not null;default:0" json:"stock"`

	//配送料（0なら無料）
	DeliveryCharges float64 `gorm:"not null;default:0" json:"delivery_charges"`

	//trueなら配送料×数量、falseなら数量によらず1回だけ
	IncreaseDeliveryWithQty bool `gorm:"not null;default:false" json:"increase_delivery_with_qty"`

	SKU        string    `gorm:"type:varchar(100)" json:"sku"`
	Rating     float64   `gorm:"not null;default:0" json:"rating"`
	NumReviews int64     `gorm:"not null;default:0" json:"num_reviews"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
