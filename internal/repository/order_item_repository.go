package repository

import (
	"context"

	"shophub/internal/domain/model"
)

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)

	//注文削除時に明細も消す
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
