package repository

import (
	"context"

	"shophub/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫の現在値を設定（入荷・棚卸し）
	SetStock(ctx context.Context, productID int64, newStock int64) error

	// 在庫が足りるときだけ減算。UPDATE自体に stock >= qty の条件を付けるので
	// 読んでから書くまでの競合で在庫がマイナスになることはない。
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
