package repository

import (
	"context"
	"errors"
)

// 同時更新が衝突してDB側がトランザクションを落とした。
// 再送すれば通る可能性がある。
var ErrTxConflict = errors.New("transaction conflict")

// トランザクション内で使う約束。
// 注文確定はここにある4つだけで完結する。
type TxRepos interface {
	Products() ProductRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Inventory() InventoryRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したら全部ロールバック。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
