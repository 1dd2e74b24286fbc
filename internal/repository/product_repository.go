package repository

import (
	"context"
	"errors"

	"shophub/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（slug重複など）
var ErrConflict = errors.New("conflict")

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	//カテゴリ絞り込み（nilなら全件）
	List(ctx context.Context, categoryID *int64) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error

	//カテゴリ削除時に紐付きを外す（商品は消さない）
	DetachCategory(ctx context.Context, categoryID int64) error
}
