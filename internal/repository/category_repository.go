package repository

import (
	"context"

	"shophub/internal/domain/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Delete(ctx context.Context, id int64) error
}
