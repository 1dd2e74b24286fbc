package repository

import (
	"context"
	"errors"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// カテゴリ絞り込み付きで全商品を返す
func (r *ProductGormRepository) List(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	var products []model.Product

	tx := r.db.WithContext(ctx).Model(&model.Product{})
	if categoryID != nil {
		tx = tx.Where("category_id = ?", *categoryID)
	}

	if err := tx.Order("created_at desc").Order("id desc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新。在庫もここで上書きできる（管理画面の編集フォーム用）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	//zero値（false/0）も書きたいのでSelectで列を固定する
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).
		Select("name", "description", "price", "image", "images", "category_id",
			"stock", "delivery_charges", "increase_delivery_with_qty", "sku").
		Updates(&p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除。過去の注文明細はproduct_idを持ったまま残る
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カテゴリ削除時、商品のcategory_idをnullにする
func (r *ProductGormRepository) DetachCategory(ctx context.Context, categoryID int64) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}
