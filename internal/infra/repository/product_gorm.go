package repository

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// name / specs の部分一致、新しい順
func (r *ProductGormRepository) Search(ctx context.Context, q model.PageQuery) ([]model.Product, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(specs) LIKE ?", like, like)
	}

	//total（件数）
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	products := []model.Product{}
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order("created_at desc").Order(byNo).Offset(offset).Limit(q.PageSize).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

func (r *ProductGormRepository) FindByNo(ctx context.Context, productNo string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where(map[string]any{"no": productNo}).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// カート表示用にまとめて引く
func (r *ProductGormRepository) FindByNos(ctx context.Context, productNos []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(productNos))
	if len(productNos) == 0 {
		return out, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).Where(map[string]any{"no": productNos}).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.No] = p
	}
	return out, nil
}

func (r *ProductGormRepository) Upsert(ctx context.Context, product model.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "no"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "price", "status", "img_url", "specs", "unit", "category_no", "description", "updated_at",
			}),
		}).
		Create(&product).Error
}
