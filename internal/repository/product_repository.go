package repository

import (
	"context"

	"backoffice/internal/domain/model"
)

// 商品の保存・検索（devapi用）
type ProductRepository interface {
	//name / specs の部分一致
	Search(ctx context.Context, q model.PageQuery) ([]model.Product, int64, error)
	FindByNo(ctx context.Context, productNo string) (model.Product, error)
	FindByNos(ctx context.Context, productNos []string) (map[string]model.Product, error)
	Upsert(ctx context.Context, product model.Product) error
}
