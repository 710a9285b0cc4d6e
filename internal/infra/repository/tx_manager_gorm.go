package repository

import (
	"context"

	repo "backoffice/internal/repository"

	"gorm.io/gorm"
)

// devapiの注文まわりのTx
type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

type orderTxRepos struct {
	tx *gorm.DB
}

func (r orderTxRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r orderTxRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r orderTxRepos) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(orderTxRepos{tx: tx})
	})
}
