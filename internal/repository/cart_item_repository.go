package repository

import (
	"context"

	"backoffice/internal/domain/model"
)

type CartItemRepository interface {
	ListByUserNo(ctx context.Context, userNo string) ([]model.CartItem, error)
	// 同一商品はプラス。新規のときだけnewNoで作る。
	UpsertByUserAndProduct(ctx context.Context, userNo string, productNo string, addQty int64, unitPrice model.Money, newNo string) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, itemNo string, qty int64) (model.CartItem, error)
	FindByNo(ctx context.Context, itemNo string) (model.CartItem, error)
	DeleteByUserAndProduct(ctx context.Context, userNo string, productNo string) error
	ClearByUserNo(ctx context.Context, userNo string) error
}
