package repository

import (
	"context"

	"backoffice/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) error
	FindByNo(ctx context.Context, orderNo string) (model.Order, error)
	DeleteByNo(ctx context.Context, orderNo string) error
}
