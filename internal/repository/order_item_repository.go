package repository

import (
	"context"

	"backoffice/internal/domain/model"
)

// 注文明細（devapi用）。明細は注文番号でしか引かない。
type OrderItemRepository interface {
	//まとめてINSERT（1件でも失敗したら呼び出し側のTxごと戻す）
	CreateBulk(ctx context.Context, items []model.OrderItem) error
	ListByOrderNo(ctx context.Context, orderNo string) ([]model.OrderItem, error)
	//注文削除の前に呼ぶ
	DeleteByOrderNo(ctx context.Context, orderNo string) error
}
