package repository

import (
	"context"

	"backoffice/internal/domain/model"
)

// 上流のEC APIへの窓口。実装は infra/adminapi。

// 会員検索（GET /auth/list）
type UserDirectory interface {
	SearchUsers(ctx context.Context, q model.PageQuery) (model.Page[model.User], error)
}

// 商品検索（GET /product/list）
type ProductCatalog interface {
	SearchProducts(ctx context.Context, q model.PageQuery) (model.Page[model.Product], error)
}

type AddToCartInput struct {
	UserNo    string `json:"userNo"`
	ProductNo string `json:"productNo"`
	Quantity  int64  `json:"quantity"`
}

// サーバー側のユーザー別カート
type CartGateway interface {
	FetchUserCart(ctx context.Context, userNo string) (model.UserCart, error)
	AddToCart(ctx context.Context, in AddToCartInput) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, itemNo string, quantity int64) (model.CartItem, error)
	RemoveFromCart(ctx context.Context, userNo string, productNo string) error
	ClearCart(ctx context.Context, userNo string) error
}

// 注文と注文明細
type OrderGateway interface {
	CreateOrder(ctx context.Context, order model.Order) (model.Order, error)
	//明細失敗時の後始末に使う
	DeleteOrder(ctx context.Context, orderNo string) error
	CreateOrderItems(ctx context.Context, orderNo string, items []model.OrderItem) (model.BatchResult, error)
}
