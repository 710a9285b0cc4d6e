package repository

import "context"

// 注文と明細をまとめて書くときに使う。商品はTx内で読み直す。
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
}

type TransactionManager interface {
	//fnがerrorを返したら全部戻す
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
