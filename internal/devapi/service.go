package devapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
	"backoffice/internal/usecase"
)

// 一覧の上限
const maxPageSize = 100

// Service はローカル開発用の上流EC API。
// 本番の上流と同じ契約を gorm の上で実装する。
type Service struct {
	users    repo.UserRepository
	products repo.ProductRepository
	carts    repo.CartItemRepository
	orders   repo.OrderRepository
	tx       repo.TransactionManager
	ids      usecase.IDGenerator
	log      *zap.Logger
}

// DI
func NewService(
	users repo.UserRepository,
	products repo.ProductRepository,
	carts repo.CartItemRepository,
	orders repo.OrderRepository,
	tx repo.TransactionManager,
	ids usecase.IDGenerator,
	log *zap.Logger,
) *Service {
	if ids == nil {
		ids = usecase.UUIDGenerator{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, products: products, carts: carts, orders: orders, tx: tx, ids: ids, log: log}
}

func normalizePage(q model.PageQuery) model.PageQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	q.Keyword = strings.TrimSpace(q.Keyword)
	return q
}

func (s *Service) SearchUsers(ctx context.Context, q model.PageQuery) (model.Page[model.User], error) {
	users, total, err := s.users.Search(ctx, normalizePage(q))
	if err != nil {
		return model.Page[model.User]{}, err
	}
	return model.Page[model.User]{List: users, Total: total}, nil
}

func (s *Service) SearchProducts(ctx context.Context, q model.PageQuery) (model.Page[model.Product], error) {
	products, total, err := s.products.Search(ctx, normalizePage(q))
	if err != nil {
		return model.Page[model.Product]{}, err
	}
	return model.Page[model.Product]{List: products, Total: total}, nil
}

// 小計と合計はここで計算する（単価 × 数量）
func (s *Service) UserCart(ctx context.Context, userNo string) (model.UserCart, error) {
	items, err := s.carts.ListByUserNo(ctx, userNo)
	if err != nil {
		return model.UserCart{}, err
	}

	nos := make([]string, 0, len(items))
	for _, it := range items {
		nos = append(nos, it.ProductNo)
	}
	products, err := s.products.FindByNos(ctx, nos)
	if err != nil {
		return model.UserCart{}, err
	}

	cart := model.EmptyCart()
	for _, it := range items {
		it.TotalPrice = it.UnitPrice.MulQty(it.Quantity)
		if p, ok := products[it.ProductNo]; ok {
			it.Product = &p
		}
		cart.Items = append(cart.Items, it)
		cart.TotalPrice = cart.TotalPrice.Add(it.TotalPrice)
	}
	cart.ItemCount = len(cart.Items)
	return cart, nil
}

// 同じ商品は数量を足す。単価は追加した時点の価格。
func (s *Service) AddToCart(ctx context.Context, in repo.AddToCartInput) (model.CartItem, error) {
	if in.UserNo == "" || in.ProductNo == "" {
		return model.CartItem{}, usecase.NewHTTPError(http.StatusBadRequest, "userNo and productNo are required")
	}
	if in.Quantity < 0 {
		return model.CartItem{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	if _, err := s.users.FindByNo(ctx, in.UserNo); err != nil {
		return model.CartItem{}, notFoundOr(err, "user not found")
	}
	product, err := s.products.FindByNo(ctx, in.ProductNo)
	if err != nil {
		return model.CartItem{}, notFoundOr(err, "product not found")
	}

	item, err := s.carts.UpsertByUserAndProduct(ctx, in.UserNo, in.ProductNo, in.Quantity, product.Price, s.ids.NewID())
	if err != nil {
		return model.CartItem{}, err
	}
	item.TotalPrice = item.UnitPrice.MulQty(item.Quantity)
	item.Product = &product
	return item, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, itemNo string, quantity int64) (model.CartItem, error) {
	if itemNo == "" {
		return model.CartItem{}, usecase.NewHTTPError(http.StatusBadRequest, "id is required")
	}
	if quantity <= 0 {
		return model.CartItem{}, usecase.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	item, err := s.carts.UpdateQuantity(ctx, itemNo, quantity)
	if err != nil {
		return model.CartItem{}, notFoundOr(err, "cart item not found")
	}
	item.TotalPrice = item.UnitPrice.MulQty(item.Quantity)
	return item, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userNo string, productNo string) error {
	if userNo == "" || productNo == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "userNo and productNo are required")
	}
	return notFoundOr(s.carts.DeleteByUserAndProduct(ctx, userNo, productNo), "cart item not found")
}

func (s *Service) ClearCart(ctx context.Context, userNo string) error {
	if userNo == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "userNo is required")
	}
	return s.carts.ClearByUserNo(ctx, userNo)
}

// noはここで採番する
func (s *Service) CreateOrder(ctx context.Context, in model.Order) (model.Order, error) {
	if in.UserNo == "" {
		return model.Order{}, usecase.NewHTTPError(http.StatusBadRequest, "userNo is required")
	}
	if in.OrderTotal.IsNegative() {
		return model.Order{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid orderTotal")
	}
	if in.OrderStatus == "" {
		in.OrderStatus = model.OrderStatusOrdered
	}
	if !in.OrderStatus.Valid() {
		return model.Order{}, usecase.NewHTTPError(http.StatusBadRequest, "invalid orderStatus")
	}
	if _, err := s.users.FindByNo(ctx, in.UserNo); err != nil {
		return model.Order{}, notFoundOr(err, "user not found")
	}

	in.No = s.ids.NewID()
	if err := s.orders.Create(ctx, in); err != nil {
		return model.Order{}, err
	}
	return s.orders.FindByNo(ctx, in.No)
}

type OrderDetail struct {
	Order model.Order       `json:"order"`
	Items []model.OrderItem `json:"items"`
}

func (s *Service) GetOrder(ctx context.Context, orderNo string) (OrderDetail, error) {
	var out OrderDetail
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByNo(ctx, orderNo)
		if err != nil {
			return err
		}
		items, err := r.OrderItems().ListByOrderNo(ctx, orderNo)
		if err != nil {
			return err
		}
		out = OrderDetail{Order: o, Items: items}
		return nil
	})
	if err != nil {
		return OrderDetail{}, notFoundOr(err, "order not found")
	}
	return out, nil
}

// 明細ごと消す
func (s *Service) DeleteOrder(ctx context.Context, orderNo string) error {
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.OrderItems().DeleteByOrderNo(ctx, orderNo); err != nil {
			return err
		}
		return r.Orders().DeleteByNo(ctx, orderNo)
	})
	return notFoundOr(err, "order not found")
}

// 1件でも不正なら1件も作らない。不正は success:false で返す（エラーにはしない）。
func (s *Service) CreateOrderItems(ctx context.Context, orderNo string, items []model.OrderItem) (model.BatchResult, error) {
	if len(items) == 0 {
		return model.BatchResult{Success: false, Message: "orderItems is empty"}, nil
	}

	rows := make([]model.OrderItem, 0, len(items))
	err := s.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		nos := make([]string, 0, len(items))
		for _, it := range items {
			nos = append(nos, it.ProductNo)
		}
		products, err := r.Products().FindByNos(ctx, nos)
		if err != nil {
			return err
		}

		for i, it := range items {
			if it.OrderNo == "" {
				it.OrderNo = orderNo
			}
			if msg := invalidItem(it, orderNo, products); msg != "" {
				return &rejectedBatch{message: fmt.Sprintf("item %d: %s", i, msg)}
			}
			if it.Status == "" {
				it.Status = model.OrderItemStatusPending
			}
			it.No = s.ids.NewID()
			rows = append(rows, it)
		}

		if _, err := r.Orders().FindByNo(ctx, rows[0].OrderNo); err != nil {
			return err
		}
		return r.OrderItems().CreateBulk(ctx, rows)
	})

	var rejected *rejectedBatch
	switch {
	case errors.As(err, &rejected):
		return model.BatchResult{Success: false, Message: rejected.message}, nil
	case errors.Is(err, repo.ErrNotFound):
		return model.BatchResult{Success: false, Message: "order not found"}, nil
	case err != nil:
		return model.BatchResult{}, err
	}

	s.log.Info("order items created", zap.String("order_no", rows[0].OrderNo), zap.Int("count", len(rows)))
	return model.BatchResult{Success: true, Count: len(rows), Message: "ok"}, nil
}

// 明細の検証に落ちた（rollbackさせるためにerrorで返す）
type rejectedBatch struct {
	message string
}

func (e *rejectedBatch) Error() string { return e.message }

func invalidItem(it model.OrderItem, orderNo string, products map[string]model.Product) string {
	switch {
	case it.OrderNo == "":
		return "orderNo is required"
	case orderNo != "" && it.OrderNo != orderNo:
		return "orderNo mismatch"
	case it.ProductNo == "":
		return "productNo is required"
	case it.Quantity <= 0:
		return "quantity must be positive"
	case it.UnitPrice.IsNegative() || it.TotalPrice.IsNegative() || it.FinalPrice.IsNegative():
		return "price must not be negative"
	case it.Status != "" && !it.Status.Valid():
		return "invalid status"
	}
	if _, ok := products[it.ProductNo]; !ok {
		return "product not found: " + it.ProductNo
	}
	return ""
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return usecase.NewHTTPError(http.StatusNotFound, msg)
	}
	return err
}
