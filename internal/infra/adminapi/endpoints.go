package adminapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"backoffice/internal/domain/model"
	"backoffice/internal/repository"
)

var (
	_ repository.UserDirectory  = (*Client)(nil)
	_ repository.ProductCatalog = (*Client)(nil)
	_ repository.CartGateway    = (*Client)(nil)
	_ repository.OrderGateway   = (*Client)(nil)
)

// 一覧は list と records のどちらかで返ってくる
type listPayload[T any] struct {
	List    []T   `json:"list"`
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
}

func (p listPayload[T]) normalize() model.Page[T] {
	items := p.List
	if items == nil {
		items = p.Records
	}
	if items == nil {
		items = []T{}
	}
	return model.Page[T]{List: items, Total: p.Total}
}

func pageValues(q model.PageQuery) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return v
}

// GET /auth/list
func (c *Client) SearchUsers(ctx context.Context, q model.PageQuery) (model.Page[model.User], error) {
	var p listPayload[model.User]
	if err := c.do(ctx, http.MethodGet, "/auth/list", pageValues(q), nil, &p); err != nil {
		return model.Page[model.User]{List: []model.User{}}, err
	}
	page := p.normalize()

	//noが無い会員は選べないので落とす
	users := make([]model.User, 0, len(page.List))
	for _, u := range page.List {
		if u.No != "" {
			users = append(users, u)
		}
	}
	page.List = users
	return page, nil
}

// GET /product/list
func (c *Client) SearchProducts(ctx context.Context, q model.PageQuery) (model.Page[model.Product], error) {
	var p listPayload[model.Product]
	if err := c.do(ctx, http.MethodGet, "/product/list", pageValues(q), nil, &p); err != nil {
		return model.Page[model.Product]{List: []model.Product{}}, err
	}
	page := p.normalize()

	products := make([]model.Product, 0, len(page.List))
	for _, pr := range page.List {
		if pr.No != "" {
			products = append(products, pr)
		}
	}
	page.List = products
	return page, nil
}

// GET /cart/user/{userNo}
func (c *Client) FetchUserCart(ctx context.Context, userNo string) (model.UserCart, error) {
	cart := model.EmptyCart()
	if err := c.do(ctx, http.MethodGet, "/cart/user/"+url.PathEscape(userNo), nil, nil, &cart); err != nil {
		return model.EmptyCart(), err
	}
	return cart.Normalize(), nil
}

// POST /cart/add
func (c *Client) AddToCart(ctx context.Context, in repository.AddToCartInput) (model.CartItem, error) {
	var item model.CartItem
	if err := c.do(ctx, http.MethodPost, "/cart/add", nil, in, &item); err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

type updateQuantityRequest struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

// POST /cart/update-quantity
func (c *Client) UpdateQuantity(ctx context.Context, itemNo string, quantity int64) (model.CartItem, error) {
	var item model.CartItem
	req := updateQuantityRequest{ID: itemNo, Quantity: quantity}
	if err := c.do(ctx, http.MethodPost, "/cart/update-quantity", nil, req, &item); err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

type removeFromCartRequest struct {
	UserNo    string `json:"userNo"`
	ProductNo string `json:"productNo"`
}

// POST /cart/remove
func (c *Client) RemoveFromCart(ctx context.Context, userNo string, productNo string) error {
	req := removeFromCartRequest{UserNo: userNo, ProductNo: productNo}
	return c.do(ctx, http.MethodPost, "/cart/remove", nil, req, nil)
}

type clearCartRequest struct {
	UserNo string `json:"userNo"`
}

// POST /cart/clear
func (c *Client) ClearCart(ctx context.Context, userNo string) error {
	return c.do(ctx, http.MethodPost, "/cart/clear", nil, clearCartRequest{UserNo: userNo}, nil)
}

type createOrderRequest struct {
	UserNo      string            `json:"userNo"`
	ShipAddress string            `json:"shipAddress"`
	OrderTotal  model.Money       `json:"orderTotal"`
	OrderStatus model.OrderStatus `json:"orderStatus"`
	Description string            `json:"description,omitempty"`
	Remark      string            `json:"remark,omitempty"`
	OperatorNo  string            `json:"operatorNo,omitempty"`
	CustomerNo  string            `json:"customerNo,omitempty"`
	LogisticsNo string            `json:"logisticsNo,omitempty"`
}

// POST /order。採番されたnoが無ければ失敗扱い。
func (c *Client) CreateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	req := createOrderRequest{
		UserNo:      order.UserNo,
		ShipAddress: order.ShipAddress,
		OrderTotal:  order.OrderTotal,
		OrderStatus: order.OrderStatus,
		Description: order.Description,
		Remark:      order.Remark,
		OperatorNo:  order.OperatorNo,
		CustomerNo:  order.CustomerNo,
		LogisticsNo: order.LogisticsNo,
	}

	var created model.Order
	if err := c.do(ctx, http.MethodPost, "/order", nil, req, &created); err != nil {
		return model.Order{}, err
	}
	if created.No == "" {
		return model.Order{}, fmt.Errorf("%w: /order: order no missing", ErrMalformedResponse)
	}
	return created, nil
}

// DELETE /order/{no}
func (c *Client) DeleteOrder(ctx context.Context, orderNo string) error {
	return c.do(ctx, http.MethodDelete, "/order/"+url.PathEscape(orderNo), nil, nil, nil)
}

type batchOrderItemsRequest struct {
	OrderItems []model.OrderItem `json:"orderItems"`
	OrderNo    string            `json:"orderNo,omitempty"`
}

// POST /order-item/batch。success:false でもエラーにはしない（呼び出し側が判断）。
func (c *Client) CreateOrderItems(ctx context.Context, orderNo string, items []model.OrderItem) (model.BatchResult, error) {
	var res model.BatchResult
	req := batchOrderItemsRequest{OrderItems: items, OrderNo: orderNo}
	if err := c.do(ctx, http.MethodPost, "/order-item/batch", nil, req, &res); err != nil {
		return model.BatchResult{}, err
	}
	return res, nil
}
