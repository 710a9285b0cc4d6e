package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
)

// =====================
// 上流ゲートウェイのmock
// =====================

type UserDirectoryMock struct{ mock.Mock }

func (m *UserDirectoryMock) SearchUsers(ctx context.Context, q model.PageQuery) (model.Page[model.User], error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(model.Page[model.User])
	return p, args.Error(1)
}

type ProductCatalogMock struct{ mock.Mock }

func (m *ProductCatalogMock) SearchProducts(ctx context.Context, q model.PageQuery) (model.Page[model.Product], error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(model.Page[model.Product])
	return p, args.Error(1)
}

type CartGatewayMock struct{ mock.Mock }

func (m *CartGatewayMock) FetchUserCart(ctx context.Context, userNo string) (model.UserCart, error) {
	args := m.Called(ctx, userNo)
	c, _ := args.Get(0).(model.UserCart)
	return c, args.Error(1)
}

func (m *CartGatewayMock) AddToCart(ctx context.Context, in repo.AddToCartInput) (model.CartItem, error) {
	args := m.Called(ctx, in)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartGatewayMock) UpdateQuantity(ctx context.Context, itemNo string, quantity int64) (model.CartItem, error) {
	args := m.Called(ctx, itemNo, quantity)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartGatewayMock) RemoveFromCart(ctx context.Context, userNo string, productNo string) error {
	args := m.Called(ctx, userNo, productNo)
	return args.Error(0)
}

func (m *CartGatewayMock) ClearCart(ctx context.Context, userNo string) error {
	args := m.Called(ctx, userNo)
	return args.Error(0)
}

type OrderGatewayMock struct{ mock.Mock }

func (m *OrderGatewayMock) CreateOrder(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderGatewayMock) DeleteOrder(ctx context.Context, orderNo string) error {
	args := m.Called(ctx, orderNo)
	return args.Error(0)
}

func (m *OrderGatewayMock) CreateOrderItems(ctx context.Context, orderNo string, items []model.OrderItem) (model.BatchResult, error) {
	args := m.Called(ctx, orderNo, items)
	r, _ := args.Get(0).(model.BatchResult)
	return r, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// actionだけで照合する
func auditAction(action model.AuditAction) any {
	return mock.MatchedBy(func(l model.AuditLog) bool { return l.Action == action })
}

// =====================
// Helper
// =====================

type fixedIDs struct {
	ids []string
}

func (g *fixedIDs) NewID() string {
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func tea() *model.Product {
	return &model.Product{No: "P1", Name: "Green Tea", Price: model.MoneyFromInt(50), Status: "on sale"}
}

// P1 ¥50 × qty のカート
func teaCart(qty int64) model.UserCart {
	if qty <= 0 {
		return model.UserCart{Items: []model.CartItem{}, TotalPrice: model.ZeroMoney}
	}
	total := model.MoneyFromInt(50).MulQty(qty)
	return model.UserCart{
		Items: []model.CartItem{{
			No: "C1", UserNo: "U1", ProductNo: "P1", Quantity: qty,
			UnitPrice: model.MoneyFromInt(50), TotalPrice: total, Product: tea(),
		}},
		TotalPrice: total,
		ItemCount:  1,
	}
}
