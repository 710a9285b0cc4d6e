package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
	"backoffice/internal/usecase"
)

func TestCartUsecase_AddUpdateRemoveScenario(t *testing.T) {
	ctx := context.Background()
	carts := new(CartGatewayMock)
	uc := usecase.NewCartUsecase(carts, nil)

	//P1(¥50)を2個 → 100
	carts.On("AddToCart", mock.Anything, repo.AddToCartInput{UserNo: "U1", ProductNo: "P1", Quantity: 2}).
		Return(model.CartItem{No: "C1"}, nil).Once()
	carts.On("FetchUserCart", mock.Anything, "U1").Return(teaCart(2), nil).Once()

	cart, err := uc.AddToCart(ctx, "U1", "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.ItemCount)
	assert.True(t, cart.TotalPrice.Equal(model.MoneyFromInt(100)))

	//3個にすると150
	carts.On("UpdateQuantity", mock.Anything, "C1", int64(3)).Return(model.CartItem{No: "C1", Quantity: 3}, nil).Once()
	carts.On("FetchUserCart", mock.Anything, "U1").Return(teaCart(3), nil).Once()

	cart, err = uc.UpdateQuantity(ctx, "U1", cart.Items[0], 3)
	require.NoError(t, err)
	assert.True(t, cart.TotalPrice.Equal(model.MoneyFromInt(150)))

	//削除で空・0
	carts.On("RemoveFromCart", mock.Anything, "U1", "P1").Return(nil).Once()
	carts.On("FetchUserCart", mock.Anything, "U1").Return(teaCart(0), nil).Once()

	cart, err = uc.RemoveFromCart(ctx, "U1", cart.Items[0])
	require.NoError(t, err)
	assert.Equal(t, 0, cart.ItemCount)
	assert.True(t, cart.TotalPrice.IsZero())

	carts.AssertExpectations(t)
}

func TestCartUsecase_UpdateQuantityNonPositiveRemoves(t *testing.T) {
	for _, qty := range []int64{0, -1, -5} {
		carts := new(CartGatewayMock)
		uc := usecase.NewCartUsecase(carts, nil)

		carts.On("RemoveFromCart", mock.Anything, "U1", "P1").Return(nil).Once()
		carts.On("FetchUserCart", mock.Anything, "U1").Return(teaCart(0), nil).Once()

		cart, err := uc.UpdateQuantity(context.Background(), "U1", teaCart(2).Items[0], qty)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		carts.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
		carts.AssertExpectations(t)
	}
}

func TestCartUsecase_AddQuantityRules(t *testing.T) {
	ctx := context.Background()
	carts := new(CartGatewayMock)
	uc := usecase.NewCartUsecase(carts, nil)

	_, err := uc.AddToCart(ctx, "U1", "P1", -1)
	assertErrContains(t, err, "invalid quantity")

	_, err = uc.AddToCart(ctx, "", "P1", 1)
	assertErrContains(t, err, "no user selected")
	carts.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything)

	//0は1個として追加
	carts.On("AddToCart", mock.Anything, repo.AddToCartInput{UserNo: "U1", ProductNo: "P1", Quantity: 1}).
		Return(model.CartItem{No: "C1"}, nil).Once()
	carts.On("FetchUserCart", mock.Anything, "U1").Return(teaCart(1), nil).Once()

	_, err = uc.AddToCart(ctx, "U1", "P1", 0)
	require.NoError(t, err)
	carts.AssertExpectations(t)
}

func TestCartUsecase_UpstreamFailureIs502(t *testing.T) {
	carts := new(CartGatewayMock)
	uc := usecase.NewCartUsecase(carts, nil)

	carts.On("FetchUserCart", mock.Anything, "U1").Return(model.UserCart{}, errors.New("timeout"))

	cart, err := uc.FetchUserCart(context.Background(), "U1")
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Status)
	assert.Equal(t, "load cart failed", he.Message)
	assert.NotNil(t, cart.Items)
}

func TestCartUsecase_FetchDefaultsMissingFields(t *testing.T) {
	carts := new(CartGatewayMock)
	uc := usecase.NewCartUsecase(carts, nil)

	carts.On("FetchUserCart", mock.Anything, "U1").Return(model.UserCart{}, nil)

	cart, err := uc.FetchUserCart(context.Background(), "U1")
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Equal(t, 0, cart.ItemCount)
	assert.True(t, cart.TotalPrice.IsZero())
}

// 上流カートの簡易版（同一商品は加算、合計は単価×数量）
type memoryCartUpstream struct {
	prices map[string]model.Money
	items  []model.CartItem
	seq    int
}

func (f *memoryCartUpstream) FetchUserCart(ctx context.Context, userNo string) (model.UserCart, error) {
	cart := model.EmptyCart()
	for _, it := range f.items {
		if it.UserNo != userNo {
			continue
		}
		it.TotalPrice = it.UnitPrice.MulQty(it.Quantity)
		cart.Items = append(cart.Items, it)
		cart.TotalPrice = cart.TotalPrice.Add(it.TotalPrice)
	}
	cart.ItemCount = len(cart.Items)
	return cart, nil
}

func (f *memoryCartUpstream) AddToCart(ctx context.Context, in repo.AddToCartInput) (model.CartItem, error) {
	for i, it := range f.items {
		if it.UserNo == in.UserNo && it.ProductNo == in.ProductNo {
			f.items[i].Quantity += in.Quantity
			return f.items[i], nil
		}
	}
	f.seq++
	it := model.CartItem{
		No: fmt.Sprintf("C%d", f.seq), UserNo: in.UserNo, ProductNo: in.ProductNo,
		Quantity: in.Quantity, UnitPrice: f.prices[in.ProductNo],
	}
	f.items = append(f.items, it)
	return it, nil
}

func (f *memoryCartUpstream) UpdateQuantity(ctx context.Context, itemNo string, quantity int64) (model.CartItem, error) {
	for i, it := range f.items {
		if it.No == itemNo {
			f.items[i].Quantity = quantity
			return f.items[i], nil
		}
	}
	return model.CartItem{}, errors.New("not found")
}

func (f *memoryCartUpstream) RemoveFromCart(ctx context.Context, userNo string, productNo string) error {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.UserNo == userNo && it.ProductNo == productNo {
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return nil
}

func (f *memoryCartUpstream) ClearCart(ctx context.Context, userNo string) error {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.UserNo != userNo {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func TestCartUsecase_AddThenRemoveRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	upstream := &memoryCartUpstream{prices: map[string]model.Money{
		"P1": model.MoneyFromInt(50),
		"P2": model.ParseMoney("120.50"),
	}}
	uc := usecase.NewCartUsecase(upstream, nil)

	//既にP2が1個入っている
	_, err := uc.AddToCart(ctx, "U1", "P2", 1)
	require.NoError(t, err)
	before, err := uc.FetchUserCart(ctx, "U1")
	require.NoError(t, err)
	require.Equal(t, 1, before.ItemCount)

	added, err := uc.AddToCart(ctx, "U1", "P1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, added.ItemCount)
	assert.True(t, added.TotalPrice.Equal(before.TotalPrice.Add(model.MoneyFromInt(100))))

	var p1 model.CartItem
	for _, it := range added.Items {
		if it.ProductNo == "P1" {
			p1 = it
		}
	}
	after, err := uc.RemoveFromCart(ctx, "U1", p1)
	require.NoError(t, err)

	assert.Equal(t, before.ItemCount, after.ItemCount)
	assert.True(t, before.TotalPrice.Equal(after.TotalPrice), "before=%s after=%s", before.TotalPrice, after.TotalPrice)
	require.Len(t, after.Items, 1)
	assert.Equal(t, "P2", after.Items[0].ProductNo)
	assert.Equal(t, int64(1), after.Items[0].Quantity)
}
