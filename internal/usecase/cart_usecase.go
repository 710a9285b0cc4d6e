package usecase

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
)

// CartUsecase はユーザー別カート（サーバー側）の操作。
// 変更のあとは必ず取り直して、サーバーの合計をそのまま使う。
type CartUsecase struct {
	carts repo.CartGateway
	log   *zap.Logger
}

func NewCartUsecase(carts repo.CartGateway, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{carts: carts, log: log}
}

// カート取得。items / totalPrice が無くても空・0で返す。
func (u *CartUsecase) FetchUserCart(ctx context.Context, userNo string) (model.UserCart, error) {
	if strings.TrimSpace(userNo) == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "no user selected")
	}

	cart, err := u.carts.FetchUserCart(ctx, userNo)
	if err != nil {
		u.log.Warn("fetch cart failed", zap.String("user_no", userNo), zap.Error(err))
		return model.EmptyCart(), upstreamError("load cart failed")
	}
	return cart.Normalize(), nil
}

// 追加（同一商品は上流で加算）。数量0は1として扱う。
func (u *CartUsecase) AddToCart(ctx context.Context, userNo string, productNo string, quantity int64) (model.UserCart, error) {
	if strings.TrimSpace(userNo) == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "no user selected")
	}
	if strings.TrimSpace(productNo) == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "invalid productNo")
	}
	if quantity < 0 {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if quantity == 0 {
		quantity = 1
	}

	in := repo.AddToCartInput{UserNo: userNo, ProductNo: productNo, Quantity: quantity}
	if _, err := u.carts.AddToCart(ctx, in); err != nil {
		u.log.Warn("add to cart failed",
			zap.String("user_no", userNo), zap.String("product_no", productNo), zap.Error(err))
		return model.EmptyCart(), upstreamError("add to cart failed")
	}
	return u.FetchUserCart(ctx, userNo)
}

// 数量変更。0以下は削除になる（マイナス数量の明細は作らない）。
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userNo string, item model.CartItem, quantity int64) (model.UserCart, error) {
	if quantity <= 0 {
		return u.RemoveFromCart(ctx, userNo, item)
	}
	if strings.TrimSpace(userNo) == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "no user selected")
	}
	if item.No == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	if _, err := u.carts.UpdateQuantity(ctx, item.No, quantity); err != nil {
		u.log.Warn("update quantity failed",
			zap.String("user_no", userNo), zap.String("item_no", item.No), zap.Error(err))
		return model.EmptyCart(), upstreamError("update quantity failed")
	}
	return u.FetchUserCart(ctx, userNo)
}

// 削除は (user, product) で指定する
func (u *CartUsecase) RemoveFromCart(ctx context.Context, userNo string, item model.CartItem) (model.UserCart, error) {
	if strings.TrimSpace(userNo) == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "no user selected")
	}
	if item.ProductNo == "" {
		return model.EmptyCart(), NewHTTPError(http.StatusBadRequest, "invalid item")
	}

	if err := u.carts.RemoveFromCart(ctx, userNo, item.ProductNo); err != nil {
		u.log.Warn("remove from cart failed",
			zap.String("user_no", userNo), zap.String("product_no", item.ProductNo), zap.Error(err))
		return model.EmptyCart(), upstreamError("remove from cart failed")
	}
	return u.FetchUserCart(ctx, userNo)
}

func (u *CartUsecase) ClearCart(ctx context.Context, userNo string) error {
	if strings.TrimSpace(userNo) == "" {
		return NewHTTPError(http.StatusBadRequest, "no user selected")
	}
	if err := u.carts.ClearCart(ctx, userNo); err != nil {
		u.log.Warn("clear cart failed", zap.String("user_no", userNo), zap.Error(err))
		return upstreamError("clear cart failed")
	}
	return nil
}
