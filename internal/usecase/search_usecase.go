package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
)

// 検索は常に1ページ目・20件
const (
	searchPage     = 1
	searchPageSize = 20
)

// 検索結果。失敗時もItemsは空配列で、Errorに理由が入る。
type SearchResult[T any] struct {
	Items []T    `json:"items"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

func emptyResult[T any](errMsg string) SearchResult[T] {
	return SearchResult[T]{Items: []T{}, Total: 0, Error: errMsg}
}

// 会員・商品の入力中検索
type SearchUsecase struct {
	users    repo.UserDirectory
	products repo.ProductCatalog
	log      *zap.Logger
}

// DI
func NewSearchUsecase(users repo.UserDirectory, products repo.ProductCatalog, log *zap.Logger) *SearchUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &SearchUsecase{users: users, products: products, log: log}
}

// 空のキーワードは通信しない。失敗は空の結果として返す。
func (u *SearchUsecase) SearchUsers(ctx context.Context, keyword string) SearchResult[model.User] {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return emptyResult[model.User]("")
	}

	page, err := u.users.SearchUsers(ctx, model.PageQuery{Page: searchPage, PageSize: searchPageSize, Keyword: kw})
	if err != nil {
		u.log.Warn("search users failed", zap.String("keyword", kw), zap.Error(err))
		return emptyResult[model.User]("search users failed")
	}
	return SearchResult[model.User]{Items: page.List, Total: page.Total}
}

func (u *SearchUsecase) SearchProducts(ctx context.Context, keyword string) SearchResult[model.Product] {
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return emptyResult[model.Product]("")
	}

	page, err := u.products.SearchProducts(ctx, model.PageQuery{Page: searchPage, PageSize: searchPageSize, Keyword: kw})
	if err != nil {
		u.log.Warn("search products failed", zap.String("keyword", kw), zap.Error(err))
		return emptyResult[model.Product]("search products failed")
	}
	return SearchResult[model.Product]{Items: page.List, Total: page.Total}
}
