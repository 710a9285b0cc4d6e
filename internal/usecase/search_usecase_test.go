package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"backoffice/internal/domain/model"
	"backoffice/internal/usecase"
)

func TestSearchUsecase_EmptyKeywordSkipsCall(t *testing.T) {
	users := new(UserDirectoryMock)
	products := new(ProductCatalogMock)
	uc := usecase.NewSearchUsecase(users, products, nil)

	res := uc.SearchUsers(context.Background(), "   ")
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Equal(t, "", res.Error)

	pres := uc.SearchProducts(context.Background(), "")
	assert.Empty(t, pres.Items)

	users.AssertNotCalled(t, "SearchUsers", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
}

func TestSearchUsecase_SearchUsers_FixedPaging(t *testing.T) {
	users := new(UserDirectoryMock)
	uc := usecase.NewSearchUsecase(users, new(ProductCatalogMock), nil)

	q := model.PageQuery{Page: 1, PageSize: 20, Keyword: "tanaka"}
	users.On("SearchUsers", mock.Anything, q).
		Return(model.Page[model.User]{List: []model.User{{No: "U1", Nickname: "tanaka"}}, Total: 1}, nil)

	res := uc.SearchUsers(context.Background(), "  tanaka ")
	assert.Len(t, res.Items, 1)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, "", res.Error)
	users.AssertExpectations(t)
}

func TestSearchUsecase_FailureIsEmptyResult(t *testing.T) {
	products := new(ProductCatalogMock)
	uc := usecase.NewSearchUsecase(new(UserDirectoryMock), products, nil)

	products.On("SearchProducts", mock.Anything, mock.Anything).
		Return(model.Page[model.Product]{}, errors.New("connection refused"))

	res := uc.SearchProducts(context.Background(), "tea")
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, "search products failed", res.Error)
}
