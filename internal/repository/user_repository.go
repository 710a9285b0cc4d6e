package repository

import (
	"context"
	"errors"

	"backoffice/internal/domain/model"
)

// 見つからないを統一
var ErrNotFound = errors.New("not found")

// 会員の保存・検索（devapi用）
type UserRepository interface {
	//nickname / phone / authLogin の部分一致
	Search(ctx context.Context, q model.PageQuery) ([]model.User, int64, error)
	FindByNo(ctx context.Context, userNo string) (model.User, error)
	Upsert(ctx context.Context, user model.User) error
}
