package repository

import (
	"context"
	"errors"
	"strings"

	"backoffice/internal/domain/model"
	domainrepo "backoffice/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// nickname / phone / auth_login / no の部分一致。大文字小文字は区別しない。
func (r *userGormRepository) Search(ctx context.Context, q model.PageQuery) ([]model.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.User{})

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		//会員番号でも引ける（"no" はクォートが要る）
		cond := r.db.Where("LOWER(nickname) LIKE ? OR phone LIKE ? OR LOWER(auth_login) LIKE ?", like, like, like).
			Or(clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: "no"}, like}})
		tx = tx.Where(cond)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.User{}, 0, err
	}

	users := []model.User{}
	offset := (q.Page - 1) * q.PageSize
	if err := tx.Order(byNo).Offset(offset).Limit(q.PageSize).Find(&users).Error; err != nil {
		return []model.User{}, 0, err
	}
	return users, total, nil
}

func (r *userGormRepository) FindByNo(ctx context.Context, userNo string) (model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where(map[string]any{"no": userNo}).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, domainrepo.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// seed用。noが同じなら上書き。
func (r *userGormRepository) Upsert(ctx context.Context, user model.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "no"}},
			DoUpdates: clause.AssignmentColumns([]string{"nickname", "phone", "auth_login", "avatar", "updated_at"}),
		}).
		Create(&user).Error
}
