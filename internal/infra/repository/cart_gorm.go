package repository

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// "no" はクォートして並べる
var byNo = clause.OrderByColumn{Column: clause.Column{Name: "no"}}

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカート明細（追加順）
func (r *CartGormRepository) ListByUserNo(ctx context.Context, userNo string) ([]model.CartItem, error) {
	items := []model.CartItem{}

	if err := r.db.WithContext(ctx).
		Where("user_no = ? AND status = ?", userNo, model.CartItemStatusActive).
		Order("added_at asc").
		Order(byNo).
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 同一商品は数量加算
func (r *CartGormRepository) UpsertByUserAndProduct(ctx context.Context, userNo string, productNo string, addQty int64, unitPrice model.Money, newNo string) (model.CartItem, error) {
	if addQty <= 0 {
		return model.CartItem{}, errors.New("invalid quantity")
	}

	var out model.CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_no = ? AND product_no = ?", userNo, productNo).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす（削除済みなら復活）
			item.Quantity += addQty
			item.Status = model.CartItemStatusActive
			res := tx.Model(&model.CartItem{}).
				Where(map[string]any{"no": item.No}).
				Updates(map[string]any{"quantity": item.Quantity, "status": item.Status, "updated_at": time.Now()})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			out = item
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		newItem := model.CartItem{
			No:        newNo,
			UserNo:    userNo,
			ProductNo: productNo,
			Quantity:  addQty,
			UnitPrice: unitPrice,
			Status:    model.CartItemStatusActive,
		}
		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}
		out = newItem
		return nil
	})
	if err != nil {
		return model.CartItem{}, err
	}
	return out, nil
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, itemNo string, qty int64) (model.CartItem, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where(map[string]any{"no": itemNo}).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now()})

	if res.Error != nil {
		return model.CartItem{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.CartItem{}, repo.ErrNotFound
	}
	return r.FindByNo(ctx, itemNo)
}

// 明細を取得
func (r *CartGormRepository) FindByNo(ctx context.Context, itemNo string) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where(map[string]any{"no": itemNo}).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

// 明細を削除
func (r *CartGormRepository) DeleteByUserAndProduct(ctx context.Context, userNo string, productNo string) error {
	res := r.db.WithContext(ctx).
		Where("user_no = ? AND product_no = ?", userNo, productNo).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// ユーザーの明細を全削除
func (r *CartGormRepository) ClearByUserNo(ctx context.Context, userNo string) error {
	return r.db.WithContext(ctx).
		Where("user_no = ?", userNo).
		Delete(&model.CartItem{}).Error
}
