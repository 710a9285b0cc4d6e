package devapi

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	infraRepo "backoffice/internal/infra/repository"
	"backoffice/internal/usecase"
)

// gormの保存先でServiceを組み立てる（main とテストで共通）
func NewServiceFromDB(gdb *gorm.DB, log *zap.Logger) *Service {
	return NewService(
		infraRepo.NewUserGormRepository(gdb),
		infraRepo.NewProductGormRepository(gdb),
		infraRepo.NewCartGormRepository(gdb),
		infraRepo.NewOrderGormRepository(gdb),
		infraRepo.NewTxManagerGorm(gdb),
		usecase.UUIDGenerator{},
		log,
	)
}
