package usecase

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
	log       *zap.Logger
}

// DI
func NewAuditLogUsecase(auditRepo repo.AuditLogRepository, log *zap.Logger) *AuditLogUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogUsecase{auditRepo: auditRepo, log: log}
}

// 監査ログ一覧（新しい順）
func (u *AuditLogUsecase) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if u.auditRepo == nil {
		return []model.AuditLog{}, nil
	}
	if filter.Action != nil && !filter.Action.Valid() {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid action")
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid paging")
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedFrom.After(*filter.CreatedTo) {
		return nil, NewHTTPError(http.StatusBadRequest, "from must be before to")
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		u.log.Error("list audit logs failed", zap.Error(err))
		return nil, err
	}
	return logs, nil
}
