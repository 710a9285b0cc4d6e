package server

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/handler"
	"backoffice/internal/infra/adminapi"
	repo "backoffice/internal/repository"
	"backoffice/internal/usecase"
	"backoffice/internal/validator"
)

// ウィザードサービスの外部依存
type APIDeps struct {
	Upstream *adminapi.Client
	Sessions repo.WizardSessionRepository
	//nil なら監査ログ無し
	Audit repo.AuditLogRepository
}

// usecase → handler → ルートまで組み立てる
func NewAPI(cfg config.Config, log *zap.Logger, d APIDeps) *echo.Echo {
	search := usecase.NewSearchUsecase(d.Upstream, d.Upstream, log)
	cart := usecase.NewCartUsecase(d.Upstream, log)
	submit := usecase.NewOrderSubmitUsecase(
		d.Upstream,
		d.Upstream,
		d.Audit,
		validator.New(),
		usecase.SystemClock{},
		usecase.SubmitOptions{
			RollbackOnItemFailure: cfg.RollbackOnItemFailure,
			ClearCartAfterSubmit:  cfg.ClearCartAfterSubmit,
		},
		log,
	)
	wizard := usecase.NewOrderWizardUsecase(d.Sessions, search, cart, submit, usecase.UUIDGenerator{}, usecase.SystemClock{}, log)

	e := NewEcho(cfg, log)
	RegisterRoutes(e, cfg,
		handler.NewOrderWizardHandler(wizard),
		handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(d.Audit, log)),
	)
	return e
}
