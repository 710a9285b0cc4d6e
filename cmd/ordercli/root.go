package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/infra/adminapi"
	"backoffice/internal/infra/session"
	"backoffice/internal/usecase"
	"backoffice/internal/validator"
	"backoffice/pkg/logger"
)

// コマンド間で共有する部品
type app struct {
	cfg    config.Config
	log    *zap.Logger
	search *usecase.SearchUsecase
	cart   *usecase.CartUsecase
	wizard *usecase.OrderWizardUsecase
}

func newApp(cfg config.Config) *app {
	log := logger.MustNew(cfg.GoEnv)

	client := adminapi.NewClient(cfg.UpstreamBaseURL,
		adminapi.WithTimeout(cfg.UpstreamTimeout),
		adminapi.WithRateLimit(cfg.UpstreamRPS),
		adminapi.WithDefaultToken(cfg.UpstreamToken),
		adminapi.WithLogger(log.Named("upstream")),
	)

	search := usecase.NewSearchUsecase(client, client, log)
	cart := usecase.NewCartUsecase(client, log)
	//CLIは監査ログを持たない
	submit := usecase.NewOrderSubmitUsecase(client, client, nil, validator.New(), usecase.SystemClock{},
		usecase.SubmitOptions{
			RollbackOnItemFailure: cfg.RollbackOnItemFailure,
			ClearCartAfterSubmit:  cfg.ClearCartAfterSubmit,
		}, log)
	wizard := usecase.NewOrderWizardUsecase(session.NewMemoryRepository(), search, cart, submit,
		usecase.UUIDGenerator{}, usecase.SystemClock{}, log)

	return &app{cfg: cfg, log: log, search: search, cart: cart, wizard: wizard}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ordercli",
		Short:         "Back-office order tool (users, products, carts, orders)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireCLI(); err != nil {
				return err
			}
			*a = *newApp(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.AddCommand(
		newUsersCmd(a),
		newProductsCmd(a),
		newCartCmd(a),
		newOrderCmd(a),
	)
	return root
}
