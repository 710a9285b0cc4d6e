package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
	"backoffice/internal/validator"
)

// 確認画面のフォーム
type OrderForm struct {
	ShipAddress string `json:"shipAddress" validate:"required,max=512"`
	Description string `json:"description" validate:"max=1000"`
	Remark      string `json:"remark" validate:"max=1000"`
	OperatorNo  string `json:"operatorNo" validate:"max=64"`
	CustomerNo  string `json:"customerNo" validate:"max=64"`
	LogisticsNo string `json:"logisticsNo" validate:"max=64"`
}

func (f OrderForm) trimmed() OrderForm {
	return OrderForm{
		ShipAddress: strings.TrimSpace(f.ShipAddress),
		Description: strings.TrimSpace(f.Description),
		Remark:      strings.TrimSpace(f.Remark),
		OperatorNo:  strings.TrimSpace(f.OperatorNo),
		CustomerNo:  strings.TrimSpace(f.CustomerNo),
		LogisticsNo: strings.TrimSpace(f.LogisticsNo),
	}
}

type SubmitInput struct {
	ActorID  int64
	WizardID string
	User     *model.User
	Items    []model.CartItem
	Total    model.Money
	Form     OrderForm
}

type SubmitResult struct {
	OrderNo   string      `json:"orderNo"`
	ItemCount int         `json:"itemCount"`
	Total     model.Money `json:"total"`
}

type SubmitOptions struct {
	//明細の作成に失敗したら注文を削除する
	RollbackOnItemFailure bool
	//成功後にカートを空にする（失敗しても結果は変えない）
	ClearCartAfterSubmit bool
}

// 注文作成 → 明細の一括作成。明細が成功して初めて成功扱い。
type OrderSubmitUsecase struct {
	orders    repo.OrderGateway
	carts     repo.CartGateway
	auditRepo repo.AuditLogRepository
	validate  *validator.Validator
	clock     Clock
	opts      SubmitOptions
	log       *zap.Logger
}

// auditRepo は nil 可（CLI）
func NewOrderSubmitUsecase(
	orders repo.OrderGateway,
	carts repo.CartGateway,
	auditRepo repo.AuditLogRepository,
	validate *validator.Validator,
	clock Clock,
	opts SubmitOptions,
	log *zap.Logger,
) *OrderSubmitUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderSubmitUsecase{
		orders:    orders,
		carts:     carts,
		auditRepo: auditRepo,
		validate:  validate,
		clock:     clock,
		opts:      opts,
		log:       log,
	}
}

// 前後の空白を落として検証する。ウィザードは状態を書く前に呼ぶ。
func (u *OrderSubmitUsecase) ValidateForm(form OrderForm) (OrderForm, error) {
	form = form.trimmed()
	if err := u.validate.Validate(form); err != nil {
		return OrderForm{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return form, nil
}

func (u *OrderSubmitUsecase) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	//通信する前に弾く
	if in.User == nil || in.User.No == "" {
		return SubmitResult{}, NewHTTPError(http.StatusBadRequest, "no user selected")
	}
	if len(in.Items) == 0 {
		return SubmitResult{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	form, err := u.ValidateForm(in.Form)
	if err != nil {
		return SubmitResult{}, err
	}

	total := in.Total
	if total.IsZero() {
		total = sumItems(in.Items)
	}

	log := u.log.With(zap.String("wizard_id", in.WizardID), zap.String("user_no", in.User.No))

	//注文を作成
	created, err := u.orders.CreateOrder(ctx, model.Order{
		UserNo:      in.User.No,
		ShipAddress: form.ShipAddress,
		OrderTotal:  total,
		OrderStatus: model.OrderStatusOrdered,
		Description: form.Description,
		Remark:      form.Remark,
		OperatorNo:  form.OperatorNo,
		CustomerNo:  form.CustomerNo,
		LogisticsNo: form.LogisticsNo,
	})
	if err != nil {
		log.Error("create order failed", zap.Error(err))
		u.record(ctx, in, model.AuditActionCreateOrderFailed, "", map[string]any{
			"stage": "order",
			"error": err.Error(),
		})
		return SubmitResult{}, upstreamError("create order failed")
	}
	log = log.With(zap.String("order_no", created.No))

	//明細は1リクエストでまとめて作る
	items := toOrderItems(created.No, in.Items)
	res, err := u.orders.CreateOrderItems(ctx, created.No, items)
	if err == nil && !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "batch reported failure"
		}
		err = &batchFailure{message: msg}
	}
	if err != nil {
		log.Error("create order items failed", zap.Error(err))
		u.record(ctx, in, model.AuditActionCreateOrderFailed, created.No, map[string]any{
			"stage": "items",
			"error": err.Error(),
		})
		u.compensate(ctx, in, created.No, log)
		return SubmitResult{}, upstreamError("create order failed")
	}

	u.record(ctx, in, model.AuditActionCreateOrder, created.No, map[string]any{
		"itemCount": len(items),
		"total":     total,
	})
	log.Info("order created", zap.Int("item_count", len(items)), zap.String("total", total.String()))

	if u.opts.ClearCartAfterSubmit && u.carts != nil {
		if err := u.carts.ClearCart(ctx, in.User.No); err != nil {
			log.Warn("clear cart after submit failed", zap.Error(err))
		}
	}

	return SubmitResult{OrderNo: created.No, ItemCount: len(items), Total: total}, nil
}

// 明細失敗時の後始末。削除できなければ孤立注文として残す。
func (u *OrderSubmitUsecase) compensate(ctx context.Context, in SubmitInput, orderNo string, log *zap.Logger) {
	if !u.opts.RollbackOnItemFailure {
		u.record(ctx, in, model.AuditActionOrphanedOrder, orderNo, map[string]any{
			"reason": "rollback disabled",
		})
		log.Warn("order left without items")
		return
	}

	//呼び出し元がキャンセルしていても削除は試す
	if err := u.orders.DeleteOrder(context.WithoutCancel(ctx), orderNo); err != nil {
		log.Error("rollback order failed", zap.Error(err))
		u.record(ctx, in, model.AuditActionOrphanedOrder, orderNo, map[string]any{
			"reason": "rollback failed",
			"error":  err.Error(),
		})
		return
	}
	log.Info("order rolled back")
	u.record(ctx, in, model.AuditActionRollbackOrder, orderNo, nil)
}

// 監査ログの失敗は結果を変えない
func (u *OrderSubmitUsecase) record(ctx context.Context, in SubmitInput, action model.AuditAction, orderNo string, detail map[string]any) {
	if u.auditRepo == nil {
		return
	}
	detailJSON := ""
	if detail != nil {
		if b, err := json.Marshal(detail); err == nil {
			detailJSON = string(b)
		}
	}
	if err := u.auditRepo.Create(context.WithoutCancel(ctx), model.AuditLog{
		ActorUserID:  in.ActorID,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceNo:   orderNo,
		WizardID:     in.WizardID,
		DetailJSON:   detailJSON,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		u.log.Warn("audit log failed", zap.String("action", string(action)), zap.Error(err))
	}
}

// success:false の応答
type batchFailure struct {
	message string
}

func (e *batchFailure) Error() string {
	return "order item batch failed: " + e.message
}

// カート明細 → 注文明細。割引なしなので finalPrice = totalPrice。
func toOrderItems(orderNo string, cartItems []model.CartItem) []model.OrderItem {
	items := make([]model.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		total := ci.TotalPrice
		if total.IsZero() {
			total = ci.UnitPrice.MulQty(ci.Quantity)
		}
		var snapshot *model.Product
		if ci.Product != nil {
			p := *ci.Product
			snapshot = &p
		}
		items = append(items, model.OrderItem{
			OrderNo:         orderNo,
			ProductNo:       ci.ProductNo,
			Quantity:        ci.Quantity,
			UnitPrice:       ci.UnitPrice,
			TotalPrice:      total,
			DiscountAmount:  model.ZeroMoney,
			FinalPrice:      total,
			Status:          model.OrderItemStatusPending,
			ProductSnapshot: snapshot,
		})
	}
	return items
}

func sumItems(items []model.CartItem) model.Money {
	total := model.ZeroMoney
	for _, it := range items {
		line := it.TotalPrice
		if line.IsZero() {
			line = it.UnitPrice.MulQty(it.Quantity)
		}
		total = total.Add(line)
	}
	return total
}
