package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"backoffice/internal/domain/model"
	repo "backoffice/internal/repository"
)

// 画面に返すウィザードの状態
type WizardView struct {
	ID           string           `json:"id"`
	Step         model.WizardStep `json:"step"`
	StepName     string           `json:"stepName"`
	SelectedUser *model.User      `json:"selectedUser"`
	Items        []model.CartItem `json:"items"`
	ItemCount    int              `json:"itemCount"`
	Total        model.Money      `json:"total"`
	Revision     uint64           `json:"revision"`
}

func NewWizardView(w *model.OrderWizard) WizardView {
	items := w.CartItems
	if items == nil {
		items = []model.CartItem{}
	}
	return WizardView{
		ID:           w.ID,
		Step:         w.Step,
		StepName:     w.Step.String(),
		SelectedUser: w.SelectedUser,
		Items:        items,
		ItemCount:    w.ItemCount(),
		Total:        w.CartTotal,
		Revision:     w.CartRevision,
	}
}

// 送信成功。注文一覧の再読み込みを促す。
type SubmitOutput struct {
	OrderNo       string      `json:"orderNo"`
	ItemCount     int         `json:"itemCount"`
	Total         model.Money `json:"total"`
	RefreshOrders bool        `json:"refreshOrders"`
	Wizard        WizardView  `json:"wizard"`
}

// OrderWizardUsecase はウィザード1件ごとの読み込み → 遷移 → 保存。
// 保存はVersionで比べるので、古い応答が新しい状態を上書きすることはない。
type OrderWizardUsecase struct {
	sessions repo.WizardSessionRepository
	search   *SearchUsecase
	cart     *CartUsecase
	submit   *OrderSubmitUsecase
	ids      IDGenerator
	clock    Clock
	log      *zap.Logger
}

// DI
func NewOrderWizardUsecase(
	sessions repo.WizardSessionRepository,
	search *SearchUsecase,
	cart *CartUsecase,
	submit *OrderSubmitUsecase,
	ids IDGenerator,
	clock Clock,
	log *zap.Logger,
) *OrderWizardUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &OrderWizardUsecase{
		sessions: sessions,
		search:   search,
		cart:     cart,
		submit:   submit,
		ids:      ids,
		clock:    clock,
		log:      log,
	}
}

func (u *OrderWizardUsecase) Start(ctx context.Context, actorID int64) (WizardView, error) {
	if actorID <= 0 {
		return WizardView{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	w := model.NewOrderWizard(u.ids.NewID(), actorID, u.clock.Now())
	if err := u.sessions.Create(ctx, w); err != nil {
		return WizardView{}, u.wizardError(err)
	}
	return NewWizardView(w), nil
}

func (u *OrderWizardUsecase) Get(ctx context.Context, actorID int64, id string) (WizardView, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	return NewWizardView(w), nil
}

// 破棄（画面を閉じた・CLIの送信後）
func (u *OrderWizardUsecase) Discard(ctx context.Context, actorID int64, id string) error {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return err
	}
	if err := u.sessions.Delete(ctx, w.ID); err != nil {
		return u.wizardError(err)
	}
	return nil
}

// 会員検索。結果は選択候補として覚えておく。
func (u *OrderWizardUsecase) SearchUsers(ctx context.Context, actorID int64, id string, keyword string) (SearchResult[model.User], error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return emptyResult[model.User](""), err
	}
	if w.Step != model.StepSelectingUser {
		return emptyResult[model.User](""), u.wizardError(model.ErrInvalidTransition)
	}

	res := u.search.SearchUsers(ctx, keyword)
	w.SetUserCandidates(res.Items)
	if err := u.save(ctx, w); err != nil {
		return emptyResult[model.User](""), err
	}
	return res, nil
}

func (u *OrderWizardUsecase) SelectUser(ctx context.Context, actorID int64, id string, userNo string) (WizardView, error) {
	userNo = strings.TrimSpace(userNo)
	if userNo == "" {
		return WizardView{}, NewHTTPError(http.StatusBadRequest, "invalid userNo")
	}

	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	if err := w.SelectUser(userNo); err != nil {
		return WizardView{}, u.wizardError(err)
	}
	if err := u.save(ctx, w); err != nil {
		return WizardView{}, err
	}
	return NewWizardView(w), nil
}

// 次へ。1→2はカートを取ってから進む（取得失敗なら進まない）。
func (u *OrderWizardUsecase) Next(ctx context.Context, actorID int64, id string) (WizardView, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	if err := w.CanAdvance(); err != nil {
		return WizardView{}, u.wizardError(err)
	}

	if w.Step == model.StepSelectingUser {
		if err := u.refresh(ctx, w, func() (model.UserCart, error) {
			return u.cart.FetchUserCart(ctx, w.SelectedUser.No)
		}); err != nil {
			return WizardView{}, err
		}
	}

	if _, err := w.Advance(); err != nil {
		return WizardView{}, u.wizardError(err)
	}
	if err := u.save(ctx, w); err != nil {
		return WizardView{}, err
	}
	return NewWizardView(w), nil
}

func (u *OrderWizardUsecase) Back(ctx context.Context, actorID int64, id string) (WizardView, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	if err := w.Back(); err != nil {
		return WizardView{}, u.wizardError(err)
	}
	if err := u.save(ctx, w); err != nil {
		return WizardView{}, err
	}
	return NewWizardView(w), nil
}

// キャンセル。どの段階からでも初期状態へ。
func (u *OrderWizardUsecase) Reset(ctx context.Context, actorID int64, id string) (WizardView, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	w.Reset()
	if err := u.save(ctx, w); err != nil {
		return WizardView{}, err
	}
	return NewWizardView(w), nil
}

func (u *OrderWizardUsecase) SearchProducts(ctx context.Context, actorID int64, id string, keyword string) (SearchResult[model.Product], error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return emptyResult[model.Product](""), err
	}
	if err := w.CanEditCart(); err != nil {
		return emptyResult[model.Product](""), u.wizardError(err)
	}
	return u.search.SearchProducts(ctx, keyword), nil
}

func (u *OrderWizardUsecase) AddItem(ctx context.Context, actorID int64, id string, productNo string, quantity int64) (WizardView, error) {
	return u.mutateCart(ctx, actorID, id, func(w *model.OrderWizard) (model.UserCart, error) {
		return u.cart.AddToCart(ctx, w.SelectedUser.No, strings.TrimSpace(productNo), quantity)
	})
}

// 0以下は削除
func (u *OrderWizardUsecase) UpdateItem(ctx context.Context, actorID int64, id string, itemNo string, quantity int64) (WizardView, error) {
	return u.mutateCart(ctx, actorID, id, func(w *model.OrderWizard) (model.UserCart, error) {
		item, ok := w.FindCartItem(itemNo)
		if !ok {
			return model.UserCart{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return u.cart.UpdateQuantity(ctx, w.SelectedUser.No, item, quantity)
	})
}

func (u *OrderWizardUsecase) RemoveItem(ctx context.Context, actorID int64, id string, itemNo string) (WizardView, error) {
	return u.mutateCart(ctx, actorID, id, func(w *model.OrderWizard) (model.UserCart, error) {
		item, ok := w.FindCartItem(itemNo)
		if !ok {
			return model.UserCart{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return u.cart.RemoveFromCart(ctx, w.SelectedUser.No, item)
	})
}

func (u *OrderWizardUsecase) RefreshCart(ctx context.Context, actorID int64, id string) (WizardView, error) {
	return u.mutateCart(ctx, actorID, id, func(w *model.OrderWizard) (model.UserCart, error) {
		return u.cart.FetchUserCart(ctx, w.SelectedUser.No)
	})
}

// 送信。確認画面からのみ。
// フォームを検証してから送信中として保存し、同じウィザードからの二重送信を409にする。
func (u *OrderWizardUsecase) Submit(ctx context.Context, actorID int64, id string, form OrderForm) (SubmitOutput, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return SubmitOutput{}, err
	}
	if err := w.BeginSubmit(); err != nil {
		return SubmitOutput{}, u.wizardError(err)
	}
	//入力エラーなら保存せずに返す（状態は変えない）
	form, err = u.submit.ValidateForm(form)
	if err != nil {
		return SubmitOutput{}, err
	}
	if err := u.save(ctx, w); err != nil {
		return SubmitOutput{}, err
	}

	res, err := u.submit.Submit(ctx, SubmitInput{
		ActorID:  actorID,
		WizardID: w.ID,
		User:     w.SelectedUser,
		Items:    w.CartItems,
		Total:    w.CartTotal,
		Form:     form,
	})
	if err != nil {
		w.AbortSubmit()
		if saveErr := u.save(context.WithoutCancel(ctx), w); saveErr != nil {
			u.log.Warn("release wizard after failed submit failed",
				zap.String("wizard_id", w.ID), zap.Error(saveErr))
		}
		return SubmitOutput{}, err
	}

	w.Reset()
	if err := u.save(context.WithoutCancel(ctx), w); err != nil {
		//注文はできているので成功として返す
		u.log.Warn("reset wizard after submit failed",
			zap.String("wizard_id", w.ID), zap.String("order_no", res.OrderNo), zap.Error(err))
	}

	return SubmitOutput{
		OrderNo:       res.OrderNo,
		ItemCount:     res.ItemCount,
		Total:         res.Total,
		RefreshOrders: true,
		Wizard:        NewWizardView(w),
	}, nil
}

func (u *OrderWizardUsecase) mutateCart(ctx context.Context, actorID int64, id string, op func(w *model.OrderWizard) (model.UserCart, error)) (WizardView, error) {
	w, err := u.load(ctx, actorID, id)
	if err != nil {
		return WizardView{}, err
	}
	if err := w.CanEditCart(); err != nil {
		return WizardView{}, u.wizardError(err)
	}
	if err := u.refresh(ctx, w, func() (model.UserCart, error) { return op(w) }); err != nil {
		return WizardView{}, err
	}

	w.Touch(u.clock.Now())
	err = u.sessions.Save(ctx, w)
	if errors.Is(err, repo.ErrWizardConflict) {
		//上流のカートは変更済み。最新のウィザードに取得したカートを載せ直す
		w, err = u.reapplyCart(ctx, w)
	}
	if err != nil {
		return WizardView{}, u.wizardError(err)
	}
	return NewWizardView(w), nil
}

// 載せ直すのは同じ会員でカートを触れる段階のときだけ。それ以外はConflictのまま。
func (u *OrderWizardUsecase) reapplyCart(ctx context.Context, applied *model.OrderWizard) (*model.OrderWizard, error) {
	latest, err := u.sessions.Find(ctx, applied.ID)
	if err != nil {
		return nil, err
	}
	if latest.Owner != applied.Owner {
		return nil, repo.ErrWizardNotFound
	}
	if latest.CanEditCart() != nil || latest.SelectedUser.No != applied.SelectedUser.No {
		return nil, repo.ErrWizardConflict
	}

	gen, err := latest.BeginCartRefresh()
	if err != nil {
		return nil, err
	}
	cart := model.UserCart{Items: applied.CartItems, TotalPrice: applied.CartTotal, ItemCount: applied.ItemCount()}
	if err := latest.ApplyCart(gen, cart); err != nil {
		return nil, err
	}
	latest.Touch(u.clock.Now())
	if err := u.sessions.Save(ctx, latest); err != nil {
		return nil, err
	}
	return latest, nil
}

// 世代番号を取ってから取得し、同じ世代のときだけ反映する
func (u *OrderWizardUsecase) refresh(ctx context.Context, w *model.OrderWizard, fetch func() (model.UserCart, error)) error {
	gen, err := w.BeginCartRefresh()
	if err != nil {
		return u.wizardError(err)
	}
	cart, err := fetch()
	if err != nil {
		w.AbortCartRefresh(gen)
		return err
	}
	if err := w.ApplyCart(gen, cart); err != nil {
		return u.wizardError(err)
	}
	return nil
}

func (u *OrderWizardUsecase) load(ctx context.Context, actorID int64, id string) (*model.OrderWizard, error) {
	if actorID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	w, err := u.sessions.Find(ctx, id)
	if err != nil {
		return nil, u.wizardError(err)
	}
	//他の管理者のウィザードは見せない
	if w.Owner != actorID {
		return nil, u.wizardError(repo.ErrWizardNotFound)
	}
	return w, nil
}

func (u *OrderWizardUsecase) save(ctx context.Context, w *model.OrderWizard) error {
	w.Touch(u.clock.Now())
	if err := u.sessions.Save(ctx, w); err != nil {
		return u.wizardError(err)
	}
	return nil
}

func (u *OrderWizardUsecase) wizardError(err error) error {
	switch {
	case errors.Is(err, model.ErrNoUserSelected):
		return NewHTTPError(http.StatusBadRequest, "no user selected")
	case errors.Is(err, model.ErrCartEmpty):
		return NewHTTPError(http.StatusBadRequest, "cart is empty")
	case errors.Is(err, model.ErrUserNotCandidate):
		return NewHTTPError(http.StatusBadRequest, "user not in search results")
	case errors.Is(err, model.ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, "invalid step")
	case errors.Is(err, model.ErrRefreshInFlight):
		return NewHTTPError(http.StatusConflict, "cart refresh in flight")
	case errors.Is(err, model.ErrSubmitInFlight):
		return NewHTTPError(http.StatusConflict, "submit in flight")
	case errors.Is(err, model.ErrStaleRefresh):
		return NewHTTPError(http.StatusConflict, "stale cart refresh")
	case errors.Is(err, repo.ErrWizardNotFound):
		return NewHTTPError(http.StatusNotFound, "wizard not found")
	case errors.Is(err, repo.ErrWizardConflict):
		return NewHTTPError(http.StatusConflict, "wizard was modified, reload it")
	default:
		u.log.Error("wizard session store failed", zap.Error(err))
		return NewHTTPError(http.StatusInternalServerError, "session store error")
	}
}
