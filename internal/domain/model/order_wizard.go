package model

import (
	"errors"
	"time"
)

// ウィザードの段階。1→2→3の一方通行（3→2だけ戻れる）。
type WizardStep int

const (
	StepSelectingUser     WizardStep = 1
	StepSelectingProducts WizardStep = 2
	StepConfirmingOrder   WizardStep = 3
)

func (s WizardStep) String() string {
	switch s {
	case StepSelectingUser:
		return "SelectingUser"
	case StepSelectingProducts:
		return "SelectingProducts"
	case StepConfirmingOrder:
		return "ConfirmingOrder"
	default:
		return "Unknown"
	}
}

var (
	ErrNoUserSelected    = errors.New("no user selected")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUserNotCandidate  = errors.New("user not in search results")
	ErrRefreshInFlight   = errors.New("cart refresh in flight")
	ErrStaleRefresh      = errors.New("stale cart refresh")
	ErrSubmitInFlight    = errors.New("submit in flight")
)

// 注文作成ウィザードの状態。
// 選択中ユーザー・カートのキャッシュ・合計・段階を持つ。
type OrderWizard struct {
	ID    string     `json:"id"`
	Step  WizardStep `json:"step"`
	Owner int64      `json:"owner"`

	SelectedUser   *User  `json:"selectedUser"`
	UserCandidates []User `json:"userCandidates"`

	CartItems    []CartItem `json:"cartItems"`
	CartTotal    Money      `json:"cartTotal"`
	CartRevision uint64     `json:"cartRevision"`

	//1回の読み込み中だけ使うカート再取得の世代。0なら無し。保存はしない。
	//リクエストをまたいだ古い応答の上書きは Version の比較で防ぐ。
	PendingRefresh uint64 `json:"-"`
	RefreshSeq     uint64 `json:"-"`

	//送信中はResetしか受け付けない
	Submitting bool `json:"submitting"`

	//保存時の楽観ロック用。読み込んだ後に別の保存があればSaveが失敗する。
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewOrderWizard(id string, owner int64, now time.Time) *OrderWizard {
	return &OrderWizard{
		ID:             id,
		Step:           StepSelectingUser,
		Owner:          owner,
		UserCandidates: []User{},
		CartItems:      []CartItem{},
		CartTotal:      ZeroMoney,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (w *OrderWizard) ItemCount() int {
	return len(w.CartItems)
}

// 直近のユーザー検索結果を候補として覚える
func (w *OrderWizard) SetUserCandidates(users []User) {
	if users == nil {
		users = []User{}
	}
	w.UserCandidates = users
}

// ユーザー選択（段階1のみ）。別ユーザーに変えたらカートは捨てる。
func (w *OrderWizard) SelectUser(userNo string) error {
	if w.Step != StepSelectingUser {
		return ErrInvalidTransition
	}
	for _, u := range w.UserCandidates {
		if u.No != userNo {
			continue
		}
		if w.SelectedUser == nil || w.SelectedUser.No != u.No {
			w.clearCart()
		}
		selected := u
		w.SelectedUser = &selected
		return nil
	}
	return ErrUserNotCandidate
}

// 次へ進めるか
func (w *OrderWizard) CanAdvance() error {
	if w.Submitting {
		return ErrSubmitInFlight
	}
	if w.PendingRefresh != 0 {
		return ErrRefreshInFlight
	}
	switch w.Step {
	case StepSelectingUser:
		if w.SelectedUser == nil {
			return ErrNoUserSelected
		}
		return nil
	case StepSelectingProducts:
		if len(w.CartItems) == 0 {
			return ErrCartEmpty
		}
		return nil
	default:
		return ErrInvalidTransition
	}
}

// 次へ。段階1→2ではカート再取得が必要（戻り値true）。
func (w *OrderWizard) Advance() (needsRefresh bool, err error) {
	if err := w.CanAdvance(); err != nil {
		return false, err
	}
	switch w.Step {
	case StepSelectingUser:
		w.Step = StepSelectingProducts
		return true, nil
	default:
		w.Step = StepConfirmingOrder
		return false, nil
	}
}

// 戻る（確認→商品選択だけ）
func (w *OrderWizard) Back() error {
	if w.Submitting {
		return ErrSubmitInFlight
	}
	if w.Step != StepConfirmingOrder {
		return ErrInvalidTransition
	}
	w.Step = StepSelectingProducts
	return nil
}

// キャンセル・送信成功後。段階に関係なく初期状態へ。
func (w *OrderWizard) Reset() {
	w.Step = StepSelectingUser
	w.SelectedUser = nil
	w.UserCandidates = []User{}
	w.Submitting = false
	w.clearCart()
}

// 送信の開始。確認画面でカート再取得中でないこと。
func (w *OrderWizard) BeginSubmit() error {
	switch {
	case w.Submitting:
		return ErrSubmitInFlight
	case w.Step != StepConfirmingOrder:
		return ErrInvalidTransition
	case w.PendingRefresh != 0:
		return ErrRefreshInFlight
	case w.SelectedUser == nil:
		return ErrNoUserSelected
	case len(w.CartItems) == 0:
		return ErrCartEmpty
	}
	w.Submitting = true
	return nil
}

// 送信失敗。確認画面のまま再送できる。
func (w *OrderWizard) AbortSubmit() {
	w.Submitting = false
}

// カートを触れるか（ユーザー選択済みで段階2以降）
func (w *OrderWizard) CanEditCart() error {
	if w.Submitting {
		return ErrSubmitInFlight
	}
	if w.SelectedUser == nil {
		return ErrNoUserSelected
	}
	if w.Step == StepSelectingUser {
		return ErrInvalidTransition
	}
	return nil
}

// カート再取得の開始。世代番号を返す。
func (w *OrderWizard) BeginCartRefresh() (uint64, error) {
	if w.SelectedUser == nil {
		return 0, ErrNoUserSelected
	}
	w.RefreshSeq++
	w.PendingRefresh = w.RefreshSeq
	return w.PendingRefresh, nil
}

// 再取得の結果を反映。古い世代の結果は捨てる。
func (w *OrderWizard) ApplyCart(gen uint64, cart UserCart) error {
	if gen == 0 || gen != w.PendingRefresh {
		return ErrStaleRefresh
	}
	cart = cart.Normalize()
	w.CartItems = cart.Items
	w.CartTotal = cart.TotalPrice
	w.CartRevision++
	w.PendingRefresh = 0
	return nil
}

// 失敗時。状態はそのまま、実行中フラグだけ下ろす。
func (w *OrderWizard) AbortCartRefresh(gen uint64) {
	if gen != 0 && gen == w.PendingRefresh {
		w.PendingRefresh = 0
	}
}

func (w *OrderWizard) FindCartItem(no string) (CartItem, bool) {
	for _, it := range w.CartItems {
		if it.No == no {
			return it, true
		}
	}
	return CartItem{}, false
}

func (w *OrderWizard) Touch(now time.Time) {
	w.UpdatedAt = now
}

func (w *OrderWizard) clearCart() {
	w.CartItems = []CartItem{}
	w.CartTotal = ZeroMoney
	w.PendingRefresh = 0
}
