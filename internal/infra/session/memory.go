package session

import (
	"context"
	"sync"

	"backoffice/internal/domain/model"
	"backoffice/internal/repository"
)

// プロセス内のウィザード保存先（CLI・テスト用）。
// Versionの扱いはredis版と同じ。期限切れは無い。
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string]model.OrderWizard
}

var _ repository.WizardSessionRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: map[string]model.OrderWizard{}}
}

func (r *MemoryRepository) Create(ctx context.Context, w *model.OrderWizard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[w.ID]; ok {
		return repository.ErrWizardConflict
	}
	w.Version = 1
	r.data[w.ID] = clone(*w)
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, id string) (*model.OrderWizard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.data[id]
	if !ok {
		return nil, repository.ErrWizardNotFound
	}
	c := clone(w)
	return &c, nil
}

func (r *MemoryRepository) Save(ctx context.Context, w *model.OrderWizard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[w.ID]
	if !ok {
		return repository.ErrWizardNotFound
	}
	if stored.Version != w.Version {
		return repository.ErrWizardConflict
	}
	w.Version++
	r.data[w.ID] = clone(*w)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// 呼び出し側のスライスと共有しない。再取得の世代はredisと同じく残さない。
func clone(w model.OrderWizard) model.OrderWizard {
	w.PendingRefresh, w.RefreshSeq = 0, 0
	w.UserCandidates = append([]model.User{}, w.UserCandidates...)
	w.CartItems = append([]model.CartItem{}, w.CartItems...)
	if w.SelectedUser != nil {
		u := *w.SelectedUser
		w.SelectedUser = &u
	}
	return w
}
