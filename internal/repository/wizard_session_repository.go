package repository

import (
	"context"
	"errors"

	"backoffice/internal/domain/model"
)

var (
	ErrWizardNotFound = errors.New("wizard not found")
	//読み込んだ後に別の操作が保存した
	ErrWizardConflict = errors.New("wizard modified concurrently")
)

// ウィザードの状態を保存・取得する窓口
type WizardSessionRepository interface {
	//新規作成。Versionは1になる。
	Create(ctx context.Context, w *model.OrderWizard) error
	Find(ctx context.Context, id string) (*model.OrderWizard, error)
	//読み込んだVersionのままなら保存してVersionを進める。違えばErrWizardConflict。
	Save(ctx context.Context, w *model.OrderWizard) error
	Delete(ctx context.Context, id string) error
}
