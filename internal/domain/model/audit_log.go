package model

import "time"

// 注文作成まわりの操作
type AuditAction string

const (
	//注文と明細の作成に成功
	AuditActionCreateOrder AuditAction = "CREATE_ORDER"
	//注文の作成に失敗（明細の失敗を含む）
	AuditActionCreateOrderFailed AuditAction = "CREATE_ORDER_FAILED"
	//明細失敗のあと注文を削除した
	AuditActionRollbackOrder AuditAction = "ROLLBACK_ORDER"
	//削除もできず注文だけ残った。手動で片付ける。
	AuditActionOrphanedOrder AuditAction = "ORPHANED_ORDER"
)

func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreateOrder, AuditActionCreateOrderFailed, AuditActionRollbackOrder, AuditActionOrphanedOrder:
		return true
	}
	return false
}

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder AuditResourceType = "order"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どうなったか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID（JWTのsub）
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//注文番号。作成前に失敗したときは空。
	ResourceNo string `gorm:"type:varchar(64);index" json:"resource_no"`

	//ウィザードのID
	WizardID string `gorm:"type:varchar(64);index" json:"wizard_id"`

	//JSON文字列で保存する。
	DetailJSON string `gorm:"type:text" json:"detail_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
