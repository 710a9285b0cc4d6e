package model

import "time"

// 会員（注文の持ち主）。ウィザードでは表示と外部キーにだけ使う。
type User struct {
	No        string    `gorm:"primaryKey;type:varchar(64)" json:"no"`
	Nickname  string    `gorm:"type:varchar(255);not null;index" json:"nickname"`
	Phone     string    `gorm:"type:varchar(30);index" json:"phone"`
	AuthLogin string    `gorm:"type:varchar(255)" json:"authLogin,omitempty"`
	Avatar    string    `gorm:"type:varchar(512)" json:"avatar,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt,omitzero"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt,omitzero"`
}

// 候補リストの表示名（nickname - phone (authLogin)）
func (u User) Label() string {
	label := u.Nickname + " - " + u.Phone
	if u.AuthLogin != "" {
		label += " (" + u.AuthLogin + ")"
	}
	return label
}
