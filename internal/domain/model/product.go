package model

import "time"

// 商品。ウィザードからは読み取りのみ。
type Product struct {
	No          string    `gorm:"primaryKey;type:varchar(64)" json:"no"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Price       Money     `gorm:"type:decimal(12,2);not null" json:"price"`
	Status      string    `gorm:"type:varchar(50)" json:"status,omitempty"`
	ImgURL      string    `gorm:"column:img_url;type:varchar(512)" json:"imgUrl,omitempty"`
	Specs       string    `gorm:"type:varchar(255)" json:"specs,omitempty"`
	Unit        string    `gorm:"type:varchar(50)" json:"unit,omitempty"`
	CategoryNo  string    `gorm:"type:varchar(64);index" json:"categoryNo,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createTime,omitzero"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updateTime,omitzero"`
}

// ステータス未設定は「未知状態」
func (p Product) Label() string {
	status := p.Status
	if status == "" {
		status = "未知状態"
	}
	return p.Name + " - " + p.Price.Format() + " - " + status
}
