package model

// 一覧取得の条件（page / pageSize / keyword）
type PageQuery struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Keyword  string `json:"keyword,omitempty"`
}

// 一覧の結果
type Page[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
}
