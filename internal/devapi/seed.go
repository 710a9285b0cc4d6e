package devapi

import (
	"context"

	"backoffice/internal/domain/model"
)

type SeedResult struct {
	Users    int `json:"users"`
	Products int `json:"products"`
}

// 何度呼んでも同じ状態になる
func (s *Service) Seed(ctx context.Context) (SeedResult, error) {
	users := []model.User{
		{No: "U0001", Nickname: "tanaka", Phone: "090-1111-2222", AuthLogin: "tanaka@example.com"},
		{No: "U0002", Nickname: "suzuki", Phone: "090-3333-4444", AuthLogin: "suzuki@example.com"},
		{No: "U0003", Nickname: "sato", Phone: "080-5555-6666"},
	}
	products := []model.Product{
		{No: "P0001", Name: "Green Tea", Price: model.ParseMoney("50"), Status: "on sale", Unit: "bottle", Specs: "500ml"},
		{No: "P0002", Name: "Black Coffee", Price: model.ParseMoney("120.50"), Status: "on sale", Unit: "can", Specs: "185g"},
		{No: "P0003", Name: "Rice Ball", Price: model.ParseMoney("150"), Status: "on sale", Unit: "piece"},
		{No: "P0004", Name: "Seasonal Bento", Price: model.ParseMoney("680"), Unit: "box"},
	}

	for _, u := range users {
		if err := s.users.Upsert(ctx, u); err != nil {
			return SeedResult{}, err
		}
	}
	for _, p := range products {
		if err := s.products.Upsert(ctx, p); err != nil {
			return SeedResult{}, err
		}
	}
	return SeedResult{Users: len(users), Products: len(products)}, nil
}
