package model

// ユーザーのカート（/cart/user/{userNo} の中身）
type UserCart struct {
	Items      []CartItem `json:"items"`
	TotalPrice Money      `json:"totalPrice"`
	ItemCount  int        `json:"itemCount"`
}

func EmptyCart() UserCart {
	return UserCart{Items: []CartItem{}, TotalPrice: ZeroMoney}
}

// 受け取った値の穴埋め。
// items無しは空、件数はitemsに合わせる。
func (c UserCart) Normalize() UserCart {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.No == "" || it.ProductNo == "" {
			continue
		}
		if it.Quantity < 0 {
			it.Quantity = 0
		}
		if it.TotalPrice.IsZero() && !it.UnitPrice.IsZero() {
			it.TotalPrice = it.UnitPrice.MulQty(it.Quantity)
		}
		items = append(items, it)
	}
	c.Items = items
	c.ItemCount = len(items)
	return c
}

func (c UserCart) FindItem(no string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.No == no {
			return it, true
		}
	}
	return CartItem{}, false
}
