package models

import "github.com/shopspring/decimal"

// CartLine is one purchasable configuration. UnitPrice is fixed when the line is created.
type CartLine struct {
	ItemID    int64           `json:"item_id"`
	Name      string          `json:"name"`
	Size      *SizeOption     `json:"size,omitempty"`
	Extras    []ExtraOption   `json:"extras,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Contact is the name/phone pair offered as a prefill on the next checkout.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderRequest is the POST /order body.
type OrderRequest struct {
	Items string `json:"items"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Order is an active or historical order as returned by the admin endpoints.
type Order struct {
	ID        int64  `json:"id"`
	Items     string `json:"items"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}
