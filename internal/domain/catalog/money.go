package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders an amount as an unquoted JSON number with two decimals (30.00).
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	type productAlias Product
	return json.Marshal(struct {
		productAlias
		Price Money `json:"price"`
	}{productAlias: productAlias(p), Price: Money(p.Price)})
}
