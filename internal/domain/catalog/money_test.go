package catalog

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalsFixedNumber(t *testing.T) {
	for in, want := range map[string]string{
		"10":    "10.00",
		"19.9":  "19.90",
		"0":     "0.00",
		"12.50": "12.50",
	} {
		raw, err := json.Marshal(Money(decimal.RequireFromString(in)))
		require.NoError(t, err)
		assert.Equal(t, want, string(raw))
	}
}

func TestProductPriceRoundTrips(t *testing.T) {
	p := Product{ID: uuid.New(), Name: "Mug", Price: decimal.RequireFromString("10"), Stock: 2}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":10.00`)

	var back Product
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Price.Equal(p.Price))
	assert.Equal(t, p.ID, back.ID)
}
