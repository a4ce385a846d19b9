package commerce

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/storefront-backend/internal/domain/catalog"
)

func TestOrderItemJSONIncludesSubtotal(t *testing.T) {
	item := &OrderItem{
		ProductID: uuid.New(),
		Quantity:  3,
		Price:     decimal.RequireFromString("10.00"),
	}
	raw, err := json.Marshal(item)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 30.0, got["subtotal"])
	assert.Equal(t, 10.0, got["price"])
	assert.Contains(t, string(raw), `"price":10.00`)
	assert.Contains(t, string(raw), `"subtotal":30.00`)
	assert.EqualValues(t, 3, got["quantity"])
	assert.Contains(t, got, "product_id")
	assert.Contains(t, got, "product")
	assert.NotContains(t, got, "order_id")
}

func TestOrderItemsTotal(t *testing.T) {
	o := &Order{Items: []*OrderItem{
		{Quantity: 3, Price: decimal.RequireFromString("10.00")},
		{Quantity: 1, Price: decimal.RequireFromString("0.99")},
	}}
	assert.True(t, o.ItemsTotal().Equal(decimal.RequireFromString("30.99")))
}

func TestCartTotalUsesCurrentPrices(t *testing.T) {
	p := &catalog.Product{Price: decimal.RequireFromString("2.50")}
	c := &Cart{Items: []*CartItem{{Product: p, Quantity: 4}}}
	assert.True(t, c.Total().Equal(decimal.NewFromInt(10)))

	p.Price = decimal.NewFromInt(3)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(12)))

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 12.0, got["total"])
	assert.Contains(t, string(raw), `"total":12.00`)
	assert.Contains(t, string(raw), `"subtotal":12.00`)
	assert.Contains(t, string(raw), `"price":3.00`)
}

func TestOrderJSONMoneyIsNumeric(t *testing.T) {
	o := Order{
		ID:          uuid.New(),
		Status:      OrderStatusPending,
		TotalAmount: decimal.RequireFromString("30"),
		Items: []*OrderItem{{
			ProductID: uuid.New(),
			Quantity:  3,
			Price:     decimal.RequireFromString("10.00"),
		}},
	}
	raw, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_amount":30.00`)

	var got struct {
		TotalAmount json.RawMessage `json:"total_amount"`
		Items       []struct {
			Price    json.RawMessage `json:"price"`
			Subtotal json.RawMessage `json:"subtotal"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "30.00", string(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "10.00", string(got.Items[0].Price))
	assert.Equal(t, "30.00", string(got.Items[0].Subtotal))
}

func TestEmptyCartMarshalsEmptyItems(t *testing.T) {
	raw, err := json.Marshal(Cart{})
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, []any{}, got["items"])
}

func TestNormalizeShippingAddress(t *testing.T) {
	_, err := NormalizeShippingAddress("  short  ")
	assert.ErrorIs(t, err, ErrAddressTooShort)

	addr, err := NormalizeShippingAddress("  123 Main Street ")
	require.NoError(t, err)
	assert.Equal(t, "123 Main Street", addr)
}
