package commerce

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/storefront-backend/internal/data/repos/testutil"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
)

func TestCartRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewCartRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "cart@example.com", false)
	p1 := testutil.SeedProduct(t, ctx, tx, "p1", "10.00", 5)
	p2 := testutil.SeedProduct(t, ctx, tx, "p2", "2.50", 5)

	cart, err := repo.Ensure(dbc, u.ID)
	require.NoError(t, err)
	require.NotNil(t, cart)

	again, err := repo.Ensure(dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "Ensure must be idempotent")

	require.NoError(t, repo.SetItemQuantity(dbc, cart.ID, p1.ID, 1))
	require.NoError(t, repo.SetItemQuantity(dbc, cart.ID, p1.ID, 3))
	require.NoError(t, repo.SetItemQuantity(dbc, cart.ID, p2.ID, 2))

	item, err := repo.GetItem(dbc, cart.ID, p1.ID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, 3, item.Quantity)

	items, err := repo.ListItems(dbc, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		require.NotNil(t, it.Product)
	}
	cart.Items = items
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("35")))

	ok, err := repo.DeleteItem(dbc, cart.ID, p2.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.DeleteItem(dbc, cart.ID, p2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.ClearItems(dbc, cart.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	items, err = repo.ListItems(dbc, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	none, err := repo.GetByUserID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOrderRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewOrderRepo(db, testutil.Logger(t))
	events := NewOrderEventRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "orders@example.com", false)
	p := testutil.SeedProduct(t, ctx, tx, "gizmo", "10.00", 5)

	order := &types.Order{
		UserID:          u.ID,
		Status:          types.OrderStatusPending,
		ShippingAddress: "1 Long Street, Springfield",
		TotalAmount:     decimal.RequireFromString("30"),
		Items: []*types.OrderItem{
			{ProductID: p.ID, Product: p, Quantity: 3, Price: p.Price},
		},
	}
	require.NoError(t, repo.Create(dbc, order))
	require.NotEqual(t, uuid.Nil, order.ID)
	assert.EqualValues(t, 1, testutil.CountRows(t, ctx, tx, &types.OrderItem{}))
	assert.EqualValues(t, 1, testutil.CountRows(t, ctx, tx, &types.Product{}), "product must not be re-inserted")

	got, err := repo.GetByID(dbc, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.True(t, got.ItemsTotal().Equal(got.TotalAmount))

	ok, err := repo.UpdateShippingAddress(dbc, order.ID, "2 Other Road, Shelbyville")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(dbc, order.ID, []types.OrderStatus{types.OrderStatusPending}, types.OrderStatusProcessing)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionStatus(dbc, order.ID, []types.OrderStatus{types.OrderStatusPending}, types.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "transition from a stale status must not apply")

	ok, err = repo.UpdateShippingAddress(dbc, order.ID, "3 Late Lane, Capital City")
	require.NoError(t, err)
	assert.False(t, ok, "address is frozen once the order leaves pending")

	got, err = repo.GetByID(dbc, order.ID)
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusProcessing, got.Status)
	assert.Equal(t, "2 Other Road, Shelbyville", got.ShippingAddress)

	mine, err := repo.ListByUserID(dbc, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	all, err := repo.ListAll(dbc)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, events.Create(dbc, []*types.OrderEvent{
		{OrderID: order.ID, ToStatus: types.OrderStatusPending, ActorID: u.ID},
		{OrderID: order.ID, FromStatus: types.OrderStatusPending, ToStatus: types.OrderStatusProcessing, ActorID: u.ID, Metadata: datatypes.JSON(`{"source":"test"}`)},
	}))
	history, err := events.ListByOrderID(dbc, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestOrderRepoKeepsItemPositions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.WithTx(ctx, tx)
	repo := NewOrderRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "positions@example.com", false)
	var items []*types.OrderItem
	for i, name := range []string{"charlie", "alpha", "bravo", "delta"} {
		p := testutil.SeedProduct(t, ctx, tx, name, "1.00", 5)
		items = append(items, &types.OrderItem{ProductID: p.ID, Quantity: 1, Price: p.Price, Position: i})
	}
	// Reverse the insert order so row order and position disagree.
	for l, r := 0, len(items)-1; l < r; l, r = l+1, r-1 {
		items[l], items[r] = items[r], items[l]
	}
	order := &types.Order{
		UserID:          u.ID,
		Status:          types.OrderStatusPending,
		ShippingAddress: "1 Long Street, Springfield",
		TotalAmount:     decimal.RequireFromString("4"),
		Items:           items,
	}
	require.NoError(t, repo.Create(dbc, order))

	got, err := repo.GetByID(dbc, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 4)
	var names []string
	for i, it := range got.Items {
		assert.Equal(t, i, it.Position)
		require.NotNil(t, it.Product)
		names = append(names, it.Product.Name)
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo", "delta"}, names)
}
