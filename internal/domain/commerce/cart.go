package commerce

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/domain/catalog"
)

// Cart is created lazily, one per user, and survives checkout with its items removed.
type Cart struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []*CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Total sums the current (not snapshotted) prices of the cart lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) MarshalJSON() ([]byte, error) {
	type cartAlias Cart
	items := c.Items
	if items == nil {
		items = []*CartItem{}
	}
	return json.Marshal(struct {
		cartAlias
		Items []*CartItem   `json:"items"`
		Total catalog.Money `json:"total"`
	}{cartAlias: cartAlias(c), Items: items, Total: catalog.Money(c.Total())})
}

// CartItem is unique per (cart, product); repeated additions bump Quantity.
type CartItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product" json:"cart_id"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_item_product" json:"product_id"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Quantity  int              `gorm:"not null;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *CartItem) Subtotal() decimal.Decimal {
	if i == nil || i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	type itemAlias CartItem
	return json.Marshal(struct {
		itemAlias
		Subtotal catalog.Money `json:"subtotal"`
	}{itemAlias: itemAlias(i), Subtotal: catalog.Money(i.Subtotal())})
}
