package commerce

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/domain/catalog"
)

const MinShippingAddressLen = 10

// Order is immutable once created except for Status and, while pending, ShippingAddress.
// TotalAmount is the sum of item subtotals at creation time.
type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Items           []*OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

func (o Order) MarshalJSON() ([]byte, error) {
	type orderAlias Order
	items := o.Items
	if items == nil {
		items = []*OrderItem{}
	}
	return json.Marshal(struct {
		orderAlias
		TotalAmount catalog.Money `json:"total_amount"`
		Items       []*OrderItem  `json:"items"`
	}{orderAlias: orderAlias(o), TotalAmount: catalog.Money(o.TotalAmount), Items: items})
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ItemsTotal recomputes the sum of the stored snapshots.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// OrderItem carries the price the customer paid; it never follows later catalog changes.
type OrderItem struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"-"`
	OrderID   uuid.UUID        `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uuid.UUID        `gorm:"type:uuid;index;not null" json:"product_id"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
	Quantity  int              `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Price     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Position  int              `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time        `gorm:"not null" json:"-"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type itemAlias OrderItem
	return json.Marshal(struct {
		itemAlias
		Price    catalog.Money `json:"price"`
		Subtotal catalog.Money `json:"subtotal"`
	}{itemAlias: itemAlias(i), Price: catalog.Money(i.Price), Subtotal: catalog.Money(i.Subtotal())})
}

// OrderEvent is the status history of an order.
type OrderEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"order_id"`
	FromStatus OrderStatus    `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus   OrderStatus    `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null" json:"actor_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
}

func (e *OrderEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NormalizeShippingAddress trims the address and enforces the minimum length.
func NormalizeShippingAddress(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if len([]rune(addr)) < MinShippingAddressLen {
		return "", ErrAddressTooShort
	}
	return addr, nil
}
