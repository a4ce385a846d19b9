package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const orderTracerName = "github.com/yungbote/storefront-backend/internal/services/order"

// UpdateOrderInput carries the fields of a partial order update.
type UpdateOrderInput struct {
	Status          OptionalString `json:"status"`
	ShippingAddress OptionalString `json:"shipping_address"`
}

type OrderService interface {
	// CreateOrder turns the caller's cart into a pending order, decrementing stock
	// and emptying the cart atomically.
	CreateOrder(ctx context.Context, shippingAddress string) (*types.Order, error)
	// CancelOrder restocks every item exactly once.
	CancelOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, in UpdateOrderInput) (*types.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
	// ListOrders returns the caller's orders, or every order for admins.
	ListOrders(ctx context.Context) ([]*types.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*types.Order, error)
	GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]*types.OrderEvent, error)
}

type orderService struct {
	db             *gorm.DB
	log            *logger.Logger
	orderRepo      repos.OrderRepo
	orderEventRepo repos.OrderEventRepo
	cartRepo       repos.CartRepo
	productRepo    repos.ProductRepo
	cache          cache.CatalogCache
	metrics        *observability.Metrics
	tracer         trace.Tracer
}

func NewOrderService(
	db *gorm.DB,
	log *logger.Logger,
	orderRepo repos.OrderRepo,
	orderEventRepo repos.OrderEventRepo,
	cartRepo repos.CartRepo,
	productRepo repos.ProductRepo,
	catalogCache cache.CatalogCache,
	metrics *observability.Metrics,
) OrderService {
	if catalogCache == nil {
		catalogCache = cache.NewNopCatalogCache()
	}
	return &orderService{
		db:             db,
		log:            log.With("service", "OrderService"),
		orderRepo:      orderRepo,
		orderEventRepo: orderEventRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		cache:          catalogCache,
		metrics:        metrics,
		tracer:         otel.Tracer(orderTracerName),
	}
}

func principalFrom(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromRequestData(ctxutil.GetRequestData(ctx))
	if !ok {
		return Principal{}, apierr.Unauthorized("unauthorized")
	}
	return p, nil
}

func (svc *orderService) recordFailure(op string, err error) {
	if err == nil {
		return
	}
	code := apierr.CodeInternal
	if ae := apierr.As(err); ae != nil && ae.Code != "" {
		code = ae.Code
	}
	svc.metrics.IncOrderFailure(op, code)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func eventMetadata(v map[string]any) datatypes.JSON {
	if len(v) == 0 {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// sortedByProduct orders lines by product id so concurrent checkouts lock rows
// in the same order.
func sortedByProduct[T any](in []T, productID func(T) uuid.UUID) []T {
	out := make([]T, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool {
		return productID(out[i]).String() < productID(out[j]).String()
	})
	return out
}

func (svc *orderService) CreateOrder(ctx context.Context, shippingAddress string) (order *types.Order, err error) {
	ctx, span := svc.tracer.Start(ctx, "order.create")
	defer func() {
		svc.recordFailure("create", err)
		endSpan(span, err)
	}()

	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	addr, err := commerce.NormalizeShippingAddress(shippingAddress)
	if err != nil {
		return nil, apierr.Validation("%s", err.Error())
	}

	var touched []uuid.UUID
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		cart, err := svc.cartRepo.GetByUserID(dbc, p.UserID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart == nil {
			return apierr.Validation("%s", commerce.ErrEmptyCart.Error())
		}
		lines, err := svc.cartRepo.ListItems(dbc, cart.ID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(lines) == 0 {
			return apierr.Validation("%s", commerce.ErrEmptyCart.Error())
		}

		total := decimal.Zero
		items := make([]*types.OrderItem, 0, len(lines))
		for pos, line := range lines {
			prod := line.Product
			if prod == nil || prod.DeletedAt.Valid {
				return apierr.NotFound("product %s is no longer available", line.ProductID)
			}
			if prod.Stock < line.Quantity {
				return apierr.InsufficientStock(&commerce.InsufficientStockError{
					ProductID:   prod.ID,
					ProductName: prod.Name,
					Available:   prod.Stock,
					Requested:   line.Quantity,
				})
			}
			item := &types.OrderItem{
				ProductID: prod.ID,
				Product:   prod,
				Quantity:  line.Quantity,
				Price:     prod.Price,
				Position:  pos,
			}
			total = total.Add(item.Subtotal())
			items = append(items, item)
		}

		created := &types.Order{
			UserID:          p.UserID,
			Status:          types.OrderStatusPending,
			ShippingAddress: addr,
			TotalAmount:     total,
			Items:           items,
		}
		if err := svc.orderRepo.Create(dbc, created); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range sortedByProduct(items, func(i *types.OrderItem) uuid.UUID { return i.ProductID }) {
			ok, err := svc.productRepo.DecrementStock(dbc, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return svc.stockShortfall(dbc, item)
			}
			touched = append(touched, item.ProductID)
		}

		if _, err := svc.cartRepo.ClearItems(dbc, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if err := svc.orderEventRepo.Create(dbc, []*types.OrderEvent{{
			OrderID:  created.ID,
			ToStatus: types.OrderStatusPending,
			ActorID:  p.UserID,
			Metadata: eventMetadata(map[string]any{
				"items":        len(items),
				"total_amount": total.StringFixed(2),
			}),
		}}); err != nil {
			return fmt.Errorf("write order event: %w", err)
		}

		reloaded, err := svc.orderRepo.GetByID(dbc, created.ID)
		if err != nil {
			return fmt.Errorf("reload order: %w", err)
		}
		order = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateCatalog(ctx, svc.cache, svc.log, touched...)
	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
	)
	svc.metrics.ObserveOrderPlaced(order.TotalAmount.InexactFloat64())
	svc.log.Info("Order created", "order_id", order.ID, "user_id", p.UserID, "total_amount", order.TotalAmount.StringFixed(2))
	return order, nil
}

// stockShortfall builds the error for a lost race between the pre-check and the
// conditional decrement.
func (svc *orderService) stockShortfall(dbc dbctx.Context, item *types.OrderItem) error {
	current, err := svc.productRepo.GetByID(dbc, item.ProductID)
	if err != nil {
		return fmt.Errorf("reload product: %w", err)
	}
	if current == nil {
		return apierr.NotFound("product %s is no longer available", item.ProductID)
	}
	return apierr.InsufficientStock(&commerce.InsufficientStockError{
		ProductID:   current.ID,
		ProductName: current.Name,
		Available:   current.Stock,
		Requested:   item.Quantity,
	})
}

// loadAuthorized fetches the order and applies the access policy.
func (svc *orderService) loadAuthorized(dbc dbctx.Context, p Principal, orderID uuid.UUID) (*types.Order, error) {
	order, err := svc.orderRepo.GetByID(dbc, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, apierr.NotFound("order %s not found", orderID)
	}
	if !CanAccess(p, order.UserID) {
		return nil, apierr.Forbidden("access denied")
	}
	return order, nil
}

func (svc *orderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (order *types.Order, err error) {
	ctx, span := svc.tracer.Start(ctx, "order.cancel", trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer func() {
		svc.recordFailure("cancel", err)
		endSpan(span, err)
	}()

	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	var touched []uuid.UUID
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := svc.loadAuthorized(dbc, p, orderID)
		if err != nil {
			return err
		}
		touched, err = svc.cancelTx(dbc, current, p.UserID)
		if err != nil {
			return err
		}
		order, err = svc.orderRepo.GetByID(dbc, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidateCatalog(ctx, svc.cache, svc.log, touched...)
	svc.log.Info("Order cancelled", "order_id", orderID, "actor_id", p.UserID)
	return order, nil
}

// cancelTx flips the status with a conditional update so that only one of two
// racing cancellations restocks.
func (svc *orderService) cancelTx(dbc dbctx.Context, order *types.Order, actorID uuid.UUID) ([]uuid.UUID, error) {
	if !order.Status.Cancellable() {
		return nil, apierr.InvalidTransition(&commerce.TransitionError{From: order.Status, To: types.OrderStatusCancelled})
	}
	ok, err := svc.orderRepo.TransitionStatus(dbc, order.ID, commerce.CancellableStatuses, types.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !ok {
		return nil, apierr.InvalidTransition(&commerce.TransitionError{From: order.Status, To: types.OrderStatusCancelled})
	}

	svc.metrics.IncOrderCancelled()
	touched := make([]uuid.UUID, 0, len(order.Items))
	restocked := 0
	for _, item := range sortedByProduct(order.Items, func(i *types.OrderItem) uuid.UUID { return i.ProductID }) {
		if err := svc.productRepo.IncrementStock(dbc, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("restock: %w", err)
		}
		touched = append(touched, item.ProductID)
		restocked += item.Quantity
	}
	if err := svc.orderEventRepo.Create(dbc, []*types.OrderEvent{{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   types.OrderStatusCancelled,
		ActorID:    actorID,
		Metadata:   eventMetadata(map[string]any{"restocked_units": restocked}),
	}}); err != nil {
		return nil, fmt.Errorf("write order event: %w", err)
	}
	return touched, nil
}

func (svc *orderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, in UpdateOrderInput) (*types.Order, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !in.Status.Set && !in.ShippingAddress.Set {
		return nil, apierr.Validation("nothing to update")
	}
	if in.Status.Set && !p.IsAdmin {
		return nil, apierr.Forbidden("only admins may change order status")
	}

	var next types.OrderStatus
	if in.Status.Set {
		raw := ""
		if in.Status.Value != nil {
			raw = *in.Status.Value
		}
		next, err = commerce.ParseOrderStatus(raw)
		if err != nil {
			return nil, apierr.Validation("%s", err.Error())
		}
	}
	var addr string
	if in.ShippingAddress.Set {
		raw := ""
		if in.ShippingAddress.Value != nil {
			raw = *in.ShippingAddress.Value
		}
		addr, err = commerce.NormalizeShippingAddress(raw)
		if err != nil {
			return nil, apierr.Validation("%s", err.Error())
		}
	}

	var (
		order   *types.Order
		touched []uuid.UUID
	)
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		current, err := svc.loadAuthorized(dbc, p, orderID)
		if err != nil {
			return err
		}

		if in.ShippingAddress.Set {
			ok, err := svc.orderRepo.UpdateShippingAddress(dbc, orderID, addr)
			if err != nil {
				return fmt.Errorf("update shipping address: %w", err)
			}
			if !ok {
				return apierr.InvalidTransition(fmt.Errorf("shipping address can only change while the order is pending, order is %s", current.Status))
			}
			if err := svc.orderEventRepo.Create(dbc, []*types.OrderEvent{{
				OrderID:    orderID,
				FromStatus: current.Status,
				ToStatus:   current.Status,
				ActorID:    p.UserID,
				Metadata:   eventMetadata(map[string]any{"changed": "shipping_address"}),
			}}); err != nil {
				return fmt.Errorf("write order event: %w", err)
			}
		}

		if in.Status.Set {
			if !current.Status.CanTransitionTo(next) {
				return apierr.InvalidTransition(&commerce.TransitionError{From: current.Status, To: next})
			}
			if next == types.OrderStatusCancelled {
				touched, err = svc.cancelTx(dbc, current, p.UserID)
				if err != nil {
					return err
				}
			} else {
				ok, err := svc.orderRepo.TransitionStatus(dbc, orderID, []types.OrderStatus{current.Status}, next)
				if err != nil {
					return fmt.Errorf("update status: %w", err)
				}
				if !ok {
					return apierr.InvalidTransition(&commerce.TransitionError{From: current.Status, To: next})
				}
				if err := svc.orderEventRepo.Create(dbc, []*types.OrderEvent{{
					OrderID:    orderID,
					FromStatus: current.Status,
					ToStatus:   next,
					ActorID:    p.UserID,
				}}); err != nil {
					return fmt.Errorf("write order event: %w", err)
				}
			}
		}

		order, err = svc.orderRepo.GetByID(dbc, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidateCatalog(ctx, svc.cache, svc.log, touched...)
	return order, nil
}

func (svc *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	return svc.loadAuthorized(dbctx.New(ctx), p, orderID)
}

func (svc *orderService) ListOrders(ctx context.Context) ([]*types.Order, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if p.IsAdmin {
		return svc.orderRepo.ListAll(dbc)
	}
	return svc.orderRepo.ListByUserID(dbc, p.UserID)
}

func (svc *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*types.Order, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !CanAccess(p, userID) {
		return nil, apierr.Forbidden("access denied")
	}
	return svc.orderRepo.ListByUserID(dbctx.New(ctx), userID)
}

func (svc *orderService) GetOrderHistory(ctx context.Context, orderID uuid.UUID) ([]*types.OrderEvent, error) {
	p, err := principalFrom(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if _, err := svc.loadAuthorized(dbc, p, orderID); err != nil {
		return nil, err
	}
	return svc.orderEventRepo.ListByOrderID(dbc, orderID)
}

// IsInsufficientStock reports whether err is a stock shortfall, wrapped or not.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, commerce.ErrInsufficientStock)
}
