package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// CartService mutates the caller's cart. Stock is checked but never reserved.
type CartService interface {
	GetCart(ctx context.Context) (*types.Cart, error)
	AddItem(ctx context.Context, productID uuid.UUID, qty int) (*types.Cart, error)
	// UpdateQuantity sets the line quantity; qty <= 0 removes the line.
	UpdateQuantity(ctx context.Context, productID uuid.UUID, qty int) (*types.Cart, error)
	RemoveItem(ctx context.Context, productID uuid.UUID) (*types.Cart, error)
	Clear(ctx context.Context) (*types.Cart, error)
}

type cartService struct {
	db          *gorm.DB
	log         *logger.Logger
	cartRepo    repos.CartRepo
	productRepo repos.ProductRepo
}

func NewCartService(db *gorm.DB, log *logger.Logger, cartRepo repos.CartRepo, productRepo repos.ProductRepo) CartService {
	return &cartService{
		db:          db,
		log:         log.With("service", "CartService"),
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func callerID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized")
	}
	return rd.UserID, nil
}

// withCart runs fn on the caller's cart inside one transaction and returns the
// cart as it looks afterwards.
func (cs *cartService) withCart(ctx context.Context, fn func(dbc dbctx.Context, cart *types.Cart) error) (*types.Cart, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.Cart
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cart, err := cs.cartRepo.Ensure(dbc, userID)
		if err != nil {
			return fmt.Errorf("ensure cart: %w", err)
		}
		if fn != nil {
			if err := fn(dbc, cart); err != nil {
				return err
			}
		}
		items, err := cs.cartRepo.ListItems(dbc, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}
		cart.Items = items
		out = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *cartService) GetCart(ctx context.Context) (*types.Cart, error) {
	return cs.withCart(ctx, nil)
}

// availableProduct checks that held+add units fit in the product's stock.
// add is compared alone first so an oversized request can't overflow the sum.
func (cs *cartService) availableProduct(dbc dbctx.Context, productID uuid.UUID, held, add int) error {
	p, err := cs.productRepo.GetByID(dbc, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return apierr.NotFound("product %s not found", productID)
	}
	requested := add
	if add <= p.Stock {
		requested = held + add
	}
	if requested > p.Stock {
		return apierr.InsufficientStock(&commerce.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   requested,
		})
	}
	return nil
}

func (cs *cartService) AddItem(ctx context.Context, productID uuid.UUID, qty int) (*types.Cart, error) {
	if qty < 1 {
		return nil, apierr.Validation("%s", commerce.ErrNonPositiveQuantity.Error())
	}
	return cs.withCart(ctx, func(dbc dbctx.Context, cart *types.Cart) error {
		held := 0
		existing, err := cs.cartRepo.GetItem(dbc, cart.ID, productID)
		if err != nil {
			return fmt.Errorf("get cart item: %w", err)
		}
		if existing != nil {
			held = existing.Quantity
		}
		if err := cs.availableProduct(dbc, productID, held, qty); err != nil {
			return err
		}
		return cs.cartRepo.SetItemQuantity(dbc, cart.ID, productID, held+qty)
	})
}

func (cs *cartService) UpdateQuantity(ctx context.Context, productID uuid.UUID, qty int) (*types.Cart, error) {
	return cs.withCart(ctx, func(dbc dbctx.Context, cart *types.Cart) error {
		existing, err := cs.cartRepo.GetItem(dbc, cart.ID, productID)
		if err != nil {
			return fmt.Errorf("get cart item: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("product %s is not in the cart", productID)
		}
		if qty <= 0 {
			_, err := cs.cartRepo.DeleteItem(dbc, cart.ID, productID)
			return err
		}
		if err := cs.availableProduct(dbc, productID, 0, qty); err != nil {
			return err
		}
		return cs.cartRepo.SetItemQuantity(dbc, cart.ID, productID, qty)
	})
}

func (cs *cartService) RemoveItem(ctx context.Context, productID uuid.UUID) (*types.Cart, error) {
	return cs.withCart(ctx, func(dbc dbctx.Context, cart *types.Cart) error {
		ok, err := cs.cartRepo.DeleteItem(dbc, cart.ID, productID)
		if err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		if !ok {
			return apierr.NotFound("product %s is not in the cart", productID)
		}
		return nil
	})
}

func (cs *cartService) Clear(ctx context.Context) (*types.Cart, error) {
	return cs.withCart(ctx, func(dbc dbctx.Context, cart *types.Cart) error {
		_, err := cs.cartRepo.ClearItems(dbc, cart.ID)
		return err
	})
}
