package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CartHandler struct {
	log         *logger.Logger
	cartService services.CartService
}

func NewCartHandler(log *logger.Logger, cartService services.CartService) *CartHandler {
	return &CartHandler{log: log.With("handler", "CartHandler"), cartService: cartService}
}

// GET /api/cart
func (ch *CartHandler) Get(c *gin.Context) {
	cart, err := ch.cartService.GetCart(c.Request.Context())
	ch.respond(c, cart, err)
}

// POST /api/cart/items
// body: { "product_id": "...", "quantity": 2 }
func (ch *CartHandler) AddItem(c *gin.Context) {
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  int       `json:"quantity"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := ch.cartService.AddItem(c.Request.Context(), req.ProductID, req.Quantity)
	ch.respond(c, cart, err)
}

// PUT /api/cart/items/:product_id
// body: { "quantity": 3 }; zero or less removes the line.
func (ch *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	cart, err := ch.cartService.UpdateQuantity(c.Request.Context(), productID, *req.Quantity)
	ch.respond(c, cart, err)
}

// DELETE /api/cart/items/:product_id
func (ch *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id")
	if !ok {
		return
	}
	cart, err := ch.cartService.RemoveItem(c.Request.Context(), productID)
	ch.respond(c, cart, err)
}

// DELETE /api/cart
func (ch *CartHandler) Clear(c *gin.Context) {
	cart, err := ch.cartService.Clear(c.Request.Context())
	ch.respond(c, cart, err)
}

func (ch *CartHandler) respond(c *gin.Context, cart any, err error) {
	if err != nil {
		response.RespondServiceError(c, ch.log, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": cart})
}
