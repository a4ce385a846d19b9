package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type OrderHandler struct {
	log          *logger.Logger
	orderService services.OrderService
}

func NewOrderHandler(log *logger.Logger, orderService services.OrderService) *OrderHandler {
	return &OrderHandler{log: log.With("handler", "OrderHandler"), orderService: orderService}
}

// POST /api/orders
// body: { "shipping_address": "..." }
func (oh *OrderHandler) Create(c *gin.Context) {
	var req struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if !bindJSON(c, &req) {
		return
	}
	order, err := oh.orderService.CreateOrder(c.Request.Context(), req.ShippingAddress)
	if err != nil {
		response.RespondServiceError(c, oh.log, err)
		return
	}
	response.RespondCreated(c, order)
}

// GET /api/orders
func (oh *OrderHandler) List(c *gin.Context) {
	orders, err := oh.orderService.ListOrders(c.Request.Context())
	oh.respondList(c, orders, err)
}

// GET /api/orders/user/:id
func (oh *OrderHandler) ListForUser(c *gin.Context) {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	orders, err := oh.orderService.ListUserOrders(c.Request.Context(), userID)
	oh.respondList(c, orders, err)
}

// GET /api/orders/:id
func (oh *OrderHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := oh.orderService.GetOrder(c.Request.Context(), id)
	oh.respondOne(c, order, err)
}

// PUT /api/orders/:id
// body: { "status": "...", "shipping_address": "..." }, at least one.
func (oh *OrderHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.UpdateOrderInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := oh.orderService.UpdateOrder(c.Request.Context(), id, in)
	oh.respondOne(c, order, err)
}

// POST /api/orders/:id/cancel
func (oh *OrderHandler) Cancel(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := oh.orderService.CancelOrder(c.Request.Context(), id)
	oh.respondOne(c, order, err)
}

// GET /api/orders/:id/events
func (oh *OrderHandler) Events(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	events, err := oh.orderService.GetOrderHistory(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, oh.log, err)
		return
	}
	if events == nil {
		events = []*types.OrderEvent{}
	}
	response.RespondOK(c, gin.H{"events": events})
}

func (oh *OrderHandler) respondOne(c *gin.Context, order *types.Order, err error) {
	if err != nil {
		response.RespondServiceError(c, oh.log, err)
		return
	}
	response.RespondOK(c, order)
}

func (oh *OrderHandler) respondList(c *gin.Context, orders []*types.Order, err error) {
	if err != nil {
		response.RespondServiceError(c, oh.log, err)
		return
	}
	if orders == nil {
		orders = []*types.Order{}
	}
	response.RespondOK(c, gin.H{"orders": orders})
}
