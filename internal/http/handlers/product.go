package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type ProductHandler struct {
	log            *logger.Logger
	productService services.ProductService
}

func NewProductHandler(log *logger.Logger, productService services.ProductService) *ProductHandler {
	return &ProductHandler{log: log.With("handler", "ProductHandler"), productService: productService}
}

// GET /api/products?category=&search=
func (ph *ProductHandler) List(c *gin.Context) {
	products, err := ph.productService.List(c.Request.Context(), types.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		response.RespondServiceError(c, ph.log, err)
		return
	}
	if products == nil {
		products = []*types.Product{}
	}
	response.RespondOK(c, gin.H{"products": products})
}

// GET /api/products/:id
func (ph *ProductHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	p, err := ph.productService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// POST /api/products
func (ph *ProductHandler) Create(c *gin.Context) {
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := ph.productService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, ph.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"product": p})
}

// PUT /api/products/:id
func (ph *ProductHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := ph.productService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondServiceError(c, ph.log, err)
		return
	}
	response.RespondOK(c, gin.H{"product": p})
}

// DELETE /api/products/:id
func (ph *ProductHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := ph.productService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, ph.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
