package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), req.ProductIDs, req.ShippingAddress)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	page, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := dto.OrderListResponse{
		Orders: make([]dto.OrderResponse, 0, len(page.Orders)),
		Total:  page.Total,
		Page:   page.Page,
		Limit:  page.Limit,
	}
	for _, o := range page.Orders {
		response.Orders = append(response.Orders, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Update handles PATCH /api/orders/:id.
func (h *OrderHandler) Update(c *gin.Context) {
	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	patch := model.OrderPatch{ShippingAddress: req.ShippingAddress}
	if req.Status != nil {
		if model.OrderStatus(*req.Status) != model.OrderStatusCancelled {
			abortWithError(c, fmt.Errorf("%w: status can only be set to %s", domainErrors.ErrValidation, model.OrderStatusCancelled))
			return
		}
		patch.Cancel = true
	}

	order, err := h.facade.UpdateOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"), patch)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles DELETE /api/orders/:id.
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentUserID(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{ProductID: item.ProductID, UnitPrice: item.UnitPrice})
	}
	return dto.OrderResponse{
		ID:               order.ID,
		Items:            items,
		TotalPrice:       order.TotalPrice,
		Status:           string(order.Status),
		ShippingAddress:  order.ShippingAddress,
		PaymentReference: order.PaymentReference,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}
