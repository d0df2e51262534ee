package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/server/http/dto"
)

// OrderHandler manages the merchant-facing order endpoints.
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

	order, err := h.facade.CreateOrder(c.Request.Context(), req.Amount, req.Currency, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount), errors.Is(err, domainErrors.ErrInvalidCurrency):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order, nil))
}

// Pay handles POST /api/orders/:id/pay.
func (h *OrderHandler) Pay(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	paymentURL, err := h.facade.InitiatePayment(c.Request.Context(), orderID)
	if err != nil {
		var apiErr *bml.APIError
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrAlreadyPaid):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrGatewayDisabled), errors.Is(err, domainErrors.ErrGatewayNotConfigured):
			c.Status(http.StatusServiceUnavailable)
		case errors.As(err, &apiErr):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.PaymentResponse{PaymentURL: paymentURL})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	order, notes, err := h.facade.Order(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, notes))
}

func toOrderResponse(order *model.Order, notes []model.OrderNote) dto.OrderResponse {
	response := dto.OrderResponse{
		ID:            order.ID,
		Reference:     order.Reference,
		Amount:        order.Amount,
		Currency:      order.Currency,
		Status:        string(order.Status),
		TransactionID: order.TransactionID,
		CreatedAt:     order.CreatedAt,
	}
	for _, n := range notes {
		response.Notes = append(response.Notes, dto.OrderNoteResponse{Note: n.Note, CreatedAt: n.CreatedAt})
	}
	return response
}
