package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	loc    *time.Location
}

// NewOrderHandler constructs OrderHandler. Date-only departure dates are read in loc.
func NewOrderHandler(facade OrderFacade, loc *time.Location) *OrderHandler {
	return &OrderHandler{facade: facade, loc: loc}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}
	departure, err := parseDate(req.DepartureDate, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	in := usecase.CreateOrderInput{
		Customer: usecase.CustomerInput{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Email:     req.Email,
			Address:   req.Address,
			City:      req.City,
			Country:   req.Country,
		},
		BranchID:      req.BranchID,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Currency:      req.Currency,
		PaymentStatus: req.PaymentStatus,
		DepartureDate: departure,
		Notes:         req.Notes,
	}
	if req.CustomerID != nil {
		in.Customer.ID = *req.CustomerID
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), in, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// List handles GET /api/orders?status=a,b.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), c.Query("status"), CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// ChangeStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	order, err := h.facade.ChangeOrderStatus(c.Request.Context(), id, req.Status, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Track handles GET /api/orders/track/:identifier.
func (h *OrderHandler) Track(c *gin.Context) {
	res, err := h.facade.Track(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.TrackResponse{Type: string(res.Kind)}
	if res.Order != nil {
		order := toOrderResponse(*res.Order)
		resp.Order = &order
	}
	if res.Shipment != nil {
		shipment := toShipmentResponse(*res.Shipment)
		resp.Shipment = &shipment
	}
	if len(res.Batch) > 0 {
		resp.Batch = toShipmentList(res.Batch)
	}
	c.JSON(http.StatusOK, resp)
}
