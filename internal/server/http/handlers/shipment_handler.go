package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// ShipmentHandler manages shipment and batch endpoints.
type ShipmentHandler struct {
	facade    ShipmentFacade
	loc       *time.Location
	batchSize int
}

// NewShipmentHandler constructs ShipmentHandler.
func NewShipmentHandler(facade ShipmentFacade, loc *time.Location, batchSize int) *ShipmentHandler {
	return &ShipmentHandler{facade: facade, loc: loc, batchSize: batchSize}
}

// Get handles GET /api/shipments/:id.
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shipment, err := h.facade.Shipment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShipmentResponse(*shipment))
}

// Track handles GET /api/shipments/track/:trackingId.
func (h *ShipmentHandler) Track(c *gin.Context) {
	t, err := h.facade.TrackShipment(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := dto.TrackingResponse{
		TrackingID:            t.TrackingID,
		Status:                string(t.Status),
		OriginBranchID:        t.OriginBranchID,
		DestinationBranchID:   t.DestinationBranchID,
		EstimatedDeliveryDate: t.EstimatedDeliveryDate,
		CreatedAt:             t.CreatedAt,
		History:               t.History,
		Parcels:               t.Parcels,
	}
	if resp.History == nil {
		resp.History = []model.HistoryEntry{}
	}
	if resp.Parcels == nil {
		resp.Parcels = []model.Parcel{}
	}
	c.JSON(http.StatusOK, resp)
}

// Batch handles GET /api/shipments/batch/:batchNumber.
func (h *ShipmentHandler) Batch(c *gin.Context) {
	list, err := h.facade.Batch(c.Request.Context(), c.Param("batchNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toShipmentList(list))
}

// CreateFromOrders handles POST /api/shipments/create-from-orders.
func (h *ShipmentHandler) CreateFromOrders(c *gin.Context) {
	var req dto.CreateFromOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}
	departure, err := parseDate(req.DepartureDate, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	shipment, created, err := h.facade.CreateBatchFromOrders(c.Request.Context(), req.OrderIDs, departure, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.CreateFromOrdersResponse{Shipment: toShipmentResponse(*shipment), Created: created})
}

// Update handles PUT /api/shipments/:id.
func (h *ShipmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ShipmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}
	eta, err := parseDate(req.EstimatedDeliveryDate, h.loc)
	if err != nil {
		respondError(c, err)
		return
	}

	upd := usecase.ShipmentUpdate{Patch: model.ShipmentPatch{
		EstimatedDeliveryDate: eta,
		DestinationBranchID:   req.DestinationBranchID,
		ReceiverID:            req.ReceiverID,
		Parcels:               req.Parcels,
		TotalWeight:           req.TotalWeight,
		ShippingCost:          req.ShippingCost,
		InsuranceAmount:       req.InsuranceAmount,
	}}
	if strings.TrimSpace(req.Status) != "" {
		upd.Status = &usecase.StatusUpdate{Status: req.Status, Location: req.Location, Notes: req.Notes}
	}

	res, err := h.facade.UpdateShipment(c.Request.Context(), id, upd, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShipmentTransitionResponse{Shipment: toShipmentResponse(*res.Shipment), CascadedOrders: res.CascadedOrders})
}

// ChangeStatus handles PUT and POST /api/shipments/:id/status.
func (h *ShipmentHandler) ChangeStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	res, err := h.facade.ChangeShipmentStatus(c.Request.Context(), id, usecase.StatusUpdate{Status: req.Status, Location: req.Location, Notes: req.Notes}, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ShipmentTransitionResponse{Shipment: toShipmentResponse(*res.Shipment), CascadedOrders: res.CascadedOrders})
}

// BatchStatus handles PUT /api/shipments/batch/:batchNumber/status.
func (h *ShipmentHandler) BatchStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	res, err := h.facade.UpdateBatchStatus(c.Request.Context(), c.Param("batchNumber"), usecase.StatusUpdate{Status: req.Status, Location: req.Location, Notes: req.Notes}, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBulkResponse(res))
}

// BulkStatus handles PUT /api/shipments/bulk/status.
func (h *ShipmentHandler) BulkStatus(c *gin.Context) {
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed JSON body")
		return
	}

	res, err := h.facade.UpdateBulkStatus(c.Request.Context(), req.ShipmentIDs, usecase.StatusUpdate{Status: req.Status, Location: req.Location, Notes: req.Notes}, CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBulkResponse(res))
}

// Delete handles DELETE /api/shipments/:id.
func (h *ShipmentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.facade.DeleteShipment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AutoBatch handles POST /api/shipments/auto-batch?limit=N.
func (h *ShipmentHandler) AutoBatch(c *gin.Context) {
	limit := h.batchSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	attached, err := h.facade.RunAutoBatch(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attached": attached})
}

func toBulkResponse(res usecase.BulkResult) dto.BulkResultResponse {
	failed := make([]dto.BulkFailure, 0, len(res.Failed))
	for _, f := range res.Failed {
		failed = append(failed, dto.BulkFailure{ShipmentID: f.ShipmentID, Reason: f.Reason})
	}
	return dto.BulkResultResponse{
		Requested:      res.Requested,
		Updated:        res.Updated,
		CascadedOrders: res.CascadedOrders,
		Failed:         failed,
	}
}
