package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	pkgAuth "github.com/AliXAbdullah03/nge-brain/internal/pkg/auth"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/middleware"
)

const dateLayout = "2006-01-02"

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	actor, _ := middleware.CurrentActor(c)
	return actor
}

// respondError renders err as a problem document.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "SERVER_ERROR"
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, domainErrors.ErrMalformedIdentifier):
		status, code = http.StatusBadRequest, "INVALID_IDENTIFIER"
	case errors.Is(err, domainErrors.ErrInvalidStatus):
		status, code = http.StatusBadRequest, "INVALID_STATUS"
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		status, code = http.StatusBadRequest, "INVALID_TRANSITION"
	case errors.Is(err, domainErrors.ErrPermissionDenied):
		status, code = http.StatusForbidden, "PERMISSION_DENIED"
	case errors.Is(err, domainErrors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		status, code = http.StatusConflict, "DUPLICATE_ENTRY"
	case errors.Is(err, domainErrors.ErrPersistenceIntegrity):
		status, code = http.StatusInternalServerError, "PERSISTENCE_INTEGRITY"
	case errors.Is(err, domainErrors.ErrInvalidCredentials), errors.Is(err, pkgAuth.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "AUTH_INVALID"
	}

	p := middleware.NewProblem(c, status, code, "")
	if status < http.StatusInternalServerError {
		p.Detail = err.Error()
	}
	var verr *domainErrors.ValidationError
	if errors.As(err, &verr) {
		p.Fields = verr.Fields
	}
	_ = c.Error(err)
	middleware.WriteProblem(c, p)
}

func badRequest(c *gin.Context, detail string) {
	middleware.AbortWithProblem(c, http.StatusBadRequest, "VALIDATION_ERROR", detail)
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// parseDate accepts YYYY-MM-DD, read in loc, or RFC 3339. Empty input yields nil.
func parseDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domainErrors.NewValidationError("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	perms := u.Role.Permissions()
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	return dto.UserResponse{
		ID:          u.ID,
		Login:       u.Login,
		Role:        string(u.Role),
		Status:      string(u.Status),
		Permissions: names,
		CreatedAt:   u.CreatedAt,
	}
}

func toOrderResponse(o model.Order) dto.OrderResponse {
	items := o.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	return dto.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		TrackingID:    o.TrackingID,
		CustomerID:    o.CustomerID,
		BranchID:      o.BranchID,
		Items:         items,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		DepartureDate: o.DepartureDate,
		ShipmentID:    o.ShipmentID,
		BatchNumber:   o.BatchNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func toShipmentResponse(s model.Shipment) dto.ShipmentResponse {
	resp := dto.ShipmentResponse{
		ID:                    s.ID,
		TrackingID:            s.TrackingID,
		BatchNumber:           s.BatchNumber,
		DepartureDate:         s.DepartureDate,
		EstimatedDeliveryDate: s.EstimatedDeliveryDate,
		CurrentStatus:         string(s.CurrentStatus),
		OriginBranchID:        s.OriginBranchID,
		DestinationBranchID:   s.DestinationBranchID,
		ShipperID:             s.ShipperID,
		ReceiverID:            s.ReceiverID,
		OrderIDs:              s.MemberOrderIDs(),
		Parcels:               s.Parcels,
		History:               s.History,
		TotalWeight:           s.TotalWeight,
		WeightUnit:            s.WeightUnit,
		ShippingCost:          s.ShippingCost,
		InsuranceAmount:       s.InsuranceAmount,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
	if resp.Parcels == nil {
		resp.Parcels = []model.Parcel{}
	}
	if resp.History == nil {
		resp.History = []model.HistoryEntry{}
	}
	return resp
}

func toShipmentList(list []model.Shipment) []dto.ShipmentResponse {
	out := make([]dto.ShipmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toShipmentResponse(s))
	}
	return out
}
