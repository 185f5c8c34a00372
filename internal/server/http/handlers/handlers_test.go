package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/dto"
	"github.com/AliXAbdullah03/nge-brain/internal/server/http/middleware"
	testhelpers "github.com/AliXAbdullah03/nge-brain/internal/test"
	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var adminActor = model.Actor{ID: 7, Role: model.RoleAdmin}

func withActor(actor model.Actor) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.ActorContextKey, actor)
	}
}

func performRequest(t *testing.T, method, pattern, target string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, pattern, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) dto.Problem {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != dto.ContentTypeProblemJSON {
		t.Fatalf("expected problem content type, got %q", ct)
	}
	var p dto.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	return p
}

func TestCurrentActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentActor(c); got != (model.Actor{}) {
		t.Fatalf("expected zero actor when not set, got %+v", got)
	}

	c.Set(middleware.ActorContextKey, adminActor)
	if got := CurrentActor(c); got != adminActor {
		t.Fatalf("expected %+v, got %+v", adminActor, got)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domainErrors.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domainErrors.ErrMalformedIdentifier, http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{domainErrors.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{&domainErrors.TransitionError{From: "a", To: "b"}, http.StatusBadRequest, "INVALID_TRANSITION"},
		{domainErrors.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{domainErrors.NewNotFoundError("order", "1"), http.StatusNotFound, "NOT_FOUND"},
		{domainErrors.ErrAlreadyExists, http.StatusConflict, "DUPLICATE_ENTRY"},
		{&domainErrors.IntegrityError{Entity: "order", ID: 1}, http.StatusInternalServerError, "PERSISTENCE_INTEGRITY"},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized, "AUTH_INVALID"},
		{errors.New("db exploded"), http.StatusInternalServerError, "SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := performRequest(t, http.MethodGet, "/x", "/x", func(c *gin.Context) { respondError(c, tt.err) }, nil, nil)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			p := decodeProblem(t, w)
			if p.Code != tt.code {
				t.Fatalf("expected code %s, got %s", tt.code, p.Code)
			}
			if tt.status >= http.StatusInternalServerError && p.Detail != "" {
				t.Fatalf("server errors must not leak detail, got %q", p.Detail)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	got, err := parseDate("2024-03-01", manila)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !got.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, manila)) {
		t.Fatalf("unexpected date %v", got)
	}

	if got, err := parseDate("2024-03-01T10:00:00Z", nil); err != nil || got.Hour() != 10 {
		t.Fatalf("expected RFC3339 date, got %v %v", got, err)
	}
	if got, err := parseDate(" ", nil); err != nil || got != nil {
		t.Fatalf("expected nil for empty input, got %v %v", got, err)
	}
	if _, err := parseDate("01/03/2024", nil); !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	handler := NewAuthHandler(backOfficeStub{LoginFn: func(ctx context.Context, gotLogin, gotPassword string) (*model.User, string, error) {
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return &model.User{ID: 3, Login: login, Role: model.RoleDriver, Status: model.UserStatusActive}, "session-token", nil
	}})

	w := performRequest(t, http.MethodPost, "/login", "/login", handler.Login, nil, mustJSON(t, dto.AuthRequest{Login: login, Password: password}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}

	var resp dto.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "session-token" || resp.User.Role != "Driver" {
		t.Fatalf("unexpected login response %+v", resp)
	}
	if len(resp.User.Permissions) == 0 {
		t.Fatal("expected permissions in user response")
	}

	result := w.Result()
	t.Cleanup(func() { _ = result.Body.Close() })
	found := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == "ngebrain_token" && cookie.Value == "session-token" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected auth cookie named ngebrain_token")
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade backOfficeStub
		body   []byte
		status int
	}{
		{"malformed body", backOfficeStub{}, []byte("{"), http.StatusBadRequest},
		{"bad credentials", backOfficeStub{LoginFn: func(context.Context, string, string) (*model.User, string, error) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}}, []byte(`{"login":"a","password":"b"}`), http.StatusUnauthorized},
		{"store failure", backOfficeStub{LoginFn: func(context.Context, string, string) (*model.User, string, error) {
			return nil, "", errors.New("db down")
		}}, []byte(`{"login":"a","password":"b"}`), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(tt.facade).Login, nil, tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAuthHandlerCreateUser(t *testing.T) {
	w := performRequest(t, http.MethodPost, "/users", "/users", NewAuthHandler(backOfficeStub{}).CreateUser, nil,
		mustJSON(t, dto.CreateUserRequest{Login: "hub", Password: "pw", Role: "Hub Receiver"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	failing := backOfficeStub{CreateUserFn: func(context.Context, string, string, string) (*model.User, error) {
		return nil, domainErrors.NewValidationError("invalid").WithField("role", "unknown role")
	}}
	w = performRequest(t, http.MethodPost, "/users", "/users", NewAuthHandler(failing).CreateUser, nil, []byte(`{"login":"x"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if p := decodeProblem(t, w); p.Fields["role"] != "unknown role" {
		t.Fatalf("expected field errors, got %+v", p.Fields)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	var got usecase.CreateOrderInput
	var gotActor model.Actor
	facade := backOfficeStub{CreateOrderFn: func(_ context.Context, in usecase.CreateOrderInput, actor model.Actor) (*model.Order, error) {
		got, gotActor = in, actor
		return &model.Order{ID: 5, OrderNumber: "NGE123456789", Status: model.OrderStatusReceived}, nil
	}}
	customerID := int64(12)
	body := mustJSON(t, dto.CreateOrderRequest{
		CustomerID:    &customerID,
		Items:         []model.OrderItem{{Description: "box", Quantity: 1}},
		DepartureDate: "2024-03-01",
	})

	w := performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade, manila).Create, withActor(adminActor), body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if got.Customer.ID != customerID {
		t.Fatalf("expected customer id %d, got %d", customerID, got.Customer.ID)
	}
	if got.DepartureDate == nil || !got.DepartureDate.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, manila)) {
		t.Fatalf("unexpected departure date %v", got.DepartureDate)
	}
	if gotActor != adminActor {
		t.Fatalf("expected actor to be forwarded, got %+v", gotActor)
	}

	var resp dto.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OrderNumber != "NGE123456789" || resp.Status != string(model.OrderStatusReceived) {
		t.Fatalf("unexpected response %+v", resp)
	}

	w = performRequest(t, http.MethodPost, "/orders", "/orders", NewOrderHandler(facade, manila).Create, withActor(adminActor), []byte(`{"departureDate":"tomorrow"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad date, got %d", w.Code)
	}
}

func TestOrderHandlerGet(t *testing.T) {
	facade := backOfficeStub{OrderFn: func(_ context.Context, id int64) (*model.Order, error) {
		if id == 404 {
			return nil, domainErrors.NewNotFoundError("order", "404")
		}
		return &model.Order{ID: id}, nil
	}}
	handler := NewOrderHandler(facade, time.UTC)

	if w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/3", handler.Get, nil, nil); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/abc", handler.Get, nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	w := performRequest(t, http.MethodGet, "/orders/:id", "/orders/404", handler.Get, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if p := decodeProblem(t, w); p.Detail != "order not found: 404" || p.Instance != "/orders/404" {
		t.Fatalf("unexpected problem %+v", p)
	}
}

func TestOrderHandlerList(t *testing.T) {
	driver := model.Actor{ID: 9, Role: model.RoleDriver}
	facade := backOfficeStub{OrdersFn: func(_ context.Context, filter string, actor model.Actor) ([]model.Order, error) {
		if filter != "delivered,out for delivery" || actor != driver {
			t.Fatalf("unexpected list arguments %q %+v", filter, actor)
		}
		return []model.Order{{ID: 1}, {ID: 2}}, nil
	}}

	w := performRequest(t, http.MethodGet, "/orders", "/orders?status=delivered,out%20for%20delivery", NewOrderHandler(facade, time.UTC).List, withActor(driver), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp []dto.OrderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || len(resp) != 2 {
		t.Fatalf("unexpected list response %s (%v)", w.Body.String(), err)
	}

	empty := performRequest(t, http.MethodGet, "/orders", "/orders", NewOrderHandler(backOfficeStub{}, time.UTC).List, nil, nil)
	if empty.Body.String() != "[]" {
		t.Fatalf("expected empty JSON array, got %s", empty.Body.String())
	}
}

func TestOrderHandlerChangeStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"skip", &domainErrors.TransitionError{From: "Shipment Received", To: "Delivered"}, http.StatusBadRequest, "INVALID_TRANSITION"},
		{"driver", domainErrors.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{"lost write", &domainErrors.IntegrityError{Entity: "order", ID: 1}, http.StatusInternalServerError, "PERSISTENCE_INTEGRITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := backOfficeStub{ChangeOrderStatusFn: func(_ context.Context, id int64, status string, _ model.Actor) (*model.Order, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.Order{ID: id, Status: model.OrderStatus(status)}, nil
			}}
			w := performRequest(t, http.MethodPut, "/orders/:id/status", "/orders/1/status", NewOrderHandler(facade, time.UTC).ChangeStatus,
				withActor(adminActor), mustJSON(t, dto.StatusRequest{Status: "Shipment Processing"}))
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			if tt.code != "" {
				if p := decodeProblem(t, w); p.Code != tt.code {
					t.Fatalf("expected code %s, got %s", tt.code, p.Code)
				}
			}
		})
	}
}

func TestOrderHandlerTrack(t *testing.T) {
	facade := backOfficeStub{TrackFn: func(_ context.Context, identifier string) (*usecase.TrackResult, error) {
		switch identifier {
		case "BCH-2024-001":
			return &usecase.TrackResult{Kind: usecase.TrackBatch, Batch: []model.Shipment{{ID: 1}, {ID: 2}}}, nil
		case "junk":
			return nil, fmt.Errorf("%w: %q", domainErrors.ErrMalformedIdentifier, identifier)
		}
		return nil, domainErrors.NewNotFoundError("tracking", identifier)
	}}
	handler := NewOrderHandler(facade, time.UTC)

	w := performRequest(t, http.MethodGet, "/track/:identifier", "/track/BCH-2024-001", handler.Track, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp dto.TrackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Type != "batch" || len(resp.Batch) != 2 || resp.Order != nil {
		t.Fatalf("unexpected track response %+v", resp)
	}

	if w := performRequest(t, http.MethodGet, "/track/:identifier", "/track/junk", handler.Track, nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if w := performRequest(t, http.MethodGet, "/track/:identifier", "/track/NGE000000000", handler.Track, nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestShipmentHandlerCreateFromOrders(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		status  int
	}{
		{"new batch", true, http.StatusCreated},
		{"existing batch", false, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := backOfficeStub{CreateBatchFn: func(_ context.Context, ids []int64, departure *time.Time, _ model.Actor) (*model.Shipment, bool, error) {
				if departure == nil || departure.Day() != 2 {
					t.Fatalf("expected departure override, got %v", departure)
				}
				return &model.Shipment{ID: 4, OrderIDs: ids}, tt.created, nil
			}}
			w := performRequest(t, http.MethodPost, "/create", "/create", NewShipmentHandler(facade, time.UTC, 10).CreateFromOrders,
				withActor(adminActor), mustJSON(t, dto.CreateFromOrdersRequest{OrderIDs: []int64{1, 2}, DepartureDate: "2024-03-02"}))
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, w.Code)
			}
			var resp dto.CreateFromOrdersResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Created != tt.created || len(resp.Shipment.OrderIDs) != 2 {
				t.Fatalf("unexpected response %+v", resp)
			}
		})
	}
}

func TestShipmentHandlerUpdate(t *testing.T) {
	var got usecase.ShipmentUpdate
	facade := backOfficeStub{UpdateShipmentFn: func(_ context.Context, id int64, upd usecase.ShipmentUpdate, _ model.Actor) (*usecase.ShipmentTransition, error) {
		got = upd
		return &usecase.ShipmentTransition{Shipment: &model.Shipment{ID: id}, CascadedOrders: 3}, nil
	}}
	body := []byte(`{"estimatedDeliveryDate":"2024-03-09","shippingCost":"120.50","status":"In Transit","location":"NAIA"}`)

	w := performRequest(t, http.MethodPut, "/shipments/:id", "/shipments/8", NewShipmentHandler(facade, time.UTC, 10).Update, withActor(adminActor), body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if got.Status == nil || got.Status.Status != "In Transit" || got.Status.Location != "NAIA" {
		t.Fatalf("expected status update to be forwarded, got %+v", got.Status)
	}
	if got.Patch.ShippingCost == nil || got.Patch.ShippingCost.String() != "120.5" {
		t.Fatalf("unexpected shipping cost %v", got.Patch.ShippingCost)
	}
	if got.Patch.EstimatedDeliveryDate == nil {
		t.Fatal("expected estimated delivery date")
	}

	var resp dto.ShipmentTransitionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.CascadedOrders != 3 {
		t.Fatalf("unexpected response %s (%v)", w.Body.String(), err)
	}
}

func TestShipmentHandlerChangeStatus(t *testing.T) {
	var got usecase.StatusUpdate
	facade := backOfficeStub{ChangeShipmentStatusFn: func(_ context.Context, id int64, upd usecase.StatusUpdate, _ model.Actor) (*usecase.ShipmentTransition, error) {
		got = upd
		return &usecase.ShipmentTransition{Shipment: &model.Shipment{ID: id, CurrentStatus: model.ShipmentStatusOutForDelivery}, CascadedOrders: 2}, nil
	}}

	w := performRequest(t, http.MethodPost, "/shipments/:id/status", "/shipments/8/status", NewShipmentHandler(facade, time.UTC, 10).ChangeStatus,
		withActor(adminActor), mustJSON(t, dto.StatusRequest{Status: "Out for Delivery", Notes: "van 2"}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got.Status != "Out for Delivery" || got.Notes != "van 2" {
		t.Fatalf("unexpected status update %+v", got)
	}
}

func TestShipmentHandlerBulkStatus(t *testing.T) {
	facade := backOfficeStub{UpdateBulkStatusFn: func(_ context.Context, ids []int64, _ usecase.StatusUpdate, _ model.Actor) (usecase.BulkResult, error) {
		return usecase.BulkResult{
			Requested: len(ids),
			Updated:   1,
			Failed:    []usecase.BulkFailure{{ShipmentID: ids[1], Reason: "cannot change status"}},
		}, nil
	}}

	w := performRequest(t, http.MethodPut, "/bulk", "/bulk", NewShipmentHandler(facade, time.UTC, 10).BulkStatus, withActor(adminActor),
		mustJSON(t, dto.BulkStatusRequest{ShipmentIDs: []int64{1, 2}, Status: "In Transit"}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp dto.BulkResultResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Requested != 2 || resp.Updated != 1 || len(resp.Failed) != 1 || resp.Failed[0].ShipmentID != 2 {
		t.Fatalf("unexpected bulk response %+v", resp)
	}

	missing := backOfficeStub{UpdateBulkStatusFn: func(context.Context, []int64, usecase.StatusUpdate, model.Actor) (usecase.BulkResult, error) {
		return usecase.BulkResult{}, domainErrors.NewNotFoundError("shipment", "9")
	}}
	w = performRequest(t, http.MethodPut, "/bulk", "/bulk", NewShipmentHandler(missing, time.UTC, 10).BulkStatus, withActor(adminActor),
		mustJSON(t, dto.BulkStatusRequest{ShipmentIDs: []int64{9}, Status: "In Transit"}))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestShipmentHandlerBatchStatus(t *testing.T) {
	facade := backOfficeStub{UpdateBatchStatusFn: func(_ context.Context, batch string, _ usecase.StatusUpdate, _ model.Actor) (usecase.BulkResult, error) {
		if batch != "BCH-2024-001" {
			t.Fatalf("unexpected batch %q", batch)
		}
		return usecase.BulkResult{Requested: 2, Updated: 2, CascadedOrders: 5}, nil
	}}

	w := performRequest(t, http.MethodPut, "/batch/:batchNumber/status", "/batch/BCH-2024-001/status", NewShipmentHandler(facade, time.UTC, 10).BatchStatus,
		withActor(adminActor), mustJSON(t, dto.StatusRequest{Status: "In Transit"}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp dto.BulkResultResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.CascadedOrders != 5 || resp.Failed == nil {
		t.Fatalf("unexpected batch response %s (%v)", w.Body.String(), err)
	}
}

func TestShipmentHandlerReads(t *testing.T) {
	handler := NewShipmentHandler(backOfficeStub{}, time.UTC, 10)

	if w := performRequest(t, http.MethodGet, "/shipments/:id", "/shipments/2", handler.Get, nil, nil); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w := performRequest(t, http.MethodGet, "/track/:trackingId", "/track/NGE12345678", handler.Track, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var tracking dto.TrackingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &tracking); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tracking.TrackingID != "NGE12345678" || tracking.History == nil || tracking.Parcels == nil {
		t.Fatalf("unexpected tracking response %+v", tracking)
	}

	if w := performRequest(t, http.MethodGet, "/batch/:batchNumber", "/batch/BCH-2024-001", handler.Batch, nil, nil); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestShipmentHandlerDelete(t *testing.T) {
	facade := backOfficeStub{DeleteShipmentFn: func(_ context.Context, id int64) error {
		if id == 404 {
			return domainErrors.NewNotFoundError("shipment", "404")
		}
		return nil
	}}
	handler := NewShipmentHandler(facade, time.UTC, 10)

	if w := performRequest(t, http.MethodDelete, "/shipments/:id", "/shipments/3", handler.Delete, withActor(adminActor), nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if w := performRequest(t, http.MethodDelete, "/shipments/:id", "/shipments/404", handler.Delete, withActor(adminActor), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestShipmentHandlerAutoBatch(t *testing.T) {
	var gotLimit int
	facade := backOfficeStub{RunAutoBatchFn: func(_ context.Context, limit int) (int, error) {
		gotLimit = limit
		return 4, nil
	}}
	handler := NewShipmentHandler(facade, time.UTC, 25)

	w := performRequest(t, http.MethodPost, "/auto", "/auto", handler.AutoBatch, withActor(adminActor), nil)
	if w.Code != http.StatusOK || gotLimit != 25 {
		t.Fatalf("expected default limit 25 and 200, got %d %d", gotLimit, w.Code)
	}
	if w.Body.String() != `{"attached":4}` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	performRequest(t, http.MethodPost, "/auto", "/auto?limit=3", handler.AutoBatch, withActor(adminActor), nil)
	if gotLimit != 3 {
		t.Fatalf("expected limit 3, got %d", gotLimit)
	}

	if w := performRequest(t, http.MethodPost, "/auto", "/auto?limit=-1", handler.AutoBatch, withActor(adminActor), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	if w := performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(backOfficeStub{}).Check, nil, nil); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w := performRequest(t, http.MethodGet, "/health", "/health", NewHealthHandler(backOfficeStub{HealthErr: errors.New("down")}).Check, nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if p := decodeProblem(t, w); p.Code != "DATABASE_UNAVAILABLE" {
		t.Fatalf("unexpected code %s", p.Code)
	}
}
