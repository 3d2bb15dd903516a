package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mealdrop-be/internal/menu"
	"mealdrop-be/internal/order"
	"mealdrop-be/internal/refund"
	"mealdrop-be/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, input order.CreateOrderInput) (*order.Order, error) {
	args := m.Called(ctx, input)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) AdvanceStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status, actorID, note string) error {
	args := m.Called(ctx, orderID, newStatus, actorID, note)
	return args.Error(0)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actorID string) error {
	args := m.Called(ctx, orderID, reason, actorID)
	return args.Error(0)
}

func (m *MockOrderService) ModifyOrder(ctx context.Context, orderID uuid.UUID, newItems []menu.ItemRequest, actorID string) error {
	args := m.Called(ctx, orderID, newItems, actorID)
	return args.Error(0)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderService) GetHistory(ctx context.Context, orderID uuid.UUID) ([]*order.HistoryEntry, error) {
	args := m.Called(ctx, orderID)
	if entries, ok := args.Get(0).([]*order.HistoryEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) Initiate(ctx context.Context, orderID uuid.UUID, amount int64, reason, actorID string) (*refund.Refund, error) {
	args := m.Called(ctx, orderID, amount, reason, actorID)
	if r, ok := args.Get(0).(*refund.Refund); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefundService) Resolve(ctx context.Context, refundID uuid.UUID, approve bool, actorID string) error {
	args := m.Called(ctx, refundID, approve, actorID)
	return args.Error(0)
}

func (m *MockRefundService) Complete(ctx context.Context, refundID uuid.UUID, actorID string) error {
	args := m.Called(ctx, refundID, actorID)
	return args.Error(0)
}

func (m *MockRefundService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*refund.Refund, error) {
	args := m.Called(ctx, orderID)
	if r, ok := args.Get(0).(*refund.Refund); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Helpers ---

func setupRouter(orders *MockOrderService, refunds *MockRefundService) *mux.Router {
	h := NewHandler(orders, refunds)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func asActor(req *http.Request, actorID string) *http.Request {
	ctx := utils.SetActorContext(req.Context(), actorID, "", utils.RoleCustomer)
	return req.WithContext(ctx)
}

func sampleOrder(status order.Status) *order.Order {
	now := time.Now()
	return &order.Order{
		ID:           uuid.New(),
		Number:       "ORD-20260831-120000-001-0001",
		CustomerID:   uuid.New(),
		RestaurantID: uuid.New(),
		Items: []order.Item{
			{ProductID: uuid.New(), Name: "Pad Thai", Price: 150, Quantity: 2},
			{ProductID: uuid.New(), Name: "Spring Rolls", Price: 60, Quantity: 1},
		},
		Subtotal:             360,
		DeliveryFee:          40,
		Tax:                  36,
		Total:                436,
		DeliveryAddress:      "12 Main St",
		Phone:                "+15550001111",
		PaymentMethod:        order.PaymentCard,
		PaymentStatus:        order.PaymentStatusPending,
		Status:               status,
		CanCancel:            status.AllowsCancel(),
		CanModify:            status.AllowsModify(),
		CancellationDeadline: now.Add(order.CancellationWindow),
		ModificationDeadline: now.Add(order.ModificationWindow),
		Version:              1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// --- Tests ---

func TestCreateOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		refunds := new(MockRefundService)
		router := setupRouter(orders, refunds)

		o := sampleOrder(order.StatusPlaced)
		orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("order.CreateOrderInput")).Return(o, nil)

		payload := createOrderRequest{
			CustomerID:      o.CustomerID,
			RestaurantID:    o.RestaurantID,
			Items:           []itemRequest{{ProductID: o.Items[0].ProductID, Quantity: 2}},
			DeliveryAddress: "12 Main St",
			Phone:           "+15550001111",
			PaymentMethod:   "card",
			DeliveryFee:     40,
		}
		b, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/orders", bytes.NewReader(b))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "placed", body["status"])
		assert.Equal(t, float64(436), body["total"])
		assert.Equal(t, true, body["can_cancel"])
		assert.Equal(t, true, body["can_modify"])
		orders.AssertExpectations(t)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		router := setupRouter(new(MockOrderService), new(MockRefundService))

		req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation error maps to 400", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, &order.ValidationError{Field: "phone", Reason: "required"})

		req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["error"], "phone")
	})

	t.Run("Unavailable product maps to 422", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, menu.ErrProductUnavailable)

		req := httptest.NewRequest("POST", "/orders", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestGetOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		o := sampleOrder(order.StatusConfirmed)
		orders.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		req := httptest.NewRequest("GET", "/orders/"+o.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "confirmed", body["status"])
		assert.Equal(t, o.Number, body["number"])
	})

	t.Run("Not found", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		id := uuid.New()
		orders.On("GetOrder", mock.Anything, id).Return(nil, order.ErrOrderNotFound)

		req := httptest.NewRequest("GET", "/orders/"+id.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Invalid id", func(t *testing.T) {
		router := setupRouter(new(MockOrderService), new(MockRefundService))

		req := httptest.NewRequest("GET", "/orders/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetHistoryHandler(t *testing.T) {
	orders := new(MockOrderService)
	router := setupRouter(orders, new(MockRefundService))

	id := uuid.New()
	entries := []*order.HistoryEntry{
		{OrderID: id, Status: order.StatusPlaced, Note: "Order placed successfully", ChangedBy: "cust-1", ChangedAt: time.Now()},
		{OrderID: id, Status: order.StatusConfirmed, Note: "Order confirmed by restaurant", ChangedBy: "rest-1", ChangedAt: time.Now()},
	}
	orders.On("GetHistory", mock.Anything, id).Return(entries, nil)

	req := httptest.NewRequest("GET", "/orders/"+id.String()+"/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body []historyEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "placed", body[0].Status)
	assert.Equal(t, "confirmed", body[1].Status)
}

func TestAdvanceStatusHandler(t *testing.T) {
	t.Run("Requires authentication", func(t *testing.T) {
		router := setupRouter(new(MockOrderService), new(MockRefundService))

		req := httptest.NewRequest("POST", "/orders/"+uuid.NewString()+"/status", bytes.NewBufferString(`{"status":"confirmed"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		o := sampleOrder(order.StatusConfirmed)
		orders.On("AdvanceStatus", mock.Anything, o.ID, order.StatusConfirmed, "rest-1", "").Return(nil)
		orders.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		req := asActor(httptest.NewRequest("POST", "/orders/"+o.ID.String()+"/status", bytes.NewBufferString(`{"status":"confirmed"}`)), "rest-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "confirmed", body["status"])
		orders.AssertExpectations(t)
	})

	t.Run("Invalid transition maps to 422", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		id := uuid.New()
		orders.On("AdvanceStatus", mock.Anything, id, order.StatusDelivered, "rest-1", "").
			Return(order.ErrInvalidTransition)

		req := asActor(httptest.NewRequest("POST", "/orders/"+id.String()+"/status", bytes.NewBufferString(`{"status":"delivered"}`)), "rest-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Concurrent conflict maps to 409", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		id := uuid.New()
		orders.On("AdvanceStatus", mock.Anything, id, order.StatusConfirmed, "rest-1", "").
			Return(order.ErrStatusConflict)

		req := asActor(httptest.NewRequest("POST", "/orders/"+id.String()+"/status", bytes.NewBufferString(`{"status":"confirmed"}`)), "rest-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCancelOrderHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		o := sampleOrder(order.StatusCancelled)
		o.CancelReason = "changed my mind"
		orders.On("CancelOrder", mock.Anything, o.ID, "changed my mind", "cust-1").Return(nil)
		orders.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		req := asActor(httptest.NewRequest("POST", "/orders/"+o.ID.String()+"/cancel", bytes.NewBufferString(`{"reason":"changed my mind"}`)), "cust-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "cancelled", body["status"])
		assert.Equal(t, "changed my mind", body["cancel_reason"])
		assert.Equal(t, false, body["can_cancel"])
	})

	t.Run("Window expired maps to 422", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		id := uuid.New()
		orders.On("CancelOrder", mock.Anything, id, "too slow", "cust-1").
			Return(order.ErrCancellationWindowExpired)

		req := asActor(httptest.NewRequest("POST", "/orders/"+id.String()+"/cancel", bytes.NewBufferString(`{"reason":"too slow"}`)), "cust-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Requires authentication", func(t *testing.T) {
		router := setupRouter(new(MockOrderService), new(MockRefundService))

		req := httptest.NewRequest("POST", "/orders/"+uuid.NewString()+"/cancel", bytes.NewBufferString(`{"reason":"x"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestModifyItemsHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		o := sampleOrder(order.StatusPlaced)
		productID := uuid.New()
		wantItems := []menu.ItemRequest{{ProductID: productID, Quantity: 3}}

		orders.On("ModifyOrder", mock.Anything, o.ID, wantItems, "cust-1").Return(nil)
		orders.On("GetOrder", mock.Anything, o.ID).Return(o, nil)

		payload := modifyItemsRequest{Items: []itemRequest{{ProductID: productID, Quantity: 3}}}
		b, _ := json.Marshal(payload)

		req := asActor(httptest.NewRequest("PUT", "/orders/"+o.ID.String()+"/items", bytes.NewReader(b)), "cust-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		orders.AssertExpectations(t)
	})

	t.Run("Modification locked maps to 422", func(t *testing.T) {
		orders := new(MockOrderService)
		router := setupRouter(orders, new(MockRefundService))

		id := uuid.New()
		orders.On("ModifyOrder", mock.Anything, id, mock.Anything, "cust-1").
			Return(order.ErrModificationNotAllowed)

		req := asActor(httptest.NewRequest("PUT", "/orders/"+id.String()+"/items", bytes.NewBufferString(`{"items":[]}`)), "cust-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRefundHandlers(t *testing.T) {
	t.Run("Get refund by order", func(t *testing.T) {
		refunds := new(MockRefundService)
		router := setupRouter(new(MockOrderService), refunds)

		orderID := uuid.New()
		ref := &refund.Refund{
			ID:      uuid.New(),
			OrderID: orderID,
			Amount:  436,
			Reason:  "changed my mind",
			Status:  refund.StatusPending,
		}
		refunds.On("GetByOrder", mock.Anything, orderID).Return(ref, nil)

		req := httptest.NewRequest("GET", "/orders/"+orderID.String()+"/refund", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, float64(436), body["amount"])
	})

	t.Run("Refund not found", func(t *testing.T) {
		refunds := new(MockRefundService)
		router := setupRouter(new(MockOrderService), refunds)

		orderID := uuid.New()
		refunds.On("GetByOrder", mock.Anything, orderID).Return(nil, refund.ErrRefundNotFound)

		req := httptest.NewRequest("GET", "/orders/"+orderID.String()+"/refund", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Resolve approves", func(t *testing.T) {
		refunds := new(MockRefundService)
		router := setupRouter(new(MockOrderService), refunds)

		refundID := uuid.New()
		refunds.On("Resolve", mock.Anything, refundID, true, "admin-1").Return(nil)

		req := asActor(httptest.NewRequest("POST", "/refunds/"+refundID.String()+"/resolve", bytes.NewBufferString(`{"approve":true}`)), "admin-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		refunds.AssertExpectations(t)
	})

	t.Run("Resolve twice maps to 422", func(t *testing.T) {
		refunds := new(MockRefundService)
		router := setupRouter(new(MockOrderService), refunds)

		refundID := uuid.New()
		refunds.On("Resolve", mock.Anything, refundID, false, "admin-1").
			Return(refund.ErrRefundNotPending)

		req := asActor(httptest.NewRequest("POST", "/refunds/"+refundID.String()+"/resolve", bytes.NewBufferString(`{"approve":false}`)), "admin-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(new(MockOrderService), new(MockRefundService))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
}
