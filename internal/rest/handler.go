package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mealdrop-be/internal/logger"
	"mealdrop-be/internal/menu"
	"mealdrop-be/internal/metrics"
	"mealdrop-be/internal/order"
	"mealdrop-be/internal/refund"
	"mealdrop-be/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Orders  order.Service
	Refunds refund.Service
}

func NewHandler(orderSvc order.Service, refundSvc refund.Service) *Handler {
	return &Handler{
		Orders:  orderSvc,
		Refunds: refundSvc,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/metrics", h.getMetrics).Methods("GET")

	r.HandleFunc("/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/orders/{id}/history", h.getHistory).Methods("GET")
	r.HandleFunc("/orders/{id}/status", h.advanceStatus).Methods("POST")
	r.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods("POST")
	r.HandleFunc("/orders/{id}/items", h.modifyItems).Methods("PUT")

	r.HandleFunc("/orders/{id}/refund", h.getRefund).Methods("GET")
	r.HandleFunc("/refunds/{id}/resolve", h.resolveRefund).Methods("POST")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Snapshot())
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	o, err := h.Orders.CreateOrder(r.Context(), order.CreateOrderInput{
		CustomerID:      req.CustomerID,
		RestaurantID:    req.RestaurantID,
		Items:           toItemRequests(req.Items),
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Instructions:    req.Instructions,
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		DeliveryFee:     req.DeliveryFee,
		Scheduled:       req.Scheduled,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	entries, err := h.Orders.GetHistory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(entries))
}

func (h *Handler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req advanceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Orders.AdvanceStatus(r.Context(), id, order.Status(req.Status), actorID, req.Note); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Orders.CancelOrder(r.Context(), id, req.Reason, actorID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) modifyItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req modifyItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Orders.ModifyOrder(r.Context(), id, toItemRequests(req.Items), actorID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) getRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ref, err := h.Refunds.GetByOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toRefundResponse(ref))
}

func (h *Handler) resolveRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req resolveRefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.Refunds.Resolve(r.Context(), id, req.Approve, actorID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actorID, ok := utils.GetActorIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return actorID, true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case order.IsValidation(err),
		errors.Is(err, menu.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, refund.ErrRefundNotFound),
		errors.Is(err, menu.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrStatusConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrCancellationNotAllowed),
		errors.Is(err, order.ErrCancellationWindowExpired),
		errors.Is(err, order.ErrModificationNotAllowed),
		errors.Is(err, order.ErrModificationWindowExpired),
		errors.Is(err, refund.ErrRefundNotPending),
		errors.Is(err, refund.ErrRefundNotApproved),
		errors.Is(err, menu.ErrProductUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
