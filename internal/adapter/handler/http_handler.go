package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/domain"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/core/service"
	"github.com/kumsat/microservices-checkout-quality-gate/internal/port"
)

const tracerName = "github.com/kumsat/microservices-checkout-quality-gate/handler"

type HTTPHandler struct {
	catalog   port.Catalog
	carts     port.CartStore
	inventory *service.InventoryService
	payments  port.PaymentGateway
	orders    *service.OrderService
	checkout  *service.CheckoutService
}

func NewHTTPHandler(
	catalog port.Catalog,
	carts port.CartStore,
	inventory *service.InventoryService,
	payments port.PaymentGateway,
	orders *service.OrderService,
	checkout *service.CheckoutService,
) *HTTPHandler {
	return &HTTPHandler{
		catalog:   catalog,
		carts:     carts,
		inventory: inventory,
		payments:  payments,
		orders:    orders,
		checkout:  checkout,
	}
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CartResponse struct {
	Status string         `json:"status"`
	Cart   map[string]int `json:"cart"`
}

type StockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SetStockRequest struct {
	ProductID string `json:"product_id"`
	Stock     *int   `json:"stock"`
}

type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type ReserveResponse struct {
	Status    string `json:"status"`
	Granted   bool   `json:"granted"`
	Remaining *int   `json:"remaining,omitempty"`
}

type ChargeRequest struct {
	CardNumber string           `json:"card_number"`
	Amount     *decimal.Decimal `json:"amount"`
}

type ChargeResponse struct {
	Status string           `json:"status"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

type CreateOrderRequest struct {
	UserID string          `json:"user_id"`
	Items  map[string]int  `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type OrderResponse struct {
	Status string       `json:"status"`
	Order  domain.Order `json:"order"`
}

type CheckoutHTTPRequest struct {
	RequestID  string `json:"request_id"`
	UserID     string `json:"user_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	CardNumber string `json:"card_number"`
}

type CheckoutHTTPResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	State   string        `json:"state,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Order   *domain.Order `json:"order,omitempty"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetCart returns the bare quantity map.
func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Items)
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" || req.Quantity <= 0 {
		writeError(w, r, fmt.Errorf("%w: product_id and a positive quantity are required", domain.ErrInvalidRequest))
		return
	}

	cart, err := h.carts.AddItem(r.Context(), chi.URLParam(r, "user_id"), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Status: "OK", Cart: cart.Items})
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.RemoveItem(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "product_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Status: "OK", Cart: cart.Items})
}

func (h *HTTPHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	stock, err := h.inventory.GetStock(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StockResponse{ProductID: productID, Stock: stock})
}

func (h *HTTPHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req SetStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Stock == nil {
		writeError(w, r, fmt.Errorf("%w: stock is required", domain.ErrInvalidRequest))
		return
	}

	if err := h.inventory.SetStock(r.Context(), req.ProductID, *req.Stock); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (h *HTTPHandler) ReserveStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.inventory.Reserve(r.Context(), req.ProductID, req.Quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		writeJSON(w, http.StatusBadRequest, ReserveResponse{Status: domain.ReasonInsufficientStock})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReserveResponse{Status: "OK", Granted: true, Remaining: &outcome.Remaining})
}

func (h *HTTPHandler) ReleaseStock(w http.ResponseWriter, r *http.Request) {
	var req StockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.inventory.Release(r.Context(), req.ProductID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (h *HTTPHandler) Charge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Amount == nil {
		writeError(w, r, fmt.Errorf("%w: amount is required", domain.ErrInvalidRequest))
		return
	}

	result, err := h.payments.Charge(r.Context(), req.CardNumber, *req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !result.Approved() {
		writeJSON(w, http.StatusPaymentRequired, ChargeResponse{Status: "FAILED", Reason: result.Reason})
		return
	}
	writeJSON(w, http.StatusOK, ChargeResponse{Status: "SUCCESS", Amount: &result.Amount})
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.UserID, req.Items, req.Total)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{Status: "OK", Order: order})
}

func (h *HTTPHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *HTTPHandler) GetLatestOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.LatestOrder(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutHTTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), domain.CheckoutRequest{
		RequestID:  req.RequestID,
		UserID:     req.UserID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		CardNumber: req.CardNumber,
	})
	if errors.Is(err, domain.ErrDuplicateRequest) {
		writeJSON(w, http.StatusConflict, CheckoutHTTPResponse{
			Success: false,
			Message: "duplicate request",
			Reason:  domain.ReasonDuplicateRequest,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, checkoutStatus(result.State), CheckoutHTTPResponse{
		Success: result.Success,
		Message: result.Message,
		State:   string(result.State),
		Reason:  result.Reason,
		Order:   result.Order,
	})
}

func checkoutStatus(state domain.CheckoutState) int {
	switch state {
	case domain.StateOrdered:
		return http.StatusOK
	case domain.StateStockDenied:
		return http.StatusConflict
	case domain.StatePaymentDeclined:
		return http.StatusPaymentRequired
	default:
		return http.StatusBadGateway
	}
}
