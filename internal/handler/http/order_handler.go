package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/himmat05/prime-deal/internal/identity"
	"github.com/himmat05/prime-deal/internal/order"
	"github.com/himmat05/prime-deal/internal/user"
)

type CreateOrderRequest struct {
	Items []CartItemPayload `json:"items"`
}

type CartItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderResponse struct {
	OrderID uuid.UUID `json:"order_id"`
}

type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []OrderItemResponse `json:"items"`
}

type OrderHandler struct {
	service  order.Service
	verifier identity.Verifier
}

func NewOrderHandler(service order.Service, verifier identity.Verifier) *OrderHandler {
	return &OrderHandler{
		service:  service,
		verifier: verifier,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/orders", func(r chi.Router) {
		r.Use(RequireAuth(h.verifier))
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
	})
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	externalID, ok := externalIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var requestPayload CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode order request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	cart := make([]order.CartItem, 0, len(requestPayload.Items))
	for _, item := range requestPayload.Items {
		cart = append(cart, order.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	orderID, err := h.service.Checkout(r.Context(), externalID, cart)
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("Failed to create order via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessageForCheckout(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, CreateOrderResponse{OrderID: orderID})
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	externalID, ok := externalIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.service.ListByUser(r.Context(), externalID)
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("Failed to list orders via service")

		if errors.Is(err, user.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	responsePayload := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		items := make([]OrderItemResponse, 0, len(o.Items))
		for _, item := range o.Items {
			items = append(items, OrderItemResponse{
				ProductID: item.ProductID,
				Name:      item.ProductName,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		responsePayload = append(responsePayload, OrderResponse{
			ID:          o.ID,
			TotalAmount: o.TotalAmount,
			Status:      o.Status.String(),
			CreatedAt:   o.CreatedAt,
			Items:       items,
		})
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func clientMessageForCheckout(err error) string {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return "User not found"
	case errors.Is(err, order.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, order.ErrInvalidQuantity):
		return "Item quantity must be a positive integer"
	case errors.Is(err, order.ErrUnknownProduct):
		return "Cart references an unknown product"
	default:
		return "Could not create order"
	}
}
