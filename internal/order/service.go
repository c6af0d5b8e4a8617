package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/himmat05/prime-deal/internal/product"
	"github.com/himmat05/prime-deal/internal/user"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("item quantity must be a positive integer")
	ErrUnknownProduct  = errors.New("cart references an unknown product")
)

type Service interface {
	Checkout(ctx context.Context, externalID string, cart []CartItem) (uuid.UUID, error)
	ListByUser(ctx context.Context, externalID string) ([]Order, error)
}

type service struct {
	orders   Repository
	users    user.Repository
	products product.Repository
}

func NewService(orders Repository, users user.Repository, products product.Repository) Service {
	return &service{
		orders:   orders,
		users:    users,
		products: products,
	}
}

// Checkout turns a cart into a persisted order: resolve the local user,
// validate the cart, snapshot current prices, compute the total and write the
// header plus line items atomically. A cart entry without a matching product
// fails the whole order; nothing is priced at zero.
func (s *service) Checkout(ctx context.Context, externalID string, cart []CartItem) (uuid.UUID, error) {
	u, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return uuid.Nil, user.ErrNotFound
		}
		log.Error().Err(err).Str("external_id", externalID).Msg("service: failed to resolve user for checkout")
		return uuid.Nil, fmt.Errorf("service: failed to resolve user: %w", err)
	}

	if len(cart) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	productIDs := make([]int64, 0, len(cart))
	seen := make(map[int64]bool, len(cart))
	for _, entry := range cart {
		if entry.Quantity <= 0 {
			return uuid.Nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, entry.ProductID)
		}
		if entry.ProductID <= 0 {
			return uuid.Nil, fmt.Errorf("%w: product id %d", ErrUnknownProduct, entry.ProductID)
		}
		if !seen[entry.ProductID] {
			seen[entry.ProductID] = true
			productIDs = append(productIDs, entry.ProductID)
		}
	}

	prices, err := s.products.PricesByIDs(ctx, productIDs)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to resolve cart prices")
		return uuid.Nil, fmt.Errorf("service: failed to resolve prices: %w", err)
	}

	total := decimal.Zero
	items := make([]Item, 0, len(cart))
	for _, entry := range cart {
		price, ok := prices[entry.ProductID]
		if !ok {
			return uuid.Nil, fmt.Errorf("%w: product %d", ErrUnknownProduct, entry.ProductID)
		}

		items = append(items, Item{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			Price:     price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}

	o := &Order{
		UserID:      u.ID,
		TotalAmount: total,
		Status:      StatusPending,
		Items:       items,
	}

	orderID, err := s.orders.Create(ctx, o)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("service: failed to create order")
		return uuid.Nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Int64("user_id", u.ID).Str("total", total.String()).Msg("service: order created")
	return orderID, nil
}

// ListByUser returns the user's order history newest first, each order
// carrying its full set of line items. A user with no orders gets an empty
// list, not an error.
func (s *service) ListByUser(ctx context.Context, externalID string) ([]Order, error) {
	u, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		log.Error().Err(err).Str("external_id", externalID).Msg("service: failed to resolve user for order history")
		return nil, fmt.Errorf("service: failed to resolve user: %w", err)
	}

	orders, err := s.orders.ListByUserID(ctx, u.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", u.ID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}
