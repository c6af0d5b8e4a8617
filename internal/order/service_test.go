package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himmat05/prime-deal/internal/order"
	"github.com/himmat05/prime-deal/internal/product"
	"github.com/himmat05/prime-deal/internal/user"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) (uuid.UUID, error)
	listByUserIDFunc func(ctx context.Context, userID int64) ([]order.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (uuid.UUID, error) {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) ListByUserID(ctx context.Context, userID int64) ([]order.Order, error) {
	return m.listByUserIDFunc(ctx, userID)
}

type mockUserRepository struct {
	createFunc          func(ctx context.Context, u *user.User) (*user.User, error)
	getByExternalIDFunc func(ctx context.Context, externalID string) (*user.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepository) GetByExternalID(ctx context.Context, externalID string) (*user.User, error) {
	return m.getByExternalIDFunc(ctx, externalID)
}

type mockProductRepository struct {
	listFunc        func(ctx context.Context) ([]product.Product, error)
	getByIDFunc     func(ctx context.Context, id int64) (*product.Product, error)
	pricesByIDsFunc func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
}

func (m *mockProductRepository) List(ctx context.Context) ([]product.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepository) PricesByIDs(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	return m.pricesByIDsFunc(ctx, ids)
}

func knownUser(id int64, externalID string) *mockUserRepository {
	return &mockUserRepository{
		getByExternalIDFunc: func(ctx context.Context, got string) (*user.User, error) {
			if got != externalID {
				return nil, user.ErrNotFound
			}
			return &user.User{ID: id, ExternalID: externalID, Email: "a@b.com", Name: "A"}, nil
		},
	}
}

func TestOrderService_Checkout(t *testing.T) {
	catalogPrices := map[int64]decimal.Decimal{
		1: decimal.RequireFromString("10.00"),
		2: decimal.RequireFromString("5.00"),
	}

	tests := []struct {
		name            string
		cart            []order.CartItem
		pricesByIDsFunc func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
		createFunc      func(ctx context.Context, o *order.Order) (uuid.UUID, error)
		wantErrIs       error
	}{
		{
			name:      "empty_cart",
			cart:      nil,
			wantErrIs: order.ErrEmptyCart,
		},
		{
			name:      "zero_quantity",
			cart:      []order.CartItem{{ProductID: 1, Quantity: 0}},
			wantErrIs: order.ErrInvalidQuantity,
		},
		{
			name:      "negative_quantity",
			cart:      []order.CartItem{{ProductID: 1, Quantity: -3}},
			wantErrIs: order.ErrInvalidQuantity,
		},
		{
			name: "unknown_product",
			cart: []order.CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 999, Quantity: 1}},
			pricesByIDsFunc: func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
				return catalogPrices, nil
			},
			wantErrIs: order.ErrUnknownProduct,
		},
		{
			name: "price_lookup_failure",
			cart: []order.CartItem{{ProductID: 1, Quantity: 1}},
			pricesByIDsFunc: func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			name: "repository_failure",
			cart: []order.CartItem{{ProductID: 1, Quantity: 1}},
			pricesByIDsFunc: func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
				return catalogPrices, nil
			},
			createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
				return uuid.Nil, errors.New("insert failed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createCalled := false
			orderRepo := &mockOrderRepository{
				createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
					createCalled = true
					if tt.createFunc != nil {
						return tt.createFunc(ctx, o)
					}
					return uuid.Must(uuid.NewV4()), nil
				},
			}
			productRepo := &mockProductRepository{pricesByIDsFunc: tt.pricesByIDsFunc}
			svc := order.NewService(orderRepo, knownUser(42, "abc"), productRepo)

			orderID, err := svc.Checkout(context.Background(), "abc", tt.cart)

			require.Error(t, err)
			require.Equal(t, uuid.Nil, orderID)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				assert.False(t, createCalled, "no order row may be written for a rejected cart")
			}
		})
	}
}

func TestOrderService_Checkout_UserNotFound(t *testing.T) {
	orderRepo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
			t.Fatal("create must not be called when the user is unknown")
			return uuid.Nil, nil
		},
	}
	svc := order.NewService(orderRepo, knownUser(42, "abc"), &mockProductRepository{})

	_, err := svc.Checkout(context.Background(), "someone-else", []order.CartItem{{ProductID: 1, Quantity: 1}})
	require.ErrorIs(t, err, user.ErrNotFound)
}

func TestOrderService_Checkout_Success(t *testing.T) {
	var persisted *order.Order
	wantID := uuid.Must(uuid.NewV4())

	orderRepo := &mockOrderRepository{
		createFunc: func(ctx context.Context, o *order.Order) (uuid.UUID, error) {
			persisted = o
			return wantID, nil
		},
	}
	productRepo := &mockProductRepository{
		pricesByIDsFunc: func(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
			require.ElementsMatch(t, []int64{1, 2}, ids)
			return map[int64]decimal.Decimal{
				1: decimal.RequireFromString("10.00"),
				2: decimal.RequireFromString("5.00"),
			}, nil
		},
	}
	svc := order.NewService(orderRepo, knownUser(42, "abc"), productRepo)

	cart := []order.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}

	orderID, err := svc.Checkout(context.Background(), "abc", cart)
	require.NoError(t, err)
	require.Equal(t, wantID, orderID)

	require.NotNil(t, persisted)
	assert.Equal(t, int64(42), persisted.UserID)
	assert.Equal(t, order.StatusPending, persisted.Status)
	assert.True(t, decimal.RequireFromString("25.00").Equal(persisted.TotalAmount),
		"total must be the sum of snapshot price times quantity, got %s", persisted.TotalAmount)

	require.Len(t, persisted.Items, 2)
	assert.True(t, decimal.RequireFromString("10.00").Equal(persisted.Items[0].Price))
	assert.Equal(t, 2, persisted.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("5.00").Equal(persisted.Items[1].Price))
	assert.Equal(t, 1, persisted.Items[1].Quantity)
}

func TestOrderService_ListByUser(t *testing.T) {
	firstID := uuid.Must(uuid.NewV4())
	secondID := uuid.Must(uuid.NewV4())
	history := []order.Order{
		{ID: secondID, UserID: 42, Status: order.StatusPending, CreatedAt: time.Now()},
		{ID: firstID, UserID: 42, Status: order.StatusPending, CreatedAt: time.Now().Add(-time.Hour)},
	}

	orderRepo := &mockOrderRepository{
		listByUserIDFunc: func(ctx context.Context, userID int64) ([]order.Order, error) {
			require.Equal(t, int64(42), userID)
			return history, nil
		},
	}
	svc := order.NewService(orderRepo, knownUser(42, "abc"), &mockProductRepository{})

	orders, err := svc.ListByUser(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, secondID, orders[0].ID, "newest order must come first")
	assert.Equal(t, firstID, orders[1].ID)
}

func TestOrderService_ListByUser_Empty(t *testing.T) {
	orderRepo := &mockOrderRepository{
		listByUserIDFunc: func(ctx context.Context, userID int64) ([]order.Order, error) {
			return []order.Order{}, nil
		},
	}
	svc := order.NewService(orderRepo, knownUser(42, "abc"), &mockProductRepository{})

	orders, err := svc.ListByUser(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, orders)
	require.Empty(t, orders)
}

func TestOrderService_ListByUser_UserNotFound(t *testing.T) {
	svc := order.NewService(&mockOrderRepository{}, knownUser(42, "abc"), &mockProductRepository{})

	_, err := svc.ListByUser(context.Background(), "ghost")
	require.ErrorIs(t, err, user.ErrNotFound)
}
