package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/models"
)

func TestAddLineKeepsStockUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)

	product, err := env.catalog.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock, "stock is only decremented at payment")
}

func TestAddLineAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	_, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 3})
	require.NoError(t, err)
	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, line.Quantity)

	view, err := env.cart.ViewCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.ProductCarts, 1)
	assert.Equal(t, int64(70000), view.Total)
}

func TestAddLineBeyondStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 4)

	_, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 5})
	assert.ErrorIs(t, err, models.ErrOutOfStock)
}

func TestEditLineToCurrentQuantityIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 5})
	require.NoError(t, err)

	require.NoError(t, env.cart.EditLine(ctx, userID, line.ID, &EditLineRequest{Quantity: 5}))

	view, err := env.cart.ViewCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.ProductCarts, 1)
	assert.Equal(t, 5, view.ProductCarts[0].Quantity)
}

func TestEditLineToZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 2})
	require.NoError(t, err)
	require.NoError(t, env.cart.EditLine(ctx, userID, line.ID, &EditLineRequest{Quantity: 0}))

	view, err := env.cart.ViewCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.ProductCarts)
}

func TestRemoveLineTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 1})
	require.NoError(t, err)

	require.NoError(t, env.cart.RemoveLine(ctx, userID, line.ID))
	err = env.cart.RemoveLine(ctx, userID, line.ID)
	assert.ErrorIs(t, err, models.ErrNotFound, "second delete reports not found")
}

func TestEditLineOfAnotherCustomer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedCustomer(t)
	intruder := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, owner, &AddLineRequest{ProductID: productID, Amount: 1})
	require.NoError(t, err)

	err = env.cart.EditLine(ctx, intruder, line.ID, &EditLineRequest{Quantity: 3})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCheckoutCreatesNotPaidOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	_, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 5})
	require.NoError(t, err)

	order, err := env.cart.Checkout(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusNotPaid, order.Status)
	assert.Equal(t, int64(50000), order.Total)

	product, err := env.catalog.GetProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)

	assert.Contains(t, env.pub.published(), models.EventTypeOrderCheckedOut)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	line, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 1})
	require.NoError(t, err)
	require.NoError(t, env.cart.RemoveLine(ctx, userID, line.ID))

	_, err = env.cart.Checkout(ctx, userID)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCheckoutTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	_, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 1})
	require.NoError(t, err)
	_, err = env.cart.Checkout(ctx, userID)
	require.NoError(t, err)

	// the open cart is gone, a second checkout has nothing to freeze
	_, err = env.cart.Checkout(ctx, userID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCartOpsRequireCustomerProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	workerID := env.seedWorker(t)
	productID := env.seedProduct(t, 10000, 10)

	_, err := env.cart.AddLine(ctx, workerID, &AddLineRequest{ProductID: productID, Amount: 1})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCartViewJSONShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	userID := env.seedCustomer(t)
	productID := env.seedProduct(t, 10000, 10)

	_, err := env.cart.AddLine(ctx, userID, &AddLineRequest{ProductID: productID, Amount: 2})
	require.NoError(t, err)

	view, err := env.cart.ViewCart(ctx, userID)
	require.NoError(t, err)

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "product_carts")

	var lines []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["product_carts"], &lines))
	require.Len(t, lines, 1)

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0]["product"], &product))
	for _, key := range []string{"product_id", "product_name", "product_stock", "product_price", "product_description"} {
		assert.Contains(t, product, key)
	}
}
