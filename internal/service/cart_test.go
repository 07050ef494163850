package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/service"
)

const (
	testSession  = "sess_test"
	testDebounce = 20 * time.Millisecond
)

func seededClient() *commerce.MockClient {
	client := commerce.NewMockClient()
	client.Cart = domain.Cart{
		Items: []domain.CartItem{
			{ID: 1, ProductID: 10, ProductName: "Oxford Shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
		TaxPercentage:  decimal.NewFromInt(5),
		ShippingConfig: domain.ShippingConfig{Cost: decimal.NewFromInt(10)},
	}
	client.Cart.CartTotal = decimal.NewFromInt(200)
	client.Cart.CartCount = 2
	return client
}

func TestGetCart_RendersTotals(t *testing.T) {
	svc := service.NewCartService(seededClient(), testDebounce, nil, nil)

	summary, err := svc.GetCart(context.Background(), testSession)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, "200.00", summary.Subtotal)
	assert.Equal(t, "10.00", summary.TaxAmount)
	assert.Equal(t, "10.00", summary.Shipping)
	assert.Equal(t, "220.00", summary.GrandTotal)
	assert.Equal(t, "100.00", summary.Items[0].UnitPrice)
	assert.Equal(t, "200.00", summary.Items[0].LineSubtotal)
}

func TestAdjustQuantity_OptimisticTotals(t *testing.T) {
	client := seededClient()
	svc := service.NewCartService(client, time.Minute, nil, nil)

	summary, err := svc.AdjustItemQuantity(context.Background(), testSession, 1, 1)
	require.NoError(t, err)

	// Totals reflect the edit before any network write happens.
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, "300.00", summary.Subtotal)
	assert.Equal(t, "325.00", summary.GrandTotal)
	assert.True(t, summary.Items[0].Updating)
	assert.Equal(t, 0, client.Calls("UpdateItemQuantity"))

	// Flush forces the pending write through.
	svc.Flush(testSession)
	assert.Equal(t, 1, client.Calls("UpdateItemQuantity"))
}

func TestAdjustQuantity_UnknownItem(t *testing.T) {
	svc := service.NewCartService(seededClient(), testDebounce, nil, nil)

	_, err := svc.AdjustItemQuantity(context.Background(), testSession, 99, 1)
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestAddItem_WritesThroughImmediately(t *testing.T) {
	client := seededClient()
	client.Products = []domain.Product{
		{ID: 20, Name: "Wool Scarf", SellingPrice: decimal.NewFromInt(40)},
	}
	svc := service.NewCartService(client, testDebounce, nil, nil)

	summary, err := svc.AddItem(context.Background(), testSession, commerce.AddItemParams{
		ProductID: 20,
		Quantity:  1,
	})
	require.NoError(t, err)
	require.Len(t, summary.Items, 2)
	assert.Equal(t, 1, client.Calls("AddItem"))
	assert.Equal(t, "240.00", summary.Subtotal)
}

func TestRemoveItem_Immediate(t *testing.T) {
	client := seededClient()
	svc := service.NewCartService(client, testDebounce, nil, nil)

	summary, err := svc.RemoveItem(context.Background(), testSession, 1)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 1, client.Calls("RemoveItem"))
}

func TestClearCart_DropsMirror(t *testing.T) {
	client := seededClient()
	svc := service.NewCartService(client, testDebounce, nil, nil)

	_, err := svc.GetCart(context.Background(), testSession)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), testSession))
	assert.Equal(t, 1, client.Calls("ClearCart"))

	// The next read reseeds the mirror from the server.
	_, err = svc.GetCart(context.Background(), testSession)
	require.NoError(t, err)
	assert.Equal(t, 2, client.Calls("GetCart"))
}
