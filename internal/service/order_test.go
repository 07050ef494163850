package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetOrder_ReversesSubtotalFromGrandTotal(t *testing.T) {
	client := commerce.NewMockClient()
	client.Orders = []domain.Order{{
		InvoiceNo:    "INV-0042",
		Amount:       dec("325.00"),
		Tax:          dec("15.00"),
		Shipping:     dec("10.00"),
		CouponAmount: dec("0"),
		Status:       domain.OrderDelivered,
	}}

	svc := service.NewOrderService(client)
	view, err := svc.GetOrder(context.Background(), testSession, "INV-0042")
	require.NoError(t, err)

	assert.Equal(t, "300.00", view.ItemsSubtotal)
	assert.Equal(t, "15.00", view.Tax)
	assert.Equal(t, "325.00", view.GrandTotal)
}

func TestGetOrder_CouponAddedBackIntoSubtotal(t *testing.T) {
	client := commerce.NewMockClient()
	client.Orders = []domain.Order{{
		InvoiceNo:    "INV-0043",
		Amount:       dec("407.49"),
		Tax:          dec("32.81"),
		Shipping:     dec("12.99"),
		CouponAmount: dec("75.81"),
	}}

	svc := service.NewOrderService(client)
	view, err := svc.GetOrder(context.Background(), testSession, "INV-0043")
	require.NoError(t, err)

	// amount - tax - shipping + coupon
	assert.Equal(t, "437.50", view.ItemsSubtotal)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := service.NewOrderService(commerce.NewMockClient())

	_, err := svc.GetOrder(context.Background(), testSession, "INV-9999")
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

func TestRequestReturn_OnlyDeliveredOrders(t *testing.T) {
	client := commerce.NewMockClient()
	client.Orders = []domain.Order{
		{InvoiceNo: "INV-0001", Status: domain.OrderShipped},
		{InvoiceNo: "INV-0002", Status: domain.OrderDelivered},
	}
	svc := service.NewOrderService(client)

	err := svc.RequestReturn(context.Background(), testSession, "INV-0001", "wrong size")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	require.NoError(t, svc.RequestReturn(context.Background(), testSession, "INV-0002", "wrong size"))
	assert.Equal(t, 1, client.Calls("RequestReturn"))
}

func TestRequestReturn_ReasonRequired(t *testing.T) {
	client := commerce.NewMockClient()
	client.Orders = []domain.Order{{InvoiceNo: "INV-0002", Status: domain.OrderDelivered}}
	svc := service.NewOrderService(client)

	err := svc.RequestReturn(context.Background(), testSession, "INV-0002", "   ")
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 0, client.Calls("RequestReturn"))
}
