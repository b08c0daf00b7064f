package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return NewBuilder(BuilderConfig{
		Currency:           "inr",
		DeliveryFeeMinor:   5000,
		SuccessURLTemplate: "{origin}/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURLTemplate:  "{origin}/payment/cancelled",
		FallbackAddress:    "Address not provided",
		OrderType:          "food_kit_order",
		ShippingCountries:  []string{"IN"},
	})
}

func TestBuildRequest_MinorUnitConversion(t *testing.T) {
	b := testBuilder()

	req := b.BuildRequest([]PricedItem{
		{Name: "Hyderabadi Biryani Kit", UnitPrice: decimal.RequireFromString("850.0"), Quantity: 1},
	}, "https://mealkart.example", "12 MG Road, Bengaluru")

	require.Len(t, req.Items, 2)
	assert.Equal(t, int64(85000), req.Items[0].UnitAmountMinor)
	assert.Equal(t, 1, req.Items[0].Quantity)

	// Exactly one synthetic delivery-fee line, quantity 1.
	fee := req.Items[1]
	assert.Equal(t, "Delivery Fee", fee.Name)
	assert.Equal(t, int64(5000), fee.UnitAmountMinor)
	assert.Equal(t, 1, fee.Quantity)
}

func TestBuildRequest_EmptyItemsStillHasDeliveryFee(t *testing.T) {
	b := testBuilder()

	req := b.BuildRequest(nil, "https://mealkart.example", "")

	require.Len(t, req.Items, 1)
	assert.Equal(t, int64(5000), req.Items[0].UnitAmountMinor)
}

func TestBuildRequest_OriginInterpolation(t *testing.T) {
	b := testBuilder()

	req := b.BuildRequest(nil, "https://shop.mealkart.in", "")

	assert.Equal(t, "https://shop.mealkart.in/payment/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "https://shop.mealkart.in/payment/cancelled", req.CancelURL)
}

func TestBuildRequest_Metadata(t *testing.T) {
	b := testBuilder()

	req := b.BuildRequest(nil, "https://mealkart.example", "221B Baker Street")
	assert.Equal(t, "221B Baker Street", req.Metadata["delivery_address"])
	assert.Equal(t, "food_kit_order", req.Metadata["order_type"])

	req = b.BuildRequest(nil, "https://mealkart.example", "")
	assert.Equal(t, "Address not provided", req.Metadata["delivery_address"])
}

func TestBuildRequest_ConfigurableMinorUnitRatio(t *testing.T) {
	// A zero-decimal currency keeps amounts as-is.
	b := NewBuilder(BuilderConfig{Currency: "jpy", MinorUnitRatio: 1, DeliveryFeeMinor: 500})

	req := b.BuildRequest([]PricedItem{
		{Name: "Ramen Kit", UnitPrice: decimal.RequireFromString("1200"), Quantity: 2},
	}, "https://mealkart.example", "")

	assert.Equal(t, int64(1200), req.Items[0].UnitAmountMinor)
}

func TestBuildRequest_RoundsToNearestMinorUnit(t *testing.T) {
	b := testBuilder()

	req := b.BuildRequest([]PricedItem{
		{Name: "Spice Pack", UnitPrice: decimal.RequireFromString("10.005"), Quantity: 1},
	}, "https://mealkart.example", "")

	assert.Equal(t, int64(1001), req.Items[0].UnitAmountMinor)
}
