package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2026, 8, n, 0, 0, 0, 0, time.UTC)
}

func TestRecomputeDeliveryKPIs(t *testing.T) {
	ordered := day(1)
	estimated := day(5)
	actual := day(7)

	o := Order{OrderDate: ordered, EstimatedDeliveryDate: &estimated, ActualDeliveryDate: &actual}
	o.RecomputeDeliveryKPIs()

	require.NotNil(t, o.ShippingTime)
	require.NotNil(t, o.DeliveryDelay)
	assert.Equal(t, 6, *o.ShippingTime)
	assert.Equal(t, 2, *o.DeliveryDelay)
}

func TestRecomputeDeliveryKPIsEarlyDeliveryFloorsAtZero(t *testing.T) {
	ordered := day(1)
	estimated := day(10)
	actual := day(4)

	o := Order{OrderDate: ordered, EstimatedDeliveryDate: &estimated, ActualDeliveryDate: &actual}
	o.RecomputeDeliveryKPIs()

	require.NotNil(t, o.DeliveryDelay)
	assert.Equal(t, 0, *o.DeliveryDelay)
	assert.Equal(t, 3, *o.ShippingTime)
}

func TestRecomputeDeliveryKPIsStaysNilWithoutDates(t *testing.T) {
	o := Order{OrderDate: day(1)}
	o.RecomputeDeliveryKPIs()
	assert.Nil(t, o.ShippingTime)
	assert.Nil(t, o.DeliveryDelay)

	actual := day(3)
	o.ActualDeliveryDate = &actual
	o.RecomputeDeliveryKPIs()
	require.NotNil(t, o.ShippingTime)
	assert.Nil(t, o.DeliveryDelay)
}

func TestBelowReorder(t *testing.T) {
	p := Product{StockQuantity: 5, ReorderLevel: 5}
	assert.False(t, p.BelowReorder())

	p.StockQuantity = 4
	assert.True(t, p.BelowReorder())
}
