package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplypulse/backend/internal/domain"
)

func TestOrdersCSV(t *testing.T) {
	supplierID := "s1"
	estimated := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	actual := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)

	full := domain.Order{
		ID:         "o1",
		ClientID:   "c1",
		SupplierID: &supplierID,
		Status:     domain.StatusDelivered,
		OrderDate:  time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		Items: []domain.OrderItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: 50, TotalPrice: 100},
			{ProductID: "p2", Quantity: 3, UnitPrice: 10, TotalPrice: 30},
		},
		TotalOrderValue: 130,
		PaymentStatus:   "paid",
		Region:          "north",
		TrackingNumber:  "TRK-1",
	}
	full.EstimatedDeliveryDate = &estimated
	full.ActualDeliveryDate = &actual

	sparse := domain.Order{
		ID:        "o2",
		ClientID:  "c2",
		Status:    domain.StatusCreated,
		OrderDate: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	}

	orders := []domain.Order{full, sparse}

	data, err := OrdersCSV(orders)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, orderHeader, records[0])

	assert.Equal(t, []string{
		"o1", "c1", "s1", "delivered", "2026-08-01T09:30:00Z",
		"2026-08-05", "2026-08-07", "5", "130.00", "paid", "north", "TRK-1",
	}, records[1])

	// Optional fields render empty, never panic.
	assert.Equal(t, "o2", records[2][0])
	assert.Equal(t, "", records[2][2])
	assert.Equal(t, "", records[2][5])
	assert.Equal(t, "0", records[2][7])
	assert.Equal(t, "0.00", records[2][8])
}

func TestOrdersCSVEmptyList(t *testing.T) {
	data, err := OrdersCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, orderHeader, records[0])
}
