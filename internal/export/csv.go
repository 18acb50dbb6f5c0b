// Package export renders order reports. Rendering is plain CSV; delivery of
// the rendered bytes (download or object storage) is the caller's concern.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/supplypulse/backend/internal/domain"
)

var orderHeader = []string{
	"order_id", "client_id", "supplier_id", "status", "order_date",
	"estimated_delivery", "actual_delivery", "items", "total_value",
	"payment_status", "region", "tracking_number",
}

// OrdersCSV renders an order list as CSV, one row per order.
func OrdersCSV(orders []domain.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(orderHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, o := range orders {
		supplierID := ""
		if o.SupplierID != nil {
			supplierID = *o.SupplierID
		}

		itemCount := 0
		for _, item := range o.Items {
			itemCount += item.Quantity
		}

		row := []string{
			o.ID,
			o.ClientID,
			supplierID,
			string(o.Status),
			o.OrderDate.Format(time.RFC3339),
			formatDate(o.EstimatedDeliveryDate),
			formatDate(o.ActualDeliveryDate),
			strconv.Itoa(itemCount),
			strconv.FormatFloat(o.TotalOrderValue, 'f', 2, 64),
			o.PaymentStatus,
			o.Region,
			o.TrackingNumber,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format("2006-01-02")
}
