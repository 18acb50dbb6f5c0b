package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/supplypulse/backend/internal/domain"
)

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *snapshotRepository {
	return &snapshotRepository{db: db}
}

// snapshotRow flattens a snapshot for storage. The metric sub-records live in
// jsonb columns; the key and the additive totals are relational so range
// queries stay cheap.
type snapshotRow struct {
	ID            string    `db:"id"`
	Period        string    `db:"period"`
	PeriodStart   time.Time `db:"period_start"`
	TotalOrders   int       `db:"total_orders"`
	TotalRevenue  float64   `db:"total_revenue"`
	SupplierCount int       `db:"supplier_count"`
	Delivery      []byte    `db:"delivery"`
	Suppliers     []byte    `db:"suppliers"`
	Products      []byte    `db:"products"`
	Regions       []byte    `db:"regions"`
	Forecasts     []byte    `db:"forecasts"`
	KPIs          []byte    `db:"kpis"`
	GeneratedAt   time.Time `db:"generated_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func marshalSnapshot(s *domain.Snapshot) (*snapshotRow, error) {
	row := &snapshotRow{
		ID:            s.ID,
		Period:        string(s.Period),
		PeriodStart:   s.Date,
		TotalOrders:   s.TotalOrders,
		TotalRevenue:  s.TotalRevenue,
		SupplierCount: s.SupplierCount,
		GeneratedAt:   s.GeneratedAt,
	}

	for _, part := range []struct {
		dst *[]byte
		src interface{}
	}{
		{&row.Delivery, s.Delivery},
		{&row.Suppliers, s.Suppliers},
		{&row.Products, s.Products},
		{&row.Regions, s.Regions},
		{&row.Forecasts, s.Forecasts},
		{&row.KPIs, s.KPIs},
	} {
		data, err := json.Marshal(part.src)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot section: %w", err)
		}
		*part.dst = data
	}

	return row, nil
}

func unmarshalSnapshot(row *snapshotRow) (*domain.Snapshot, error) {
	s := &domain.Snapshot{
		ID:            row.ID,
		Period:        domain.Period(row.Period),
		Date:          row.PeriodStart,
		TotalOrders:   row.TotalOrders,
		TotalRevenue:  row.TotalRevenue,
		SupplierCount: row.SupplierCount,
		GeneratedAt:   row.GeneratedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	for _, part := range []struct {
		src []byte
		dst interface{}
	}{
		{row.Delivery, &s.Delivery},
		{row.Suppliers, &s.Suppliers},
		{row.Products, &s.Products},
		{row.Regions, &s.Regions},
		{row.Forecasts, &s.Forecasts},
		{row.KPIs, &s.KPIs},
	} {
		if len(part.src) == 0 {
			continue
		}
		if err := json.Unmarshal(part.src, part.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot section: %w", err)
		}
	}

	return s, nil
}

// Upsert writes a snapshot keyed by (period, period_start). Regenerating the
// same window replaces the metric fields in place and never duplicates the
// key; the stored id is read back so the caller always sees the row's
// persistent identity.
func (r *snapshotRepository) Upsert(ctx context.Context, snapshot *domain.Snapshot) error {
	row, err := marshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analytics_snapshots (
			id, period, period_start, total_orders, total_revenue, supplier_count,
			delivery, suppliers, products, regions, forecasts, kpis,
			generated_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (period, period_start)
		DO UPDATE SET
			total_orders = EXCLUDED.total_orders,
			total_revenue = EXCLUDED.total_revenue,
			supplier_count = EXCLUDED.supplier_count,
			delivery = EXCLUDED.delivery,
			suppliers = EXCLUDED.suppliers,
			products = EXCLUDED.products,
			regions = EXCLUDED.regions,
			forecasts = EXCLUDED.forecasts,
			kpis = EXCLUDED.kpis,
			updated_at = NOW()
		RETURNING id
	`

	err = r.db.QueryRowxContext(ctx, query,
		row.ID, row.Period, row.PeriodStart, row.TotalOrders, row.TotalRevenue,
		row.SupplierCount, row.Delivery, row.Suppliers, row.Products, row.Regions,
		row.Forecasts, row.KPIs, row.GeneratedAt,
	).Scan(&snapshot.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

const snapshotColumns = `
	id, period, period_start, total_orders, total_revenue, supplier_count,
	delivery, suppliers, products, regions, forecasts, kpis, generated_at, updated_at
`

func (r *snapshotRepository) Get(ctx context.Context, period domain.Period, date time.Time) (*domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM analytics_snapshots
		WHERE period = $1 AND period_start = $2`

	var row snapshotRow
	if err := r.db.GetContext(ctx, &row, query, string(period), date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "snapshot", ID: fmt.Sprintf("%s/%s", period, date.Format("2006-01-02"))}
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return unmarshalSnapshot(&row)
}

func (r *snapshotRepository) ListRange(ctx context.Context, period domain.Period, start, end time.Time) ([]domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM analytics_snapshots
		WHERE period = $1 AND period_start >= $2 AND period_start < $3
		ORDER BY period_start ASC`

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, string(period), start, end); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return unmarshalRows(rows)
}

func (r *snapshotRepository) Latest(ctx context.Context, period domain.Period, limit int) ([]domain.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `SELECT ` + snapshotColumns + ` FROM analytics_snapshots
		WHERE period = $1
		ORDER BY period_start DESC
		LIMIT $2`

	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, query, string(period), limit); err != nil {
		return nil, fmt.Errorf("failed to list latest snapshots: %w", err)
	}

	return unmarshalRows(rows)
}

func unmarshalRows(rows []snapshotRow) ([]domain.Snapshot, error) {
	snapshots := make([]domain.Snapshot, 0, len(rows))
	for i := range rows {
		s, err := unmarshalSnapshot(&rows[i])
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}

	return snapshots, nil
}
