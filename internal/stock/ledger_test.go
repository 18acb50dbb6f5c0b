package stock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplypulse/backend/internal/domain"
	"github.com/supplypulse/backend/internal/notify"
	"github.com/supplypulse/backend/internal/repository/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(ctx context.Context, eventType, recipientID string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == eventType {
			c++
		}
	}
	return c
}

func seedLedger(t *testing.T, qty, reorder int) (*Ledger, *memory.Store, *recordingNotifier) {
	t.Helper()
	store := memory.New()
	store.SeedProduct(domain.Product{
		ID:            "p1",
		SKU:           "SKU-1",
		Name:          "Widget",
		SupplierID:    "s1",
		StockQuantity: qty,
		ReorderLevel:  reorder,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	})
	notifier := &recordingNotifier{}
	return NewLedger(store.Products(), notifier), store, notifier
}

func TestApplyDeltaArithmetic(t *testing.T) {
	ledger, _, _ := seedLedger(t, 10, 2)
	ctx := context.Background()

	p, err := ledger.ApplyDelta(ctx, "p1", -3)
	require.NoError(t, err)
	assert.Equal(t, 7, p.StockQuantity)

	p, err = ledger.ApplyDelta(ctx, "p1", 5)
	require.NoError(t, err)
	assert.Equal(t, 12, p.StockQuantity)
}

func TestApplyDeltaNeverGoesNegative(t *testing.T) {
	ledger, store, _ := seedLedger(t, 4, 2)
	ctx := context.Background()

	_, err := ledger.ApplyDelta(ctx, "p1", -5)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Available)

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.StockQuantity)
}

func TestApplyDeltaUnknownProduct(t *testing.T) {
	ledger, _, _ := seedLedger(t, 4, 2)

	_, err := ledger.ApplyDelta(context.Background(), "ghost", -1)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestBelowReorderSignalIsAdvisory(t *testing.T) {
	ledger, _, notifier := seedLedger(t, 10, 5)
	ctx := context.Background()

	// Crossing the threshold succeeds and emits a signal.
	p, err := ledger.ApplyDelta(ctx, "p1", -7)
	require.NoError(t, err)
	assert.Equal(t, 3, p.StockQuantity)
	assert.Equal(t, 1, notifier.count(notify.EventStockBelowReorder))

	// Staying above it stays quiet.
	_, err = ledger.ApplyDelta(ctx, "p1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count(notify.EventStockBelowReorder))
}
