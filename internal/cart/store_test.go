package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mu      sync.Mutex
	calls   map[string]int
	fetchFn func(ctx context.Context) (*Snapshot, error)
	addFn   func(ctx context.Context, productID string, quantity int) (*Snapshot, error)
	updFn   func(ctx context.Context, productID string, quantity int) (*Snapshot, error)
	remFn   func(ctx context.Context, productID string) (*Snapshot, error)
	clearFn func(ctx context.Context) (*Snapshot, error)
}

func newMockGateway() *mockGateway {
	return &mockGateway{calls: make(map[string]int)}
}

func (m *mockGateway) count(op string) {
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func (m *mockGateway) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockGateway) FetchCart(ctx context.Context) (*Snapshot, error) {
	m.count("fetch")
	return m.fetchFn(ctx)
}

func (m *mockGateway) AddItem(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
	m.count("add")
	return m.addFn(ctx, productID, quantity)
}

func (m *mockGateway) UpdateItemQuantity(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
	m.count("update")
	return m.updFn(ctx, productID, quantity)
}

func (m *mockGateway) RemoveItem(ctx context.Context, productID string) (*Snapshot, error) {
	m.count("remove")
	return m.remFn(ctx, productID)
}

func (m *mockGateway) ClearCart(ctx context.Context) (*Snapshot, error) {
	m.count("clear")
	return m.clearFn(ctx)
}

var _ Gateway = (*mockGateway)(nil)

func snapshotWith(items ...Item) *Snapshot {
	snap := &Snapshot{Items: items, Shipping: DefaultShippingQuote}
	totals := ComputeTotals(items, snap.Shipping)
	snap.Subtotal = totals.Subtotal
	snap.Total = totals.Total
	return snap
}

func TestStoreQuantityFloor(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(ctx context.Context, s *Store) Result
		op       string
	}{
		{
			name: "add zero",
			mutate: func(ctx context.Context, s *Store) Result {
				return s.Add(ctx, "wax-001", 0)
			},
			op: "add",
		},
		{
			name: "add negative",
			mutate: func(ctx context.Context, s *Store) Result {
				return s.Add(ctx, "wax-001", -2)
			},
			op: "add",
		},
		{
			name: "update to zero",
			mutate: func(ctx context.Context, s *Store) Result {
				return s.UpdateQuantity(ctx, "wax-001", 0)
			},
			op: "update",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newMockGateway()
			s := NewStore(gw)
			res := tt.mutate(context.Background(), s)
			assert.False(t, res.OK)
			assert.Equal(t, "quantity must be at least 1", res.Message)
			// Rejected before hitting the network.
			assert.Zero(t, gw.callCount(tt.op))
		})
	}
}

func TestStoreAddMergesDuplicates(t *testing.T) {
	gw := newMockGateway()
	qtyOnServer := 0
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		qtyOnServer += quantity
		return snapshotWith(Item{ProductID: productID, Name: "Wax print", UnitPrice: 20000, Quantity: qtyOnServer}), nil
	}
	s := NewStore(gw)
	ctx := context.Background()

	require.True(t, s.Add(ctx, "wax-001", 1).OK)
	require.True(t, s.Add(ctx, "wax-001", 1).OK)

	// One line, incremented quantity, never a second row.
	assert.Equal(t, 1, s.Len())
	item, ok := s.Get("wax-001")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func TestStoreWorkedExample(t *testing.T) {
	gw := newMockGateway()
	line := Item{ProductID: "7", Name: "Bogolan", UnitPrice: 20000, Quantity: 1}
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		return snapshotWith(line), nil
	}
	gw.updFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		line.Quantity = quantity
		return snapshotWith(line), nil
	}
	s := NewStore(gw)
	ctx := context.Background()

	require.True(t, s.Add(ctx, "7", 1).OK)
	totals := s.Totals(s.ShippingQuote())
	assert.Equal(t, Amount(20000), totals.Subtotal)
	assert.Equal(t, Amount(5000), totals.Shipping)
	assert.Equal(t, Amount(25000), totals.Total)

	require.True(t, s.UpdateQuantity(ctx, "7", 3).OK)
	totals = s.Totals(s.ShippingQuote())
	assert.Equal(t, Amount(60000), totals.Subtotal)
	assert.Equal(t, Amount(65000), totals.Total)
}

func TestStoreLastWriteWins(t *testing.T) {
	gw := newMockGateway()
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	gw.updFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		if quantity == 5 {
			close(firstEntered)
			<-releaseFirst
		}
		return snapshotWith(Item{ProductID: productID, UnitPrice: 1000, Quantity: quantity}), nil
	}
	s := NewStore(gw)
	s.Replace(snapshotWith(Item{ProductID: "7", UnitPrice: 1000, Quantity: 1}))
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.UpdateQuantity(ctx, "7", 5)
	}()
	<-firstEntered

	// Second request issued after the first; its response lands first.
	require.True(t, s.UpdateQuantity(ctx, "7", 2).OK)
	item, ok := s.Get("7")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	// The stale response for the first request must be discarded.
	close(releaseFirst)
	wg.Wait()
	item, ok = s.Get("7")
	require.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	gw := newMockGateway()
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		return snapshotWith(Item{ProductID: productID, UnitPrice: 4500, Quantity: quantity}), nil
	}
	s := NewStore(gw)
	ctx := context.Background()
	require.True(t, s.Add(ctx, "shea-002", 2).OK)

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "business rejection carries server message",
			err:     &RejectedError{Message: "not enough stock for Shea butter"},
			message: "not enough stock for Shea butter",
		},
		{
			name:    "transport failure maps to generic message",
			err:     errors.New("connection refused"),
			message: "something went wrong, please try again",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw.updFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
				return nil, tt.err
			}
			res := s.UpdateQuantity(ctx, "shea-002", 5)
			assert.False(t, res.OK)
			assert.Equal(t, tt.message, res.Message)

			item, ok := s.Get("shea-002")
			require.True(t, ok)
			assert.Equal(t, 2, item.Quantity)
			assert.False(t, s.Loading())
		})
	}
}

func TestStoreClear(t *testing.T) {
	gw := newMockGateway()
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		return snapshotWith(Item{ProductID: productID, UnitPrice: 12500, Quantity: quantity}), nil
	}
	gw.clearFn = func(ctx context.Context) (*Snapshot, error) {
		return &Snapshot{}, nil
	}
	s := NewStore(gw)
	ctx := context.Background()
	require.True(t, s.Add(ctx, "basket-003", 1).OK)
	require.Equal(t, 1, s.Len())

	require.True(t, s.Clear(ctx).OK)
	assert.Zero(t, s.Len())
	assert.Equal(t, Totals{}, s.Totals(0))
}

func TestStoreRefresh(t *testing.T) {
	gw := newMockGateway()
	gw.fetchFn = func(ctx context.Context) (*Snapshot, error) {
		return snapshotWith(
			Item{ProductID: "wax-001", UnitPrice: 20000, Quantity: 2},
			Item{ProductID: "shea-002", UnitPrice: 4500, Quantity: 1},
		), nil
	}
	s := NewStore(gw)
	require.True(t, s.Refresh(context.Background()).OK)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, Amount(44500), s.Totals(0).Total)
}

func TestStoreLoadingDuringInflight(t *testing.T) {
	gw := newMockGateway()
	entered := make(chan struct{})
	release := make(chan struct{})
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		close(entered)
		<-release
		return snapshotWith(Item{ProductID: productID, UnitPrice: 1000, Quantity: quantity}), nil
	}
	s := NewStore(gw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Add(context.Background(), "wax-001", 1)
	}()
	<-entered
	assert.True(t, s.Loading())
	close(release)
	wg.Wait()
	assert.False(t, s.Loading())
}

func TestStoreShippingQuote(t *testing.T) {
	gw := newMockGateway()
	s := NewStore(gw)

	// Fallback before any server snapshot carried a quote.
	assert.Equal(t, DefaultShippingQuote, s.ShippingQuote())

	s.Replace(&Snapshot{
		Items:    []Item{{ProductID: "7", UnitPrice: 1000, Quantity: 1}},
		Shipping: 7500,
	})
	assert.Equal(t, Amount(7500), s.ShippingQuote())

	// A pickup snapshot with zero shipping keeps the last delivery quote.
	s.Replace(&Snapshot{Items: []Item{{ProductID: "7", UnitPrice: 1000, Quantity: 1}}})
	assert.Equal(t, Amount(7500), s.ShippingQuote())
}

func TestStoreSubscribe(t *testing.T) {
	gw := newMockGateway()
	gw.addFn = func(ctx context.Context, productID string, quantity int) (*Snapshot, error) {
		return snapshotWith(Item{ProductID: productID, UnitPrice: 1000, Quantity: quantity}), nil
	}
	s := NewStore(gw)
	ctx := context.Background()

	var mu sync.Mutex
	notified := 0
	cancel := s.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	require.True(t, s.Add(ctx, "a", 1).OK)
	require.True(t, s.Add(ctx, "b", 1).OK)
	mu.Lock()
	assert.Equal(t, 2, notified)
	mu.Unlock()

	cancel()
	require.True(t, s.Add(ctx, "c", 1).OK)
	mu.Lock()
	assert.Equal(t, 2, notified)
	mu.Unlock()
}
