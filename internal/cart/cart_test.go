package cart

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swiftcart/internal/catalog"
	"github.com/example/swiftcart/internal/storage"
)

func product(id int, title, price string) catalog.Product {
	return catalog.Product{ID: id, Title: title, Price: decimal.RequireFromString(price)}
}

// memoryStore keeps snapshots in memory and counts writes.
type memoryStore struct {
	records []storage.CartRecord
	saves   int
}

func (m *memoryStore) Save(records []storage.CartRecord) error {
	m.records = records
	m.saves++
	return nil
}

func (m *memoryStore) Load() ([]storage.CartRecord, error) {
	return m.records, nil
}

func TestAddTwiceAggregatesSingleLine(t *testing.T) {
	c := New(&memoryStore{}, nil)
	p := product(1, "Backpack", "109.95")

	first := c.Add(p)
	second := c.Add(p)

	assert.Equal(t, "Backpack added to cart", first.Message)
	assert.Equal(t, "Added another Backpack to cart", second.Message)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, c.ItemCount())
}

func TestItemCountSumsQuantities(t *testing.T) {
	c := New(&memoryStore{}, nil)
	a := product(1, "Backpack", "109.95")
	b := product(2, "T-Shirt", "22.30")

	c.Add(a)
	c.Add(a)
	c.Add(b)
	c.Add(a)

	assert.Equal(t, 4, c.ItemCount())
	assert.Len(t, c.Items(), 2)
}

func TestInsertionOrderSurvivesQuantityChange(t *testing.T) {
	c := New(&memoryStore{}, nil)
	c.Add(product(1, "Backpack", "109.95"))
	c.Add(product(2, "T-Shirt", "22.30"))
	c.Add(product(3, "Bracelet", "695"))

	c.SetQuantity(1, 9)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].Product.ID, items[1].Product.ID, items[2].Product.ID})
	assert.Equal(t, 9, items[0].Quantity)
}

func TestSetQuantityZeroAndNegativeBehaveLikeRemove(t *testing.T) {
	for _, qty := range []int{0, -1} {
		c := New(&memoryStore{}, nil)
		c.Add(product(1, "Backpack", "109.95"))

		outcome := c.SetQuantity(1, qty)

		assert.True(t, outcome.Changed)
		assert.Equal(t, "Backpack removed from cart", outcome.Message)
		assert.True(t, c.Empty())
	}
}

func TestSetQuantityUnknownIDIsSilent(t *testing.T) {
	store := &memoryStore{}
	c := New(store, nil)
	c.Add(product(1, "Backpack", "109.95"))
	savesBefore := store.saves

	outcome := c.SetQuantity(42, 3)

	assert.False(t, outcome.Changed)
	assert.Empty(t, outcome.Message)
	assert.Equal(t, savesBefore, store.saves)
}

func TestRemoveAbsentIsSilent(t *testing.T) {
	c := New(&memoryStore{}, nil)
	outcome := c.Remove(42)
	assert.False(t, outcome.Changed)
	assert.Empty(t, outcome.Message)
}

func TestTotal(t *testing.T) {
	c := New(&memoryStore{}, nil)
	a := product(1, "A", "10.00")
	b := product(2, "B", "5.50")

	c.Add(a)
	c.Add(a)
	c.Add(b)

	assert.True(t, c.Total().Equal(decimal.RequireFromString("25.50")),
		"total = %s", c.Total())
}

func TestClearIsIdempotent(t *testing.T) {
	c := New(&memoryStore{}, nil)
	c.Add(product(1, "Backpack", "109.95"))

	first := c.Clear()
	second := c.Clear()

	assert.Equal(t, "Cart cleared", first.Message)
	assert.Equal(t, "Cart cleared", second.Message)
	assert.True(t, c.Empty())
}

func TestEveryMutationPersists(t *testing.T) {
	store := &memoryStore{}
	c := New(store, nil)
	p := product(1, "Backpack", "109.95")

	c.Add(p)
	c.SetQuantity(1, 4)
	c.Remove(1)
	c.Clear()

	assert.Equal(t, 4, store.saves)
	assert.Empty(t, store.records)
}

func TestPersistRestoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	store := storage.NewCartStore(path)

	c := New(store, nil)
	c.Add(product(1, "Backpack", "109.95"))
	c.Add(product(2, "T-Shirt", "22.30"))
	c.Add(product(1, "Backpack", "109.95"))

	restored := New(storage.NewCartStore(path), nil)
	restored.Load()

	want := c.Items()
	got := restored.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Product.ID, got[i].Product.ID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
	}
	assert.True(t, restored.Total().Equal(c.Total()))
}

type failingStore struct{}

func (failingStore) Save([]storage.CartRecord) error { return assert.AnError }
func (failingStore) Load() ([]storage.CartRecord, error) {
	return nil, &storage.DecodeError{Path: "cart.json", Err: assert.AnError}
}

type recordingLogger struct {
	warnings int
}

func (l *recordingLogger) Warn(string, ...any) { l.warnings++ }

func TestCorruptSnapshotDegradesToEmptyCart(t *testing.T) {
	log := &recordingLogger{}
	c := New(failingStore{}, log)

	c.Load()

	assert.True(t, c.Empty())
	assert.Equal(t, 1, log.warnings)
}

func TestRestoreDropsInvalidRecords(t *testing.T) {
	store := &memoryStore{records: []storage.CartRecord{
		{Product: catalog.Product{ID: 1, Title: "Backpack"}, Quantity: 2},
		{Product: catalog.Product{ID: 2, Title: "Ghost"}, Quantity: 0},
		{Quantity: 3},
	}}
	c := New(store, nil)

	c.Load()

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Product.ID)
}

func TestReadSnapshotLeavesCartUntouched(t *testing.T) {
	store := &memoryStore{records: []storage.CartRecord{
		{Product: product(1, "Backpack", "109.95"), Quantity: 2},
	}}
	c := New(store, nil)

	// The read half runs off the main loop; only Restore may install it.
	items := c.ReadSnapshot()
	require.Len(t, items, 1)
	assert.True(t, c.Empty())
	assert.Equal(t, 0, store.saves)

	c.Restore(items)
	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, 0, store.saves, "restoring a stored snapshot must not re-persist it")
}
