package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/swiftcart/internal/catalog"
)

func sampleRecords() []CartRecord {
	return []CartRecord{
		{Product: catalog.Product{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing"}, Quantity: 2},
		{Product: catalog.Product{ID: 5, Title: "Bracelet", Price: decimal.RequireFromString("695"), Category: "jewelery"}, Quantity: 1},
	}
}

func TestCartStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "cart.json")
	store := NewCartStore(path)

	require.NoError(t, store.Save(sampleRecords()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, 1, loaded[0].Product.ID)
	assert.Equal(t, 2, loaded[0].Quantity)
	assert.True(t, loaded[0].Product.Price.Equal(decimal.RequireFromString("109.95")))
	assert.Equal(t, "Bracelet", loaded[1].Product.Title)
}

func TestCartStoreMissingFileIsEmpty(t *testing.T) {
	store := NewCartStore(filepath.Join(t.TempDir(), "missing.json"))
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCartStoreCorruptBlobReturnsDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewCartStore(path)
	_, err := store.Load()
	require.Error(t, err)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestCartStoreSaveEmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	store := NewCartStore(path)

	require.NoError(t, store.Save(nil))
	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTokenStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.token")
	store := NewTokenStore(path)

	token, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Put("abc123"))
	token, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	require.NoError(t, store.Delete())
	token, err = store.Get()
	require.NoError(t, err)
	assert.Empty(t, token)

	// deleting again must stay a no-op
	require.NoError(t, store.Delete())
}

func TestTokenStoreRejectsEmptyToken(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "session.token"))
	assert.Error(t, store.Put("   "))
}
