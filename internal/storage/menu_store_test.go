package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/comandahq/comanda/internal/menu"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestMenuStoreMissingFileYieldsEmptyCatalog(t *testing.T) {
	store := NewMenuStore(filepath.Join(t.TempDir(), "menu_data.txt"), testLogger())

	items, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMenuStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu_data.txt")
	store := NewMenuStore(path, testLogger())
	ctx := context.Background()

	items := []menu.Item{
		{Name: "Margherita", Category: "Pizza", UnitPrice: decimal.RequireFromString("12.50"), TimesOrdered: 7},
		{Name: "Cola", Category: "Drinks", UnitPrice: decimal.RequireFromString("3"), TimesOrdered: 0},
	}
	require.NoError(t, store.Save(ctx, items))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "Margherita", loaded[0].Name)
	assert.Equal(t, "Pizza", loaded[0].Category)
	assert.True(t, loaded[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 7, loaded[0].TimesOrdered)
	assert.Equal(t, 0, loaded[1].TimesOrdered)
}

func TestMenuStoreReadsLegacyThreeFieldRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu_data.txt")
	content := "Pasta|Mains|12.5\nBad|Record\nSoup|Starters|oops\nCola|Drinks|3|9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := NewMenuStore(path, testLogger())
	items, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "malformed records are skipped")

	assert.Equal(t, "Pasta", items[0].Name)
	assert.Equal(t, 0, items[0].TimesOrdered, "missing counter reads as zero")
	assert.Equal(t, 9, items[1].TimesOrdered)
}

func TestMenuStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu_data.txt")
	store := NewMenuStore(path, testLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []menu.Item{
		{Name: "Pasta", Category: "Mains", UnitPrice: decimal.NewFromInt(12)},
		{Name: "Cola", Category: "Drinks", UnitPrice: decimal.NewFromInt(3)},
	}))
	require.NoError(t, store.Save(ctx, []menu.Item{
		{Name: "Soup", Category: "Starters", UnitPrice: decimal.NewFromInt(5)},
	}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1, "save replaces the previous snapshot")
	assert.Equal(t, "Soup", loaded[0].Name)
}
