package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/comandahq/comanda/pkg/errors"
)

type fakeStore struct {
	items  []Item
	saveFn func(ctx context.Context, items []Item) error
	saved  [][]Item
}

func (f *fakeStore) Load(ctx context.Context) ([]Item, error) {
	return f.items, nil
}

func (f *fakeStore) Save(ctx context.Context, items []Item) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, items)
	}
	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	f.saved = append(f.saved, snapshot)
	return nil
}

func newTestService(t *testing.T, store *fakeStore) Service {
	t.Helper()
	svc, err := NewService(context.Background(), store, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestAddItemPersistsAndReturnsItem(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store)

	item, err := svc.AddItem(context.Background(), AddItemInput{
		Name:     "Margherita",
		Category: "Pizza",
		Price:    decimal.RequireFromString("12.50"),
	})
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if item.Name != "Margherita" || item.Category != "Pizza" {
		t.Fatalf("unexpected item %+v", item)
	}
	if svc.Len() != 1 {
		t.Fatalf("expected one item, got %d", svc.Len())
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(store.saved))
	}
}

func TestAddItemValidation(t *testing.T) {
	svc := newTestService(t, &fakeStore{})

	tests := []struct {
		name  string
		input AddItemInput
	}{
		{name: "missing name", input: AddItemInput{Category: "Pizza", Price: decimal.NewFromInt(5)}},
		{name: "missing category", input: AddItemInput{Name: "Cola", Price: decimal.NewFromInt(5)}},
		{name: "negative price", input: AddItemInput{Name: "Cola", Category: "Drinks", Price: decimal.NewFromInt(-1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if svc.Len() != 0 {
		t.Fatalf("rejected input must not mutate the catalog")
	}
}

func TestRemoveItemBounds(t *testing.T) {
	store := &fakeStore{items: []Item{
		{Name: "Pasta", Category: "Mains", UnitPrice: decimal.NewFromInt(12)},
	}}
	svc := newTestService(t, store)

	if err := svc.RemoveItem(context.Background(), 3); pkgerrors.As(err) == nil {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if err := svc.RemoveItem(context.Background(), 0); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	if svc.Len() != 0 {
		t.Fatalf("expected empty catalog")
	}
}

func TestSearchMatchesNameAndCategoryCaseInsensitive(t *testing.T) {
	store := &fakeStore{items: []Item{
		{Name: "Margherita", Category: "Pizza", UnitPrice: decimal.NewFromInt(12)},
		{Name: "Tiramisu", Category: "Dessert", UnitPrice: decimal.NewFromInt(6)},
		{Name: "Pepperoni", Category: "Pizza", UnitPrice: decimal.NewFromInt(14)},
	}}
	svc := newTestService(t, store)

	if got := svc.Search("PIZZA"); len(got) != 2 {
		t.Fatalf("expected 2 pizza matches, got %d", len(got))
	}
	if got := svc.Search("tira"); len(got) != 1 || got[0].Name != "Tiramisu" {
		t.Fatalf("expected Tiramisu, got %+v", got)
	}
	if got := svc.Search(""); got != nil {
		t.Fatalf("blank query matches nothing")
	}
}

func TestRecordOrderedIncrementsPopularity(t *testing.T) {
	store := &fakeStore{items: []Item{
		{Name: "Pasta", Category: "Mains", UnitPrice: decimal.NewFromInt(12), TimesOrdered: 3},
	}}
	svc := newTestService(t, store)

	if err := svc.RecordOrdered(context.Background(), 0, 2); err != nil {
		t.Fatalf("RecordOrdered error: %v", err)
	}
	item, ok := svc.ItemAt(0)
	if !ok || item.TimesOrdered != 5 {
		t.Fatalf("expected counter 5, got %+v", item)
	}
	if err := svc.RecordOrdered(context.Background(), 0, 0); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for zero quantity")
	}
}

func TestPersistFailureIsWarningButStateStands(t *testing.T) {
	store := &fakeStore{saveFn: func(ctx context.Context, items []Item) error {
		return errors.New("disk full")
	}}
	svc := newTestService(t, store)

	_, err := svc.AddItem(context.Background(), AddItemInput{
		Name: "Cola", Category: "Drinks", Price: decimal.NewFromInt(3),
	})
	if !pkgerrors.IsWarning(err) {
		t.Fatalf("expected persistence warning, got %v", err)
	}
	if svc.Len() != 1 {
		t.Fatalf("in-memory catalog must keep the item after a failed save")
	}
}
