package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/comandahq/comanda/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/comandahq/comanda/pkg/errors"
)

// Item is one purchasable entry in the catalog. TimesOrdered counts the
// units ever placed on an order line for this item.
type Item struct {
	Name         string
	Category     string
	UnitPrice    decimal.Decimal
	TimesOrdered int
}

// Store persists the catalog as a whole. A missing backing file yields an
// empty catalog, not an error.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// AddItemInput holds the payload to add a catalog item.
type AddItemInput struct {
	Name     string          `validate:"required"`
	Category string          `validate:"required"`
	Price    decimal.Decimal `validate:"-"`
}

// Service exposes catalog management operations.
type Service interface {
	AddItem(ctx context.Context, input AddItemInput) (Item, error)
	RemoveItem(ctx context.Context, index int) error
	ItemAt(index int) (Item, bool)
	Items() []Item
	Len() int
	Search(query string) []Item
	RecordOrdered(ctx context.Context, index, qty int) error
}

type service struct {
	items []Item
	store Store
	log   *logger.Logger
}

var validate = validator.New()

// NewService loads the catalog from its store and returns a ready service.
func NewService(ctx context.Context, store Store, log *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("menu store required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	items, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading menu: %w", err)
	}
	return &service{items: items, store: store, log: log}, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (Item, error) {
	if err := validate.Struct(input); err != nil {
		return Item{}, formatValidationErrors(err)
	}
	if input.Price.IsNegative() {
		return Item{}, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative").
			WithDetails(map[string]string{"price": input.Price.String()})
	}

	item := Item{
		Name:      strings.TrimSpace(input.Name),
		Category:  strings.TrimSpace(input.Category),
		UnitPrice: input.Price,
	}
	s.items = append(s.items, item)
	s.log.Info(s.log.WithField(ctx, "item", item.Name), "menu item added")
	return item, s.persist(ctx)
}

func (s *service) RemoveItem(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.items) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found").
			WithDetails(map[string]int{"index": index})
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.log.Info(s.log.WithField(ctx, "item", removed.Name), "menu item removed")
	return s.persist(ctx)
}

func (s *service) ItemAt(index int) (Item, bool) {
	if index < 0 || index >= len(s.items) {
		return Item{}, false
	}
	return s.items[index], true
}

// Items returns a copy of the catalog in insertion order.
func (s *service) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *service) Len() int {
	return len(s.items)
}

// Search matches the query case-insensitively against item names and
// categories.
func (s *service) Search(query string) []Item {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var matches []Item
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Name), needle) ||
			strings.Contains(strings.ToLower(item.Category), needle) {
			matches = append(matches, item)
		}
	}
	return matches
}

func (s *service) RecordOrdered(ctx context.Context, index, qty int) error {
	if index < 0 || index >= len(s.items) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found").
			WithDetails(map[string]int{"index": index})
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	s.items[index].TimesOrdered += qty
	return s.persist(ctx)
}

// persist overwrites the backing store. A write failure is a warning: the
// in-memory catalog stays authoritative until the next successful save.
func (s *service) persist(ctx context.Context) error {
	if err := s.store.Save(ctx, s.items); err != nil {
		s.log.Warn(ctx, "menu store write failed")
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save menu")
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
