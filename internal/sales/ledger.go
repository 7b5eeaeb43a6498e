package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/comandahq/comanda/pkg/enums"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/comandahq/comanda/pkg/errors"
)

// ItemSnapshot is the catalog data captured onto an order line at order time.
type ItemSnapshot struct {
	Name      string
	Category  string
	UnitPrice decimal.Decimal
}

// Catalog is the menu surface the ledger needs: positional lookup and the
// popularity counter hook.
type Catalog interface {
	Snapshot(index int) (ItemSnapshot, bool)
	RecordOrdered(ctx context.Context, index, qty int) error
}

// Store persists the complete order history as a whole. A missing backing
// file yields an empty history, not an error.
type Store interface {
	Load(ctx context.Context) ([]Order, error)
	Save(ctx context.Context, orders []Order) error
}

// Ledger owns every order ever created plus the single order currently open
// for mutation. All mutation goes through its operations.
//
// Operations that change state persist before returning. When only the write
// fails they return a PERSISTENCE_WARNING error: the in-memory change stands
// and the caller should surface the lost durability, not roll back.
type Ledger interface {
	NewOrder(ctx context.Context) (int, error)
	AddLine(ctx context.Context, itemIndex, quantity int) error
	RemoveLine(ctx context.Context, lineIndex int) error
	ApplyDiscount(ctx context.Context, lineIndex int, percent float64) error
	Pay(ctx context.Context) (decimal.Decimal, error)
	CancelCurrent(ctx context.Context) error
	Current() (Order, bool)
	AllOrders() []Order
	UnpaidOrders() []Order
}

type ledger struct {
	orders  []*Order
	current *Order
	nextID  int
	catalog Catalog
	store   Store
	log     *logger.Logger
	now     func() time.Time
}

// NewLedger loads the order history, re-seeds the ID allocator past the
// highest loaded ID, and adopts the most recently persisted order as current
// when it is still active, so an interrupted session can be resumed.
func NewLedger(ctx context.Context, store Store, catalog Catalog, log *logger.Logger) (Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("sales store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sales: %w", err)
	}

	l := &ledger{
		nextID:  1,
		catalog: catalog,
		store:   store,
		log:     log,
		now:     time.Now,
	}
	for i := range loaded {
		order := loaded[i]
		l.orders = append(l.orders, &order)
		if order.ID >= l.nextID {
			l.nextID = order.ID + 1
		}
	}
	if n := len(l.orders); n > 0 {
		if last := l.orders[n-1]; last.Status == enums.OrderStatusActive {
			l.current = last
			log.Info(log.WithOrderID(ctx, last.ID), "resuming unpaid order from previous session")
		}
	}
	return l, nil
}

func (l *ledger) NewOrder(ctx context.Context) (int, error) {
	if l.current != nil {
		return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "finish or pay the current order first").
			WithDetails(map[string]int{"current_order_id": l.current.ID})
	}

	order := &Order{
		ID:        l.nextID,
		Status:    enums.OrderStatusActive,
		CreatedAt: l.now(),
	}
	l.nextID++
	l.orders = append(l.orders, order)
	l.current = order

	l.log.Info(l.log.WithOrderID(ctx, order.ID), "order started")
	return order.ID, l.persist(ctx)
}

func (l *ledger) AddLine(ctx context.Context, itemIndex, quantity int) error {
	if err := l.requireMutableCurrent(); err != nil {
		return err
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]int{"quantity": quantity})
	}
	snapshot, ok := l.catalog.Snapshot(itemIndex)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found").
			WithDetails(map[string]int{"index": itemIndex})
	}

	l.current.Lines = append(l.current.Lines, OrderLine{
		Name:      snapshot.Name,
		Category:  snapshot.Category,
		UnitPrice: snapshot.UnitPrice,
		Quantity:  quantity,
	})

	// A popularity-counter save failure must not hide a sales save failure,
	// so both warnings travel back together.
	warn := l.catalog.RecordOrdered(ctx, itemIndex, quantity)
	if warn != nil && !pkgerrors.IsWarning(warn) {
		return warn
	}
	return multierr.Append(warn, l.persist(ctx))
}

func (l *ledger) RemoveLine(ctx context.Context, lineIndex int) error {
	if err := l.requireMutableCurrent(); err != nil {
		return err
	}
	if lineIndex < 0 || lineIndex >= len(l.current.Lines) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found").
			WithDetails(map[string]int{"index": lineIndex})
	}
	l.current.Lines = append(l.current.Lines[:lineIndex], l.current.Lines[lineIndex+1:]...)
	return l.persist(ctx)
}

// ApplyDiscount sets the line's discount percentage. An out-of-range percent
// is silently ineffective: the line keeps its previous value and the call
// still succeeds, matching the field-level rejection rule.
func (l *ledger) ApplyDiscount(ctx context.Context, lineIndex int, percent float64) error {
	if err := l.requireMutableCurrent(); err != nil {
		return err
	}
	if lineIndex < 0 || lineIndex >= len(l.current.Lines) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found").
			WithDetails(map[string]int{"index": lineIndex})
	}
	l.current.Lines[lineIndex].SetDiscount(percent)
	return l.persist(ctx)
}

func (l *ledger) Pay(ctx context.Context) (decimal.Decimal, error) {
	if l.current == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "nothing to pay")
	}
	if l.current.Status.IsTerminal() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "order already settled")
	}
	if len(l.current.Lines) == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeEmptyOrder, "order is empty, add items first")
	}

	order := l.current
	total := order.Total()
	order.markPaid(l.now())
	l.current = nil

	ctx = l.log.WithOrderID(ctx, order.ID)
	l.log.Info(l.log.WithField(ctx, "total", total.StringFixed(2)), "payment received")
	return total, l.persist(ctx)
}

// CancelCurrent voids the open order: its lines are cleared permanently and
// the order stays in the ledger as a cancelled marker. A paid order cannot
// be cancelled.
func (l *ledger) CancelCurrent(ctx context.Context) error {
	if l.current == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no active order")
	}
	if l.current.Status == enums.OrderStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "paid order cannot be cancelled")
	}

	order := l.current
	order.cancel()
	l.current = nil

	l.log.Info(l.log.WithOrderID(ctx, order.ID), "order cancelled")
	return l.persist(ctx)
}

// Current returns a snapshot of the open order, if any. Mutating the copy
// has no effect on the ledger.
func (l *ledger) Current() (Order, bool) {
	if l.current == nil {
		return Order{}, false
	}
	return l.current.clone(), true
}

// AllOrders returns snapshots of every order in creation order.
func (l *ledger) AllOrders() []Order {
	orders := make([]Order, 0, len(l.orders))
	for _, order := range l.orders {
		orders = append(orders, order.clone())
	}
	return orders
}

// UnpaidOrders returns snapshots of active orders only; cancelled orders are
// excluded.
func (l *ledger) UnpaidOrders() []Order {
	var orders []Order
	for _, order := range l.orders {
		if order.Status == enums.OrderStatusActive {
			orders = append(orders, order.clone())
		}
	}
	return orders
}

func (l *ledger) requireMutableCurrent() error {
	if l.current == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no active order, start one first")
	}
	if l.current.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already settled").
			WithDetails(map[string]string{"status": l.current.Status.String()})
	}
	return nil
}

func (l *ledger) persist(ctx context.Context) error {
	orders := make([]Order, 0, len(l.orders))
	for _, order := range l.orders {
		orders = append(orders, order.clone())
	}
	if err := l.store.Save(ctx, orders); err != nil {
		l.log.Warn(ctx, "sales store write failed")
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "save sales")
	}
	return nil
}
