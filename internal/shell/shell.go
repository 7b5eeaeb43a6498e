package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/comandahq/comanda/internal/menu"
	"github.com/comandahq/comanda/internal/reports"
	"github.com/comandahq/comanda/internal/sales"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/comandahq/comanda/pkg/errors"
)

// Shell runs the interactive command loop. Every command maps 1:1 onto a
// catalog, ledger or reporting operation; 1-based indices from the operator
// are translated to 0-based before the services see them. No reported error
// stops the loop.
type Shell struct {
	in      *bufio.Scanner
	out     io.Writer
	menu    menu.Service
	ledger  sales.Ledger
	reports reports.Service
	log     *logger.Logger
}

func New(in io.Reader, out io.Writer, menuSvc menu.Service, ledger sales.Ledger, reportsSvc reports.Service, log *logger.Logger) (*Shell, error) {
	if menuSvc == nil {
		return nil, fmt.Errorf("menu service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("sales ledger required")
	}
	if reportsSvc == nil {
		return nil, fmt.Errorf("reports service required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Shell{
		in:      bufio.NewScanner(in),
		out:     out,
		menu:    menuSvc,
		ledger:  ledger,
		reports: reportsSvc,
		log:     log,
	}, nil
}

// Run blocks until the operator exits or input ends. State is saved after
// every mutation, so exiting has no side effects.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "========================================")
	fmt.Fprintln(s.out, "   Comanda — Restaurant Point of Sale")
	fmt.Fprintln(s.out, "========================================")

	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "--- Main Menu ---")
		fmt.Fprintln(s.out, " 1. Menu Management")
		fmt.Fprintln(s.out, " 2. Sales / Orders")
		fmt.Fprintln(s.out, " 3. Exit")

		choice, ok := s.readInt("Choice: ")
		if !ok {
			return nil
		}
		switch choice {
		case 1:
			if !s.menuSection(ctx) {
				return nil
			}
		case 2:
			if !s.salesSection(ctx) {
				return nil
			}
		case 3:
			fmt.Fprintln(s.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

// menuSection returns false when input ended.
func (s *Shell) menuSection(ctx context.Context) bool {
	ctx = s.log.WithCommand(ctx, "menu")
	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "--- Menu Management ---")
		fmt.Fprintln(s.out, " 1. View Menu")
		fmt.Fprintln(s.out, " 2. Add Item")
		fmt.Fprintln(s.out, " 3. Remove Item")
		fmt.Fprintln(s.out, " 4. Search")
		fmt.Fprintln(s.out, " 5. Back")

		choice, ok := s.readInt("Choice: ")
		if !ok {
			return false
		}
		switch choice {
		case 1:
			s.printMenu(s.menu.Items())
		case 2:
			if !s.addMenuItem(ctx) {
				return false
			}
		case 3:
			if !s.removeMenuItem(ctx) {
				return false
			}
		case 4:
			query, ok := s.readString("  Search for : ")
			if !ok {
				return false
			}
			matches := s.menu.Search(query)
			if len(matches) == 0 {
				fmt.Fprintln(s.out, "  No matches.")
				continue
			}
			s.printMenu(matches)
		case 5:
			return true
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) addMenuItem(ctx context.Context) bool {
	name, ok := s.readString("  Item name : ")
	if !ok {
		return false
	}
	category, ok := s.readString("  Category  : ")
	if !ok {
		return false
	}
	price, ok := s.readDecimal("  Price ($) : ")
	if !ok {
		return false
	}

	_, err := s.menu.AddItem(ctx, menu.AddItemInput{Name: name, Category: category, Price: price})
	if s.report(err) {
		return true
	}
	fmt.Fprintln(s.out, "Item added.")
	return true
}

func (s *Shell) removeMenuItem(ctx context.Context) bool {
	s.printMenu(s.menu.Items())
	if s.menu.Len() == 0 {
		return true
	}
	number, ok := s.readInt("  Remove item # : ")
	if !ok {
		return false
	}
	if s.report(s.menu.RemoveItem(ctx, number-1)) {
		return true
	}
	fmt.Fprintln(s.out, "Item removed.")
	return true
}

// salesSection returns false when input ended.
func (s *Shell) salesSection(ctx context.Context) bool {
	ctx = s.log.WithCommand(ctx, "sales")
	for {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "--- Sales / Orders ---")
		fmt.Fprintln(s.out, " 1. New Order")
		fmt.Fprintln(s.out, " 2. Add Item to Order")
		fmt.Fprintln(s.out, " 3. Remove Item from Order")
		fmt.Fprintln(s.out, " 4. Apply Discount")
		fmt.Fprintln(s.out, " 5. View Current Order")
		fmt.Fprintln(s.out, " 6. Pay")
		fmt.Fprintln(s.out, " 7. Cancel Order")
		fmt.Fprintln(s.out, " 8. View All Orders")
		fmt.Fprintln(s.out, " 9. View Unpaid Orders")
		fmt.Fprintln(s.out, "10. Sales Summary")
		fmt.Fprintln(s.out, "11. Revenue by Category")
		fmt.Fprintln(s.out, "12. Back")

		choice, ok := s.readInt("Choice: ")
		if !ok {
			return false
		}
		switch choice {
		case 1:
			id, err := s.ledger.NewOrder(ctx)
			if s.report(err) {
				continue
			}
			fmt.Fprintf(s.out, "New Order #%d started.\n", id)
		case 2:
			if !s.addOrderLine(ctx) {
				return false
			}
		case 3:
			if !s.removeOrderLine(ctx) {
				return false
			}
		case 4:
			if !s.applyDiscount(ctx) {
				return false
			}
		case 5:
			current, ok := s.ledger.Current()
			if !ok {
				fmt.Fprintln(s.out, "No active order.")
				continue
			}
			s.printOrder(current)
		case 6:
			total, err := s.ledger.Pay(ctx)
			if s.report(err) {
				continue
			}
			fmt.Fprintf(s.out, "Payment of $%s received.\n", total.StringFixed(2))
		case 7:
			if s.report(s.ledger.CancelCurrent(ctx)) {
				continue
			}
			fmt.Fprintln(s.out, "Order cancelled.")
		case 8:
			s.printOrders(s.ledger.AllOrders())
		case 9:
			s.printOrders(s.ledger.UnpaidOrders())
		case 10:
			summary, err := s.reports.Summarize(ctx)
			if s.report(err) {
				continue
			}
			s.printSummary(summary)
		case 11:
			byCategory, err := s.reports.RevenueByCategory(ctx)
			if s.report(err) {
				continue
			}
			s.printCategoryRevenue(byCategory)
		case 12:
			return true
		default:
			fmt.Fprintln(s.out, "Invalid choice.")
		}
	}
}

func (s *Shell) addOrderLine(ctx context.Context) bool {
	items := s.menu.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "Menu is empty.")
		return true
	}
	s.printMenu(items)

	number, ok := s.readInt("  Pick item # : ")
	if !ok {
		return false
	}
	qty, ok := s.readInt("  Quantity    : ")
	if !ok {
		return false
	}
	if s.report(s.ledger.AddLine(ctx, number-1, qty)) {
		return true
	}
	fmt.Fprintf(s.out, "Added %dx %s\n", qty, items[number-1].Name)
	return true
}

func (s *Shell) removeOrderLine(ctx context.Context) bool {
	current, ok := s.ledger.Current()
	if !ok {
		fmt.Fprintln(s.out, "No active order.")
		return true
	}
	s.printOrder(current)

	number, ok := s.readInt("  Remove line # : ")
	if !ok {
		return false
	}
	if s.report(s.ledger.RemoveLine(ctx, number-1)) {
		return true
	}
	fmt.Fprintln(s.out, "Line removed.")
	return true
}

func (s *Shell) applyDiscount(ctx context.Context) bool {
	current, ok := s.ledger.Current()
	if !ok {
		fmt.Fprintln(s.out, "No active order.")
		return true
	}
	s.printOrder(current)

	number, ok := s.readInt("  Discount line #  : ")
	if !ok {
		return false
	}
	percent, ok := s.readFloat("  Discount percent : ")
	if !ok {
		return false
	}
	if s.report(s.ledger.ApplyDiscount(ctx, number-1, percent)) {
		return true
	}
	fmt.Fprintln(s.out, "Discount applied.")
	return true
}

// report prints err for the operator and returns true when the operation
// failed outright. Persistence warnings read as success with a notice, since
// the state change already happened.
func (s *Shell) report(err error) bool {
	if err == nil {
		return false
	}
	if pkgerrors.IsWarning(err) {
		fmt.Fprintf(s.out, "Warning: %s\n", pkgerrors.MetadataFor(pkgerrors.As(err).Code()).PublicMessage)
		return false
	}
	if typed := pkgerrors.As(err); typed != nil {
		fmt.Fprintln(s.out, typed.Message())
		return true
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
	return true
}

func (s *Shell) printMenu(items []menu.Item) {
	if len(items) == 0 {
		fmt.Fprintln(s.out, "  (Menu is empty)")
		return
	}
	fmt.Fprintln(s.out, "  #   Name                   Category     Price     Ordered")
	fmt.Fprintln(s.out, "  ----------------------------------------------------------")
	for i, item := range items {
		fmt.Fprintf(s.out, "  %-3d %-22s %-12s $%-8s %d\n",
			i+1, item.Name, item.Category, item.UnitPrice.StringFixed(2), item.TimesOrdered)
	}
}

func (s *Shell) printOrder(order sales.Order) {
	fmt.Fprintf(s.out, "  --- Order #%d [%s] ---\n", order.ID, strings.ToUpper(order.Status.String()))
	if len(order.Lines) == 0 {
		fmt.Fprintln(s.out, "    (empty)")
	}
	for i, line := range order.Lines {
		fmt.Fprintf(s.out, "  %d. %dx %-22s @ $%s = $%s",
			i+1, line.Quantity, line.Name, line.UnitPrice.StringFixed(2), line.Subtotal().StringFixed(2))
		if line.DiscountPercent > 0 {
			fmt.Fprintf(s.out, "  (-%s%%)", strconv.FormatFloat(line.DiscountPercent, 'f', -1, 64))
		}
		fmt.Fprintln(s.out)
	}
	fmt.Fprintf(s.out, "    Total : $%s\n", order.Total().StringFixed(2))
}

func (s *Shell) printOrders(orders []sales.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "  No orders.")
		return
	}
	for _, order := range orders {
		s.printOrder(order)
	}
}

func (s *Shell) printSummary(summary reports.Summary) {
	fmt.Fprintf(s.out, "  Total orders  : %d\n", summary.TotalOrders)
	fmt.Fprintf(s.out, "  Paid          : %d (%d lines)\n", summary.PaidOrders, summary.PaidLines)
	fmt.Fprintf(s.out, "  Unpaid        : %d (%d lines)\n", summary.ActiveOrders, summary.ActiveLines)
	fmt.Fprintf(s.out, "  Cancelled     : %d\n", summary.CancelledOrders)
	fmt.Fprintf(s.out, "  Revenue       : $%s\n", summary.Revenue.StringFixed(2))
	if summary.DiscountGiven.IsPositive() {
		fmt.Fprintf(s.out, "  Discounts     : $%s\n", summary.DiscountGiven.StringFixed(2))
	}
}

func (s *Shell) printCategoryRevenue(byCategory []reports.CategoryRevenue) {
	if len(byCategory) == 0 {
		fmt.Fprintln(s.out, "  No paid orders yet.")
		return
	}
	for _, entry := range byCategory {
		fmt.Fprintf(s.out, "  %-12s $%s\n", entry.Category, entry.Revenue.StringFixed(2))
	}
}

// readInt prompts until it gets a valid integer. ok is false once input ends.
func (s *Shell) readInt(prompt string) (int, bool) {
	for {
		raw, ok := s.readLine(prompt)
		if !ok {
			return 0, false
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			fmt.Fprintln(s.out, "Enter a valid number.")
			continue
		}
		return value, true
	}
}

func (s *Shell) readFloat(prompt string) (float64, bool) {
	for {
		raw, ok := s.readLine(prompt)
		if !ok {
			return 0, false
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fmt.Fprintln(s.out, "Enter a valid number.")
			continue
		}
		return value, true
	}
}

func (s *Shell) readDecimal(prompt string) (decimal.Decimal, bool) {
	for {
		raw, ok := s.readLine(prompt)
		if !ok {
			return decimal.Zero, false
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			fmt.Fprintln(s.out, "Enter a valid amount.")
			continue
		}
		return value, true
	}
}

func (s *Shell) readString(prompt string) (string, bool) {
	for {
		raw, ok := s.readLine(prompt)
		if !ok {
			return "", false
		}
		if raw != "" {
			return raw, true
		}
		fmt.Fprintln(s.out, "Cannot be empty.")
	}
}

func (s *Shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}
