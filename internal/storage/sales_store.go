package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/comandahq/comanda/internal/sales"
	"github.com/comandahq/comanda/pkg/enums"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	recordOrder    = "ORDER"
	recordItem     = "ITEM"
	recordEndOrder = "END_ORDER"
)

// SalesStore reads and writes the order ledger as a sequence of blocks:
//
//	ORDER|<id>|<paid>|<cancelled>
//	ITEM|<name>|<category>|<price>|<quantity>|<discountPercent>
//	...
//	END_ORDER
//
// Older files may carry three-field ORDER lines (no cancelled flag) and
// five-field ITEM lines (no discount); both read as zero values.
type SalesStore struct {
	path string
	log  *logger.Logger
}

func NewSalesStore(path string, log *logger.Logger) *SalesStore {
	return &SalesStore{path: path, log: log}
}

// Load tolerates malformed input: ITEM lines outside a block are dropped, a
// second ORDER line before END_ORDER discards the unfinished block, and a
// truncated trailing block is simply never committed. A missing file yields
// an empty ledger.
func (s *SalesStore) Load(ctx context.Context) ([]sales.Order, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening sales store: %w", err)
	}
	defer file.Close()

	var orders []sales.Order
	var pending *sales.Order

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == recordEndOrder:
			if pending != nil {
				orders = append(orders, *pending)
				pending = nil
			}

		case strings.HasPrefix(line, recordOrder+fieldDelimiter):
			order, ok := s.decodeOrder(ctx, line)
			if !ok {
				pending = nil
				continue
			}
			pending = &order

		case strings.HasPrefix(line, recordItem+fieldDelimiter):
			if pending == nil {
				s.log.Warn(s.log.WithField(ctx, "line", line), "dropping orphaned item record")
				continue
			}
			if orderLine, ok := s.decodeLine(ctx, line); ok {
				pending.Lines = append(pending.Lines, orderLine)
			}

		default:
			s.log.Warn(s.log.WithField(ctx, "line", line), "skipping unknown sales record")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading sales store: %w", err)
	}
	return orders, nil
}

func (s *SalesStore) decodeOrder(ctx context.Context, line string) (sales.Order, bool) {
	parts := strings.Split(line, fieldDelimiter)
	if len(parts) < 3 {
		s.log.Warn(s.log.WithField(ctx, "line", line), "skipping malformed order record")
		return sales.Order{}, false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "line", line), "skipping order record with bad id")
		return sales.Order{}, false
	}

	status := enums.OrderStatusActive
	if len(parts) >= 4 && strings.EqualFold(parts[3], "true") {
		status = enums.OrderStatusCancelled
	} else if strings.EqualFold(parts[2], "true") {
		status = enums.OrderStatusPaid
	}
	return sales.Order{ID: id, Status: status}, true
}

func (s *SalesStore) decodeLine(ctx context.Context, line string) (sales.OrderLine, bool) {
	parts := strings.Split(line, fieldDelimiter)
	if len(parts) != 5 && len(parts) != 6 {
		s.log.Warn(s.log.WithField(ctx, "line", line), "skipping malformed item record")
		return sales.OrderLine{}, false
	}
	price, err := decimal.NewFromString(parts[3])
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "line", line), "skipping item record with bad price")
		return sales.OrderLine{}, false
	}
	quantity, err := strconv.Atoi(parts[4])
	if err != nil {
		s.log.Warn(s.log.WithField(ctx, "line", line), "skipping item record with bad quantity")
		return sales.OrderLine{}, false
	}

	orderLine := sales.OrderLine{
		Name:      parts[1],
		Category:  parts[2],
		UnitPrice: price,
		Quantity:  quantity,
	}
	if len(parts) == 6 {
		if discount, err := strconv.ParseFloat(parts[5], 64); err == nil {
			orderLine.SetDiscount(discount)
		}
	}
	return orderLine, true
}

// Save overwrites the whole file after every mutation, so the durable state
// is always the complete ledger as of the last successful write.
func (s *SalesStore) Save(ctx context.Context, orders []sales.Order) (err error) {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating sales store: %w", err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	writer := bufio.NewWriter(file)
	for _, order := range orders {
		header := strings.Join([]string{
			recordOrder,
			strconv.Itoa(order.ID),
			strconv.FormatBool(order.Status == enums.OrderStatusPaid),
			strconv.FormatBool(order.Status == enums.OrderStatusCancelled),
		}, fieldDelimiter)
		fmt.Fprintln(writer, header)

		for _, line := range order.Lines {
			record := strings.Join([]string{
				recordItem,
				line.Name,
				line.Category,
				line.UnitPrice.String(),
				strconv.Itoa(line.Quantity),
				strconv.FormatFloat(line.DiscountPercent, 'f', -1, 64),
			}, fieldDelimiter)
			fmt.Fprintln(writer, record)
		}
		fmt.Fprintln(writer, recordEndOrder)
	}
	return writer.Flush()
}
