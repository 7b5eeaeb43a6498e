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

	"github.com/comandahq/comanda/internal/menu"
	"github.com/comandahq/comanda/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// fieldDelimiter separates record fields. It is reserved: names and
// categories must not contain it.
const fieldDelimiter = "|"

// MenuStore reads and writes the menu catalog as one record per line:
//
//	Name|Category|Price|TimesOrdered
//
// TimesOrdered is optional on read for files written before the counter
// existed; it is always written.
type MenuStore struct {
	path string
	log  *logger.Logger
}

func NewMenuStore(path string, log *logger.Logger) *MenuStore {
	return &MenuStore{path: path, log: log}
}

// Load returns an empty catalog when the file does not exist. Malformed
// records are skipped, never fatal.
func (s *MenuStore) Load(ctx context.Context) ([]menu.Item, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening menu store: %w", err)
	}
	defer file.Close()

	var items []menu.Item
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, fieldDelimiter)
		if len(parts) != 3 && len(parts) != 4 {
			s.log.Warn(s.log.WithField(ctx, "line", line), "skipping malformed menu record")
			continue
		}
		price, err := decimal.NewFromString(parts[2])
		if err != nil {
			s.log.Warn(s.log.WithField(ctx, "line", line), "skipping menu record with bad price")
			continue
		}
		item := menu.Item{Name: parts[0], Category: parts[1], UnitPrice: price}
		if len(parts) == 4 {
			if count, err := strconv.Atoi(parts[3]); err == nil {
				item.TimesOrdered = count
			}
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading menu store: %w", err)
	}
	return items, nil
}

// Save overwrites the whole file so the durable state is always a complete
// snapshot.
func (s *MenuStore) Save(ctx context.Context, items []menu.Item) (err error) {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating menu store: %w", err)
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	writer := bufio.NewWriter(file)
	for _, item := range items {
		record := strings.Join([]string{
			item.Name,
			item.Category,
			item.UnitPrice.String(),
			strconv.Itoa(item.TimesOrdered),
		}, fieldDelimiter)
		fmt.Fprintln(writer, record)
	}
	return writer.Flush()
}
