package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"

	"go.uber.org/zap"
)

type ProductWriter interface {
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
}

// Result counts what a run wrote.
type Result struct {
	Created int
	Updated int
}

func (r Result) Total() int { return r.Created + r.Updated }

// CSVImporter reads catalog CSV files and creates or updates products.
// Recognised headers: id, productName (or name), description, price,
// stockAvailable (or stock), imageUrl. Header matching is case-insensitive.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	logger   *zap.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		reader:   csvr,
		products: products,
		logger:   logger,
	}
}

// Run imports every row. Rows with an id update that product, or create it
// under that id when missing; rows without an id always create.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := lookup(index, "productname", "name"); !ok {
		return res, fmt.Errorf("missing productName column")
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		in, ok, err := parseRow(record, index)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}

		created, err := i.save(ctx, in)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}

	i.logger.Info("import: finished", zap.Int("created", res.Created), zap.Int("updated", res.Updated))
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, in productsvc.Input) (bool, error) {
	if in.ID != "" {
		_, err := i.products.Update(ctx, in.ID, in)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("update product %q: %w", in.ID, err)
		}
	}
	if _, err := i.products.Create(ctx, in); err != nil {
		return false, fmt.Errorf("create product %q: %w", in.Name, err)
	}
	return true, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func lookup(index map[string]int, names ...string) (int, bool) {
	for _, n := range names {
		if pos, ok := index[n]; ok {
			return pos, true
		}
	}
	return 0, false
}

func parseRow(record []string, index map[string]int) (productsvc.Input, bool, error) {
	in := productsvc.Input{
		ID:          pick(record, index, "id"),
		Name:        pick(record, index, "productname", "name"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "imageurl"),
	}
	price := pick(record, index, "price")
	stock := pick(record, index, "stockavailable", "stock")

	if in.ID == "" && in.Name == "" && price == "" && stock == "" {
		return in, false, nil
	}

	if price != "" {
		amount, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return in, false, fmt.Errorf("invalid price %q", price)
		}
		in.PriceCents = domain.AmountToCents(amount)
	}
	if stock != "" {
		n, err := strconv.Atoi(stock)
		if err != nil {
			return in, false, fmt.Errorf("invalid stock %q", stock)
		}
		in.StockAvailable = n
	}
	return in, true, nil
}

func pick(record []string, index map[string]int, names ...string) string {
	pos, ok := lookup(index, names...)
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
