package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

type stubProductWriter struct {
	existing map[string]bool
	created  []productsvc.Input
	updated  []productsvc.Input
}

func (s *stubProductWriter) Create(_ context.Context, in productsvc.Input) (*domain.Product, error) {
	s.created = append(s.created, in)
	return &domain.Product{ID: in.ID, Name: in.Name}, nil
}

func (s *stubProductWriter) Update(_ context.Context, id string, in productsvc.Input) (*domain.Product, error) {
	if !s.existing[id] {
		return nil, domain.ErrNotFound
	}
	s.updated = append(s.updated, in)
	return &domain.Product{ID: id, Name: in.Name}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,productName,description,price,stockAvailable,imageUrl
p-1,Mug,Ceramic mug,12.50,4,https://example.com/mug.jpg
p-2,Tee,Cotton tee,19.99,10,
,,,,,
,Poster,No id,5,1,`

	writer := &stubProductWriter{existing: map[string]bool{"p-1": true}}
	imp := NewCSVImporter(strings.NewReader(csvData), writer, nil)

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Total() != 3 || res.Updated != 1 || res.Created != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(writer.updated) != 1 {
		t.Fatalf("expected 1 update, got %d", len(writer.updated))
	}
	mug := writer.updated[0]
	if mug.ID != "p-1" || mug.PriceCents != 1250 || mug.StockAvailable != 4 || mug.ImageURL != "https://example.com/mug.jpg" {
		t.Fatalf("unexpected product data: %+v", mug)
	}

	if writer.created[0].ID != "p-2" || writer.created[0].PriceCents != 1999 {
		t.Fatalf("expected p-2 to be created under its id, got %+v", writer.created[0])
	}
	if writer.created[1].ID != "" || writer.created[1].Name != "Poster" {
		t.Fatalf("expected poster without id, got %+v", writer.created[1])
	}
}

func TestCSVImporter_HeaderAliases(t *testing.T) {
	csvData := "Name,Price,Stock\nLamp,30,2\n"
	writer := &stubProductWriter{}

	res, err := NewCSVImporter(strings.NewReader(csvData), writer, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Created != 1 || writer.created[0].Name != "Lamp" || writer.created[0].PriceCents != 3000 || writer.created[0].StockAvailable != 2 {
		t.Fatalf("unexpected import: %+v %+v", res, writer.created)
	}
}

func TestCSVImporter_InvalidPrice(t *testing.T) {
	csvData := "productName,price\nLamp,cheap\n"
	_, err := NewCSVImporter(strings.NewReader(csvData), &stubProductWriter{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-numbered price error, got %v", err)
	}
}

func TestCSVImporter_MissingNameColumn(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("id,price\n1,2\n"), &stubProductWriter{}, nil).Run(context.Background())
	if err == nil {
		t.Fatalf("expected error for missing productName column")
	}
}
