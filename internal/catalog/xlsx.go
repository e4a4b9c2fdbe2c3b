package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kosarica/offer-service/internal/ranking"
)

// Sheet names of a catalog workbook.
const (
	ProductsSheet  = "products"
	InventorySheet = "inventory"
	ReviewsSheet   = "reviews"
)

// XLSXSource loads the catalog from a workbook with products, inventory and
// reviews sheets. The first row of each sheet names the columns; column order
// is free and header matching ignores case. The reviews sheet is optional.
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a workbook-backed catalog source.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Load implements ranking.CatalogSource. The workbook is re-read on every call.
func (s *XLSXSource) Load(ctx context.Context) (*ranking.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %w", ranking.ErrSourceData, s.path, err)
	}
	defer f.Close()

	snapshot, err := ReadWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ranking.ErrSourceData, s.path, err)
	}
	return snapshot, nil
}

// ReadWorkbook parses an open catalog workbook.
func ReadWorkbook(f *excelize.File) (*ranking.CatalogSnapshot, error) {
	products, err := readSheet(f, ProductsSheet, []string{"sku", "name"}, true)
	if err != nil {
		return nil, err
	}
	inventory, err := readSheet(f, InventorySheet, []string{"sku", "storeid", "price"}, true)
	if err != nil {
		return nil, err
	}
	reviews, err := readSheet(f, ReviewsSheet, []string{"sku", "rating"}, false)
	if err != nil {
		return nil, err
	}
	return buildSnapshot(products, inventory, reviews)
}

// WriteWorkbook writes snapshot to path in the layout ReadWorkbook expects.
func WriteWorkbook(path string, snapshot *ranking.CatalogSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{InventorySheet, ReviewsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	products := [][]any{toRow(productColumns)}
	for _, p := range snapshot.Products {
		products = append(products, []any{p.SKU, p.Name, p.Description, p.ImageRef, p.CategoryID})
	}
	inventory := [][]any{toRow(inventoryColumns)}
	for _, inv := range snapshot.Inventory {
		inventory = append(inventory, []any{inv.SKU, inv.StoreID, inv.Price, inv.Quantity, inv.StoreAddress, inv.StoreName})
	}
	reviews := [][]any{toRow(reviewColumns)}
	for _, r := range snapshot.Reviews {
		reviews = append(reviews, []any{r.SKU, r.Rating})
	}

	for sheet, rows := range map[string][][]any{ProductsSheet: products, InventorySheet: inventory, ReviewsSheet: reviews} {
		for i, row := range rows {
			addr, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, addr, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// readSheet reads sheet into a table. A missing optional sheet yields nil.
func readSheet(f *excelize.File, sheet string, required []string, mandatory bool) (*table, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if mandatory {
			return nil, fmt.Errorf("sheet %q not found. Available sheets: %s", sheet, strings.Join(f.GetSheetList(), ", "))
		}
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}
	return newTable("sheet "+sheet, rows, required, mandatory)
}
