package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kosarica/offer-service/internal/ranking"
)

var (
	productColumns   = []string{"sku", "name", "description", "imageRef", "categoryId"}
	inventoryColumns = []string{"sku", "storeId", "price", "quantity", "storeAddress", "storeName"}
	reviewColumns    = []string{"sku", "rating"}
)

// table is one tabular catalog section (a sheet or a file) after header parsing.
type table struct {
	name string
	rows [][]string
	idx  header
}

// newTable splits raw into a header index and the non-empty data rows.
// A nil table is returned for an optional section with no rows at all.
func newTable(name string, raw [][]string, required []string, mandatory bool) (*table, error) {
	if len(raw) == 0 {
		if mandatory {
			return nil, fmt.Errorf("%s has no header row", name)
		}
		return nil, nil
	}

	index := make(header, len(raw[0]))
	for i, h := range raw[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}

	data := make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		if isEmptyRow(row) {
			continue
		}
		data = append(data, row)
	}
	return &table{name: name, rows: data, idx: index}, nil
}

// buildSnapshot converts the three sections into catalog rows. Row numbers in
// errors count the header as row 1; reviews may be nil.
func buildSnapshot(products, inventory, reviews *table) (*ranking.CatalogSnapshot, error) {
	snapshot := &ranking.CatalogSnapshot{}

	for i, row := range products.rows {
		idx := products.idx
		p := ranking.ProductRow{
			SKU:         idx.get(row, "sku"),
			Name:        idx.get(row, "name"),
			Description: idx.get(row, "description"),
			ImageRef:    idx.get(row, "imageref"),
			CategoryID:  idx.get(row, "categoryid"),
		}
		if p.SKU == "" {
			return nil, fmt.Errorf("%s row %d: missing sku", products.name, i+2)
		}
		snapshot.Products = append(snapshot.Products, p)
	}

	for i, row := range inventory.rows {
		idx := inventory.idx
		inv := ranking.InventoryRow{
			SKU:          idx.get(row, "sku"),
			StoreID:      idx.get(row, "storeid"),
			StoreAddress: idx.get(row, "storeaddress"),
			StoreName:    idx.get(row, "storename"),
		}
		if inv.SKU == "" || inv.StoreID == "" {
			return nil, fmt.Errorf("%s row %d: missing sku or storeId", inventory.name, i+2)
		}
		price, err := parsePrice(idx.get(row, "price"))
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%s row %d: invalid price %q", inventory.name, i+2, idx.get(row, "price"))
		}
		inv.Price = price
		if q := idx.get(row, "quantity"); q != "" {
			if inv.Quantity, err = strconv.Atoi(q); err != nil {
				return nil, fmt.Errorf("%s row %d: invalid quantity %q", inventory.name, i+2, q)
			}
		}
		snapshot.Inventory = append(snapshot.Inventory, inv)
	}

	if reviews == nil {
		return snapshot, nil
	}
	for i, row := range reviews.rows {
		rating, err := parsePrice(reviews.idx.get(row, "rating"))
		if err != nil || rating < 0 || rating > 5 {
			return nil, fmt.Errorf("%s row %d: invalid rating %q", reviews.name, i+2, reviews.idx.get(row, "rating"))
		}
		snapshot.Reviews = append(snapshot.Reviews, ranking.ReviewRow{SKU: reviews.idx.get(row, "sku"), Rating: rating})
	}

	return snapshot, nil
}

// header maps lower-cased column names to their position.
type header map[string]int

func (h header) get(row []string, name string) string {
	i, ok := h[name]
	if !ok {
		return ""
	}
	return cell(row, i)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var currencySuffix = regexp.MustCompile(`(?i)\s*(EUR|HRK|KN|USD)\s*$`)

// parsePrice parses "12.99", "12,99", "1.299,00", "1,299.00" and "3,49 €".
// The last of '.' and ',' is the decimal separator; the other groups thousands.
// NaN and infinities are rejected.
func parsePrice(value string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', ' ', '\u00a0':
			return -1
		}
		return r
	}, strings.TrimSpace(value))
	cleaned = currencySuffix.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value in %q", value)
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value in %q", value)
	}
	return v, nil
}

func toRow(cols []string) []any {
	row := make([]any, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}
