package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/kosarica/offer-service/internal/ranking"
)

// File names of a catalog CSV directory.
const (
	ProductsFile  = "products.csv"
	InventoryFile = "inventory.csv"
	ReviewsFile   = "reviews.csv"
)

// Encodings accepted for CSV files. Auto detection treats valid UTF-8 as
// UTF-8 and anything else as Windows-1250, the usual encoding of Croatian retail exports.
const (
	EncodingAuto        = ""
	EncodingUTF8        = "utf-8"
	EncodingWindows1250 = "windows-1250"
	EncodingISO88592    = "iso-8859-2"
)

// CSVSource loads the catalog from products.csv, inventory.csv and an
// optional reviews.csv in one directory. Delimiter (comma, semicolon or tab)
// is detected per file; headers follow the workbook layout.
type CSVSource struct {
	dir      string
	encoding string
}

// NewCSVSource creates a CSV-directory catalog source.
func NewCSVSource(dir, encoding string) *CSVSource {
	return &CSVSource{dir: dir, encoding: strings.ToLower(encoding)}
}

// Load implements ranking.CatalogSource. Files are re-read on every call.
func (s *CSVSource) Load(ctx context.Context) (*ranking.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products, err := s.readFile(ProductsFile, []string{"sku", "name"}, true)
	if err != nil {
		return nil, err
	}
	inventory, err := s.readFile(InventoryFile, []string{"sku", "storeid", "price"}, true)
	if err != nil {
		return nil, err
	}
	reviews, err := s.readFile(ReviewsFile, []string{"sku", "rating"}, false)
	if err != nil {
		return nil, err
	}

	snapshot, err := buildSnapshot(products, inventory, reviews)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ranking.ErrSourceData, s.dir, err)
	}
	return snapshot, nil
}

func (s *CSVSource) readFile(name string, required []string, mandatory bool) (*table, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !mandatory && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ranking.ErrSourceData, name, err)
	}

	rows, err := ParseCSV(data, s.encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ranking.ErrSourceData, name, err)
	}
	t, err := newTable("file "+name, rows, required, mandatory)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ranking.ErrSourceData, err)
	}
	return t, nil
}

// ParseCSV decodes data to UTF-8, detects the delimiter and returns all records.
func ParseCSV(data []byte, encoding string) ([][]string, error) {
	text, err := decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = DetectDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func decode(data []byte, encoding string) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	switch encoding {
	case EncodingAuto, EncodingUTF8:
		// A file that is valid UTF-8 is never re-decoded, even if a legacy encoding was configured.
		if utf8.Valid(data) {
			return string(data), nil
		}
		if encoding == EncodingUTF8 {
			return "", errors.New("content is not valid UTF-8")
		}
		return charmap.Windows1250.NewDecoder().String(string(data))
	case EncodingWindows1250:
		if utf8.Valid(data) {
			return string(data), nil
		}
		return charmap.Windows1250.NewDecoder().String(string(data))
	case EncodingISO88592:
		return charmap.ISO8859_2.NewDecoder().String(string(data))
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// DetectDelimiter picks the delimiter whose count is highest and most
// consistent across the first five non-empty lines. Comma wins ties.
func DetectDelimiter(content string) rune {
	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sample = append(sample, line)
			if len(sample) == 5 {
				break
			}
		}
	}

	best, bestScore := ',', 0.0
	for _, delim := range []rune{',', ';', '\t'} {
		counts := make([]float64, len(sample))
		sum := 0.0
		for i, line := range sample {
			counts[i] = float64(strings.Count(line, string(delim)))
			sum += counts[i]
		}
		if sum == 0 {
			continue
		}
		avg := sum / float64(len(sample))
		variance := 0.0
		for _, c := range counts {
			variance += (c - avg) * (c - avg)
		}
		variance /= float64(len(sample))

		if score := avg / (1 + variance); score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// WriteCSV writes snapshot into dir as UTF-8, comma-delimited files in the layout CSVSource reads.
func WriteCSV(dir string, snapshot *ranking.CatalogSnapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	products := [][]string{productColumns}
	for _, p := range snapshot.Products {
		products = append(products, []string{p.SKU, p.Name, p.Description, p.ImageRef, p.CategoryID})
	}
	inventory := [][]string{inventoryColumns}
	for _, inv := range snapshot.Inventory {
		inventory = append(inventory, []string{
			inv.SKU, inv.StoreID, strconv.FormatFloat(inv.Price, 'f', -1, 64),
			strconv.Itoa(inv.Quantity), inv.StoreAddress, inv.StoreName,
		})
	}
	reviews := [][]string{reviewColumns}
	for _, r := range snapshot.Reviews {
		reviews = append(reviews, []string{r.SKU, strconv.FormatFloat(r.Rating, 'f', -1, 64)})
	}

	for name, rows := range map[string][][]string{ProductsFile: products, InventoryFile: inventory, ReviewsFile: reviews} {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
