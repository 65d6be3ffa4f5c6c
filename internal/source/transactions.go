// Package source loads analysis inputs from disk: YAML case files and
// comparable transaction tables in CSV, XLSX or YAML form.
package source

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/parcel-cli/internal/model"
)

// headerAliases maps accepted column names to the csv tags of
// model.ComparableTransaction. Keys are lower-cased and trimmed.
var headerAliases = map[string]string{
	"address":        "address",
	"주소":             "address",
	"소재지":            "address",
	"area":           "area",
	"area_sqm":       "area",
	"면적":             "area",
	"price_per_area": "price_per_area",
	"price_per_sqm":  "price_per_area",
	"unit_price":     "price_per_area",
	"단가":             "price_per_area",
	"total_price":    "total_price",
	"price":          "total_price",
	"거래금액":           "total_price",
	"distance_km":    "distance_km",
	"distance":       "distance_km",
	"거리":             "distance_km",
	"age_days":       "age_days",
	"경과일":            "age_days",
	"lat":            "lat",
	"latitude":       "lat",
	"lng":            "lng",
	"lon":            "lng",
	"longitude":      "lng",
}

// normalizeHeader maps each column to its canonical tag. Unknown columns keep
// their lower-cased name and are ignored by the decoder.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canon, ok := headerAliases[key]; ok {
			out[i] = canon
		} else {
			out[i] = key
		}
	}
	return out
}

// LoadTransactions reads comparable transactions from path. The format is
// chosen by extension: .csv, .xlsx or .yaml/.yml.
func LoadTransactions(path string) ([]model.ComparableTransaction, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "source: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		txs, err := DecodeTransactionsCSV(f)
		return txs, eris.Wrapf(err, "source: %s", path)
	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, eris.Wrapf(err, "source: %s", path)
		}
		txs, err := decodeRows(&sliceReader{rows: rows})
		return txs, eris.Wrapf(err, "source: %s", path)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "source: read %s", path)
		}
		var txs []model.ComparableTransaction
		if err := yaml.Unmarshal(data, &txs); err != nil {
			return nil, eris.Wrapf(err, "source: parse %s", path)
		}
		return txs, nil
	default:
		return nil, eris.Errorf("source: unsupported transactions file %s", path)
	}
}

// DecodeTransactionsCSV decodes a header-led CSV table.
func DecodeTransactionsCSV(r io.Reader) ([]model.ComparableTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return decodeRows(cr)
}

func decodeRows(r csvutil.Reader) ([]model.ComparableTransaction, error) {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	dec, err := csvutil.NewDecoder(&padReader{r: r, n: len(header)}, normalizeHeader(header)...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: new decoder")
	}

	var txs []model.ComparableTransaction
	for {
		var tx model.ComparableTransaction
		err := dec.Decode(&tx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: decode row %d", len(txs)+2)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// padReader fits every record to the header width. Spreadsheet exports drop
// trailing empty cells.
type padReader struct {
	r csvutil.Reader
	n int
}

func (p *padReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	switch {
	case len(rec) < p.n:
		rec = append(rec, make([]string, p.n-len(rec))...)
	case len(rec) > p.n:
		rec = rec[:p.n]
	}
	return rec, nil
}

// sliceReader feeds pre-read rows to csvutil.
type sliceReader struct {
	rows [][]string
	pos  int
}

func (s *sliceReader) Read() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}
