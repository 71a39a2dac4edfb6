package collector

import (
	"encoding/csv"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"

	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
	"MetalBoard/internal/series"
)

// ErrNotFound is returned when no CSV file exists for a symbol.
var ErrNotFound = errors.New("price file not found")

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	time.RFC3339,
}

// FileName returns the CSV file name for a symbol.
func FileName(symbol string) string { return symbol + ".csv" }

// Locate finds <symbol>.csv. It tries the configured data directory and a
// few fixed relative paths first, then walks the working directory.
func Locate(dataDir, symbol string) (string, error) {
	name := FileName(symbol)
	quick := []string{
		filepath.Join("Strategy", "data", name),
		filepath.Join("data", name),
		name,
	}
	if dataDir != "" {
		quick = append([]string{filepath.Join(dataDir, name)}, quick...)
	}
	for _, p := range quick {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}

	root, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "getwd")
	}
	found := ""
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", errors.Wrap(walkErr, "walk data files")
	}
	if found == "" {
		return "", errors.Wrapf(ErrNotFound, "%s under %s", name, root)
	}
	return found, nil
}

// ReadCSVFile opens and parses a price file.
func ReadCSVFile(path string) ([]model.PricePoint, model.Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.Columns{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	pts, cols, err := ReadCSV(f)
	if err != nil {
		return nil, model.Columns{}, errors.Wrapf(err, "read %s", path)
	}
	return pts, cols, nil
}

// ReadCSV parses a price table. UTF-8 and BOM-marked UTF-16 input are both
// accepted. Headers are mapped through ColumnAliases; when none maps to
// Date the first column is the date. A missing Close column is a
// *series.MissingColumnError. Unparsable numbers become undefined; rows
// with an unparsable date are skipped.
func ReadCSV(r io.Reader) ([]model.PricePoint, model.Columns, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, model.Columns{}, &series.MissingColumnError{Column: ColClose}
	}
	if err != nil {
		return nil, model.Columns{}, errors.Wrap(err, "read header")
	}

	idx := map[string]int{}
	for i, h := range header {
		if c, ok := Canonical(h); ok {
			if _, dup := idx[c]; !dup {
				idx[c] = i
			}
		}
	}
	if _, ok := idx[ColDate]; !ok {
		idx[ColDate] = 0
	}
	if _, ok := idx[ColClose]; !ok {
		return nil, model.Columns{}, &series.MissingColumnError{Column: ColClose}
	}
	has := func(c string) bool { _, ok := idx[c]; return ok }
	cols := model.Columns{Open: has(ColOpen), High: has(ColHigh), Low: has(ColLow), Volume: has(ColVolume)}

	cell := func(rec []string, c string) string {
		i, ok := idx[c]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var pts []model.PricePoint
	skipped := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, model.Columns{}, errors.Wrap(err, "read row")
		}
		ts, ok := ParseDate(cell(rec, ColDate))
		if !ok {
			skipped++
			continue
		}
		pts = append(pts, model.PricePoint{
			Time:   ts,
			Open:   ParseNumber(cell(rec, ColOpen)),
			High:   ParseNumber(cell(rec, ColHigh)),
			Low:    ParseNumber(cell(rec, ColLow)),
			Close:  ParseNumber(cell(rec, ColClose)),
			Volume: ParseNumber(cell(rec, ColVolume)),
		})
	}
	if skipped > 0 {
		logger.Warn("skipped %d rows with unparsable dates", skipped)
	}
	return pts, cols, nil
}

// ParseNumber parses a numeric cell. Thousands separators are dropped;
// blanks, placeholders and garbage are undefined.
func ParseNumber(s string) model.Num {
	s = width.Fold.String(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ",", "")
	switch strings.ToLower(s) {
	case "", "-", "--", "nan", "null", "none", "n/a":
		return model.Undefined
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Undefined
	}
	return model.Some(v)
}

// ParseDate parses the date layouts seen in exported price files.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WriteCSV writes points in canonical Date,Open,High,Low,Close,Volume form.
// Undefined values are left blank.
func WriteCSV(w io.Writer, points []model.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume}); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, p := range points {
		rec := []string{
			p.Time.Format("2006-01-02"),
			formatNum(p.Open),
			formatNum(p.High),
			formatNum(p.Low),
			formatNum(p.Close),
			formatNum(p.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteCSVFile writes points to path through a temporary file.
func WriteCSVFile(path string, points []model.PricePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create dir for %s", path)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "rename %s", tmp)
}

func formatNum(n model.Num) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Val, 'f', -1, 64)
}
