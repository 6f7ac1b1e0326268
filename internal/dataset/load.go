package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
)

// legacyCustomerID is accepted when the merged table was produced by a
// join that kept the plain customer column name.
const legacyCustomerID = "Customer_ID"

const (
	minRating = 1
	maxRating = 5
)

var requiredColumns = []string{
	ColReviewYear, ColRating, ColSentiment, ColTopic, ColRegion,
	ColState, ColAgeGroup, ColGender, ColPlanType,
}

// Load reads a merged table from a .csv or .xlsx file.
func Load(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("dataset: open %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		return loadXLSX(path)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q", filepath.Ext(path))
	}
}

// ReadCSV parses a merged table in CSV form.
func ReadCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, &apperr.DataIntegrityError{Reason: "malformed csv", Err: err}
	}
	return parseRecords(records)
}

func loadXLSX(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &apperr.DataIntegrityError{Reason: "workbook has no sheets"}
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &apperr.DataIntegrityError{Reason: "read sheet " + sheets[0], Err: err}
	}
	return parseRecords(records)
}

func parseRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, &apperr.DataIntegrityError{Reason: "table has no header"}
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, &apperr.DataIntegrityError{Reason: "missing column " + col}
		}
	}
	custCol, ok := idx[ColCustomerID]
	if !ok {
		if custCol, ok = idx[legacyCustomerID]; !ok {
			return nil, &apperr.DataIntegrityError{Reason: "missing column " + ColCustomerID}
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		intCell := func(col string, required bool) (int, error) {
			v := cell(col)
			if v == "" && !required {
				return 0, nil
			}
			x, err := parseInt(v)
			if err != nil {
				return 0, &apperr.DataIntegrityError{
					Reason: fmt.Sprintf("row %d: column %s", line, col),
					Err:    err,
				}
			}
			return x, nil
		}

		if isBlank(rec) {
			continue
		}

		var row Row
		var err error
		if row.ReviewYear, err = intCell(ColReviewYear, true); err != nil {
			return nil, err
		}
		if row.Rating, err = intCell(ColRating, true); err != nil {
			return nil, err
		}
		if row.Rating < minRating || row.Rating > maxRating {
			return nil, &apperr.DataIntegrityError{
				Reason: fmt.Sprintf("row %d: column %s: %d outside %d..%d", line, ColRating, row.Rating, minRating, maxRating),
			}
		}
		if row.ReviewID, err = intCell(ColReviewID, false); err != nil {
			return nil, err
		}
		if row.Age, err = intCell(ColAge, false); err != nil {
			return nil, err
		}
		custID := ""
		if custCol < len(rec) {
			custID = strings.TrimSpace(rec[custCol])
		}
		if row.CustomerID, err = parseInt(custID); err != nil {
			return nil, &apperr.DataIntegrityError{
				Reason: fmt.Sprintf("row %d: customer id", line),
				Err:    err,
			}
		}
		if d := cell(ColReviewDate); d != "" {
			if row.ReviewDate, err = parseDate(d); err != nil {
				return nil, &apperr.DataIntegrityError{
					Reason: fmt.Sprintf("row %d: column %s", line, ColReviewDate),
					Err:    err,
				}
			}
		}

		row.Sentiment = strings.ToLower(cell(ColSentiment))
		if !review.Sentiment(row.Sentiment).Valid() {
			return nil, &apperr.DataIntegrityError{
				Reason: fmt.Sprintf("row %d: column %s: unknown value %q", line, ColSentiment, cell(ColSentiment)),
			}
		}
		row.Topic = cell(ColTopic)
		row.ReviewText = cell(ColReviewText)
		row.PlanType = cell(ColPlanType)
		row.AgeGroup = cell(ColAgeGroup)
		row.Gender = cell(ColGender)
		row.State = cell(ColState)
		row.Region = cell(ColRegion)
		rows = append(rows, row)
	}
	return rows, nil
}

// parseInt accepts integers written as floats ("2021.0"), as spreadsheets
// often store them.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, "1/2/2006", "01-02-06", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Cache loads a table once per process and serves the same rows after.
type Cache struct {
	Path string
	load func() ([]Row, error)
}

func NewCache(path string) *Cache {
	return &Cache{
		Path: path,
		load: sync.OnceValues(func() ([]Row, error) { return Load(path) }),
	}
}

// Rows returns the cached rows, loading them on first use. A failed load
// is cached too.
func (c *Cache) Rows() ([]Row, error) {
	return c.load()
}
