// Package export renders generated data as flat tables and ships them to
// files, S3 or Kafka.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/demographic"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
)

// Table is a named header plus rows of cell values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

var (
	CustomerColumns = []string{"Customer_ID", "Plan_Type", "Age", "Gender", "State", "Region"}
	ReviewColumns   = []string{"Review_ID", "Customer_ID", "Review_Date", "Rating", "Review_Text", "Sentiment", "Prompt", "Company_Name"}
)

func CustomersTable(customers []demographic.Customer) Table {
	t := Table{Name: "customers", Header: CustomerColumns, Rows: make([][]any, 0, len(customers))}
	for _, c := range customers {
		t.Rows = append(t.Rows, []any{c.ID, c.PlanType, c.Age, c.Gender, c.State, c.Region})
	}
	return t
}

func ReviewsTable(reviews []review.Review) Table {
	t := Table{Name: "reviews", Header: ReviewColumns, Rows: make([][]any, 0, len(reviews))}
	for _, r := range reviews {
		t.Rows = append(t.Rows, []any{
			r.ID, r.CustomerID, r.Date.Format(time.DateOnly), r.Rating,
			r.Text, string(r.Sentiment), r.Prompt, r.CompanyName,
		})
	}
	return t
}

// MergedTable is the dashboard input: reviews joined with demographics.
func MergedTable(rows []dataset.Row) Table {
	t := Table{Name: "merged", Header: dataset.Columns, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.ReviewID, r.CustomerID, r.ReviewDate.Format(time.DateOnly), r.ReviewYear,
			r.Rating, r.Sentiment, r.Topic, r.ReviewText, r.PlanType, r.Age,
			r.AgeGroup, r.Gender, r.State, r.Region,
		})
	}
	return t
}

// WriteCSV writes t with its header row.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes t as a single-sheet workbook named after the table.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: write xlsx header: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: xlsx cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: write xlsx row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}
