// Package handler serves the dashboard aggregates as JSON.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/apperr"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dashboard"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/middleware"
)

// RowSource yields the merged table. *dataset.Cache satisfies it.
type RowSource interface {
	Rows() ([]dataset.Row, error)
}

func loadRows(src RowSource) ([]dataset.Row, error) {
	rows, err := src.Rows()
	if err != nil {
		return nil, err
	}
	metrics.DashboardRows.Set(float64(len(rows)))
	return rows, nil
}

// Filters lists the values each filter control can offer.
func Filters(src RowSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		rows, err := loadRows(src)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dashboard.Options(rows))
	}
}

// Dashboard returns every chart payload. GET reads the filter from the
// query string, POST from a JSON body.
func Dashboard(src RowSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			f   dashboard.Filter
			err error
		)
		switch r.Method {
		case http.MethodGet:
			f, err = filterFromQuery(r.URL.Query())
		case http.MethodPost:
			err = json.NewDecoder(r.Body).Decode(&f)
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		rows, err := loadRows(src)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		summary, err := dashboard.Build(rows, f)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		middleware.AddLogAttrs(r.Context(), "dataset_rows", len(rows), "rows_served", summary.Rows)
		writeJSON(w, http.StatusOK, summary)
	}
}

// Heatmap pivots the filtered rows on ?rows= and ?cols=.
func Heatmap(src RowSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()
		rowDim, colDim := q.Get("rows"), q.Get("cols")
		if rowDim == "" || colDim == "" {
			writeError(w, http.StatusBadRequest, "rows and cols are required")
			return
		}
		f, err := filterFromQuery(q)
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		all, err := loadRows(src)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		selected, err := dashboard.Select(all, f)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		h, err := dashboard.Pivot(selected, rowDim, colDim)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		middleware.AddLogAttrs(r.Context(), "pivot", rowDim+"x"+colDim, "rows_served", len(selected))
		writeJSON(w, http.StatusOK, h)
	}
}

// writeFailure maps error kinds to responses. Missing or unusable data is
// shown as a placeholder, never a 5xx.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *apperr.ValidationError
		die *apperr.DataIntegrityError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &die):
		middleware.AddLogAttrs(r.Context(), "placeholder", die.Reason)
		slog.Warn("dashboard placeholder",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"reason", die.Error(),
		)
		writePlaceholder(w, die.Error())
	default:
		slog.Error("dashboard failure",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func filterFromQuery(q url.Values) (dashboard.Filter, error) {
	var f dashboard.Filter
	var err error
	if f.YearFrom, err = intParam(q, "year_from"); err != nil {
		return f, err
	}
	if f.YearTo, err = intParam(q, "year_to"); err != nil {
		return f, err
	}
	f.PlanTypes = listParam(q, "plan_types")
	f.Genders = listParam(q, "genders")
	f.AgeGroups = listParam(q, "age_groups")
	f.Regions = listParam(q, "regions")
	f.Sentiments = listParam(q, "sentiments")
	return f, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Invalid(key, "not an integer: %q", v)
	}
	return n, nil
}

// listParam accepts repeated keys and comma-separated values.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
