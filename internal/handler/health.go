package handler

import (
	"net/http"
)

type datasetStatus struct {
	Available bool   `json:"available"`
	Rows      int    `json:"rows"`
	Reason    string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Dataset datasetStatus `json:"dataset"`
}

// Health always answers 200; a dataset that failed to load marks the
// service degraded rather than down.
func Health(src RowSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		rows, err := loadRows(src)
		if err != nil {
			resp.Status = "degraded"
			resp.Dataset.Reason = err.Error()
		} else {
			resp.Dataset = datasetStatus{Available: true, Rows: len(rows)}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
