package handler

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

// placeholderResponse stands in for charts when there is nothing to plot.
type placeholderResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writePlaceholder(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, placeholderResponse{Empty: true, Message: msg})
}
