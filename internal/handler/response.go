package handler

import (
	"encoding/json"
	"net/http"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type errorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Error   apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{
		Status:  "error",
		Message: message,
		Error: apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}
