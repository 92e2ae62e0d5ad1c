package core

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the standard JSON envelope for API responses.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries machine-readable and human-readable error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// JSON writes data inside the standard envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, JSONResponse{Data: data})
}

// Error writes an HTTPError inside the standard envelope.
func Error(w http.ResponseWriter, httpErr HTTPError) {
	writeJSON(w, httpErr.Code, JSONResponse{
		Error: &ErrorDetail{Code: httpErr.Key, Message: httpErr.Message},
	})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
