package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// APIErrorDetail is one entry in an error response body. Code is a stable
// machine-readable identifier; Detail is text for the operator.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse is the JSON envelope every error response uses.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError sends a JSON error body with the given HTTP status.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{Errors: []APIErrorDetail{{
		Code:   code,
		Status: strconv.Itoa(httpStatus),
		Detail: detail,
	}}}
	_ = json.NewEncoder(w).Encode(resp)
}
