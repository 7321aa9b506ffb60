package utils

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ResponseJSON writes the envelope with a custom status code.
func ResponseJSON(w http.ResponseWriter, code int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, Response{Status: true, Message: message, Data: data})
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, Response{Status: true, Message: message, Data: data})
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errors any) {
	ResponseJSON(w, http.StatusBadRequest, Response{Message: message, Kind: "invalid_input", Errors: errors})
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, Response{Message: message, Kind: "not_found"})
}

// returns 409 Conflict; data carries the reservations that caused it, if any
func ResponseConflict(w http.ResponseWriter, kind, message string, data any) {
	ResponseJSON(w, http.StatusConflict, Response{Message: message, Kind: kind, Data: data})
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusTooManyRequests, Response{Message: message, Kind: "rate_limited"})
}

// KindInternal marks failures that are not attributable to the store, such as recovered panics.
const KindInternal = "internal"

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, kind, message string) {
	ResponseJSON(w, http.StatusInternalServerError, Response{Message: message, Kind: kind})
}
