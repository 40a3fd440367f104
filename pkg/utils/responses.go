package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ResponseJSON writes payload's top-level fields next to "success".
// payload must marshal to a JSON object (struct or map) or be nil.
func ResponseJSON(w http.ResponseWriter, code int, payload any) {
	body := map[string]json.RawMessage{}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			ResponseError(w, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			ResponseError(w, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
	}
	body["success"] = json.RawMessage("true")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

// ResponseError writes the failure envelope with the given status.
func ResponseError(w http.ResponseWriter, code int, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusOK, payload)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, payload any) {
	ResponseJSON(w, http.StatusCreated, payload)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, details any) {
	ResponseError(w, http.StatusBadRequest, message, details)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusNotFound, message, nil)
}

// returns 409 Conflict
func ResponseConflict(w http.ResponseWriter, message string, details any) {
	ResponseError(w, http.StatusConflict, message, details)
}

// returns 429 Too Many Requests
func ResponseTooManyRequests(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusTooManyRequests, message, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusInternalServerError, message, nil)
}

// returns 503 Service Unavailable
func ResponseServiceUnavailable(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusServiceUnavailable, message, nil)
}

// returns 504 Gateway Timeout
func ResponseTimeout(w http.ResponseWriter, message string) {
	ResponseError(w, http.StatusGatewayTimeout, message, nil)
}
