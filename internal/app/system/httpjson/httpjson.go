// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON response envelope shared by all API
// handlers.
//
// Every response has the shape:
//
//	{ "success": true,  "message": "...", "data": {...} }
//	{ "success": false, "message": "...", "error": {"type": "...", "details": {...}} }
//
// Validation failures carry a machine-readable error type plus enough
// detail (offending IDs, current limits) for the caller to self-correct.
// Infrastructure failures go through ServerError, which never leaks
// internals to the client.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; registration payloads are tiny.
const maxBodyBytes = 1 << 20 // 1 MB

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the structured error payload for failed requests.
type ErrorBody struct {
	Type    string      `json:"type"`
	Details interface{} `json:"details,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a success envelope with the given status, message, and data.
func OK(w http.ResponseWriter, status int, message string, data interface{}) {
	write(w, status, envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope without a typed error body.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Message: message})
}

// FailTyped writes a failure envelope with a machine-readable error type
// and optional details.
func FailTyped(w http.ResponseWriter, status int, message, errType string, details interface{}) {
	write(w, status, envelope{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Type: errType, Details: details},
	})
}

// ServerError logs the underlying error and returns an opaque 500 to the
// client.
func ServerError(w http.ResponseWriter, log *zap.Logger, operation string, err error) {
	if log != nil {
		log.Error(operation, zap.Error(err))
	}
	Fail(w, http.StatusInternalServerError, "server error")
}

// Decode reads a JSON request body into dst, enforcing the size cap and
// rejecting trailing garbage.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
