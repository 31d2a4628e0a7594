// Package httpjson provides small helpers for writing JSON API responses.
// Every endpoint in the service responds with JSON; errors use a uniform
// {"error": "...", "detail": "..."} envelope so clients have one shape
// to handle.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/tenderinsight/hub/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK encodes v as JSON with status 200.
func OK(w http.ResponseWriter, v interface{}) {
	Write(w, http.StatusOK, v)
}

// Created encodes v as JSON with status 201.
func Created(w http.ResponseWriter, v interface{}) {
	Write(w, http.StatusCreated, v)
}

// Error writes the error envelope with the given status.
func Error(w http.ResponseWriter, status int, msg, detail string) {
	Write(w, status, errorBody{Error: msg, Detail: detail})
}

// BadRequest writes a 400 error envelope.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg, "")
}

// NotFound writes a 404 error envelope.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg, "")
}

// ServerError logs the underlying error and writes a 500 envelope with a
// generic message. Internal details never reach the client.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	if log != nil {
		log.Error(op, zap.Error(err))
	}
	Error(w, http.StatusInternalServerError, "internal server error", "")
}

// Decode decodes the request body into v, rejecting unknown fields.
// On failure it writes a 400 response and returns false. Bodies are
// capped at limits.MaxJSONBody.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
