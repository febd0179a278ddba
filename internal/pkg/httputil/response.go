package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/openmusic/playlists-api/internal/domain"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("httputil")

// Envelope wraps every response body.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("json encode failed", "error", err)
	}
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Status: "success", Data: data})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Status: "success", Message: message, Data: data})
}

// Message writes a 200 success envelope carrying only a message.
func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Status: "success", Message: message})
}

// Fail writes a client error envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: "fail", Message: message})
}

func BadRequest(w http.ResponseWriter, message string) { Fail(w, http.StatusBadRequest, message) }

func Unauthorized(w http.ResponseWriter, message string) { Fail(w, http.StatusUnauthorized, message) }

// InternalError logs err and writes a generic 500.
func InternalError(w http.ResponseWriter, err error) {
	log.Error("internal error", "error", err)
	JSON(w, http.StatusInternalServerError, Envelope{Status: "error", Message: "internal server error"})
}

// StatusFor maps an error from the service layer to an HTTP status.
func StatusFor(err error) int {
	var de *domain.DeliveryError
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &de):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var publicMessages = map[int]string{
	http.StatusForbidden: "you are not allowed to access this resource",
	http.StatusNotFound:  "resource not found",
	http.StatusConflict:  "resource already exists",
}

// ServiceError writes the response for a service error. The full error is
// logged; clients get a fixed message per status. Validation failures keep
// their own text without the wrapped chain.
func ServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		InternalError(w, err)
	case status >= 500:
		log.Warn("dependency unavailable", "status", status, "error", err)
		JSON(w, status, Envelope{Status: "error", Message: "service temporarily unavailable, retry later"})
	case status == http.StatusBadRequest:
		log.Info("request rejected", "status", status, "error", err)
		Fail(w, status, validationMessage(err))
	default:
		log.Info("request rejected", "status", status, "error", err)
		Fail(w, status, publicMessages[status])
	}
}

// validationMessage is the outermost message of an ErrInvalid chain.
func validationMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+domain.ErrInvalid.Error())
	if msg == "" || msg == domain.ErrInvalid.Error() {
		return "invalid request"
	}
	return msg
}

// Decode reads a JSON body into dst, rejecting unknown fields. It writes a 400
// and returns false on failure.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
