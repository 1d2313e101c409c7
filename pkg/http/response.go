package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "docbook/pkg/errors"
)

const internalMessage = "Internal server error"

// WriteJSON writes data as the bare response body. The body is encoded
// before the status goes out, so an unencodable value becomes a 500.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		writeText(w, http.StatusInternalServerError, internalMessage)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteError answers with the AppError's message as plain text, which the
// patient client shows verbatim. Internal errors and anything that is not
// an AppError never expose their text.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		writeText(w, http.StatusInternalServerError, internalMessage)
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal {
		message = internalMessage
	}
	writeText(w, status, message)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// DecodeJSON reads exactly one JSON value from the body into target.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &apperrors.AppError{
				Code:       apperrors.CodeInvalidInput,
				Message:    "Request body too large",
				HTTPStatus: http.StatusRequestEntityTooLarge,
			}
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is empty")
		default:
			return apperrors.InvalidInput("Invalid JSON body")
		}
	}
	if dec.More() {
		return apperrors.InvalidInput("Request body must hold a single JSON object")
	}
	return nil
}
