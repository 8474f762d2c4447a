// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MsgMalformedBody answers bodies that are not valid JSON.
const MsgMalformedBody = "Malformed request body"

// messageBody is the JSON shape of every non-field error.
type messageBody struct {
	Message string `json:"message"`
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.UserNotFound, apperr.BoardNotFound, apperr.TaskNotFound, apperr.ItemNotFound:
		return http.StatusNotFound
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, messageBody{Message: msg})
}

// WriteError translates err into a status code and body. Field validation
// failures answer with a field -> message map; everything else answers
// {"message": ...}. Internal errors never expose their cause.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(apperr.KindOf(err))
	if fields := apperr.FieldsOf(err); fields != nil {
		WriteJSON(w, status, fields)
		return
	}
	WriteMessage(w, status, apperr.MessageOf(err))
}

// DecodeJSON reads a JSON request body into v. Any decoding failure is an
// InvalidArgument error with MsgMalformedBody.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.New(apperr.InvalidArgument, MsgMalformedBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidArgument, MsgMalformedBody, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return apperr.New(apperr.InvalidArgument, MsgMalformedBody)
	}
	return nil
}
