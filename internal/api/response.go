package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusfound/campusfound/internal/model"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonSuccess writes a success envelope: {"success": true, ...fields}.
func jsonSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	jsonResponse(w, status, body)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]any{"success": false, "message": message})
}

// statusFor maps an error kind to its HTTP status. Conflicts are reported
// as 400 to match what clients already handle for duplicate submissions.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation, model.KindConflict:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	case model.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError classifies err and writes the matching error response.
// Internal errors are logged with full detail and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := model.KindOf(err)
	if kind == model.KindInternal {
		slog.Error("request failed",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	jsonError(w, statusFor(kind), model.MessageOf(err))
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return model.NewError(model.KindValidation, "invalid request body", err)
	}
	return nil
}

// validator is implemented by request structs.
type validator interface {
	validate() error
}

// decodeRequest decodes and validates a request body.
func decodeRequest(w http.ResponseWriter, r *http.Request, req validator) error {
	if err := decodeJSON(w, r, req); err != nil {
		return err
	}
	return req.validate()
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ValidationError(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// errForbidden is returned when a caller touches another user's item.
var errForbidden = model.NewError(model.KindForbidden, "insufficient permissions", errors.New("not the owner"))
