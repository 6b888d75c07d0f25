package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/rentkeeper/internal/api"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: code, Message: message})
}

// statusFor maps service errors onto the wire contract. Unknown errors are
// internal and their text is not exposed.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, common.ErrorIncorrectMetadata), errors.Is(err, common.ErrorUnknownCategory):
		return http.StatusBadRequest, api.CodeValidation, err.Error()
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, api.CodeForbidden, "access to this entity is forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, api.CodeNotFound, err.Error()
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, api.CodeConflict, err.Error()
	case errors.Is(err, common.ErrorExpired):
		return http.StatusGone, api.CodeExpired, err.Error()
	default:
		return http.StatusInternalServerError, api.CodeInternal, "internal error"
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
