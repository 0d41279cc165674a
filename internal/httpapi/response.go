package httpapi

import (
	"encoding/json"
	"net/http"

	cerrors "github.com/standardbeagle/codelens/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusForKind maps an error taxonomy kind to the status code spec.md
// §6 assigns it. Kinds the HTTP surface never generates (CacheError,
// which is always recovered internally before reaching an adapter)
// fall through to 500.
func statusForKind(k cerrors.Kind) int {
	switch k {
	case cerrors.KindInvalidRequest:
		return http.StatusBadRequest
	case cerrors.KindNotFound:
		return http.StatusNotFound
	case cerrors.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case cerrors.KindTimeout:
		return http.StatusRequestTimeout
	case cerrors.KindIoError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError maps a service-layer error to an HTTP status
// and writes it, per the adapter-boundary error mapping spec.md §7
// requires ("The dispatch layer maps typed errors to protocol-specific
// encodings once, at the adapter boundary").
func respondServiceError(w http.ResponseWriter, err error) {
	if ce, ok := err.(*cerrors.CodelensError); ok {
		respondError(w, statusForKind(ce.Kind), ce.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
