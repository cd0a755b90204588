package httpapi

import (
	"errors"
	"net/http"

	"github.com/tinoosan/wallet/internal/errs"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErr(w, http.StatusBadRequest, msg, "invalid")
}

// writeDomainErr maps the service sentinel taxonomy onto HTTP. A failed
// decrypt deliberately carries no detail about whether the passphrase was
// wrong or the blob corrupt.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, "invalid request", "invalid")
	case errors.Is(err, errs.ErrNotFound):
		writeErr(w, http.StatusNotFound, "wallet not found", "not_found")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, "wallet already exists", "conflict")
	case errors.Is(err, errs.ErrDecrypt):
		writeErr(w, http.StatusForbidden, "could not open wallet", "decrypt_failed")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "storage")
	}
}
