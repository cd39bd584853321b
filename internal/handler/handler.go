package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apperrors "github.com/aldisetia/obligation-engine/pkg/errors"
	"github.com/aldisetia/obligation-engine/pkg/response"
)

// userIDHeader carries the authenticated owner, resolved by the auth gateway
// in front of this service. Handlers thread it explicitly into every service
// call; there is no ambient current-user state.
const userIDHeader = "X-User-ID"

var errMissingIdentity = errors.New("missing or invalid " + userIDHeader + " header")

func callerID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return uuid.Nil, errMissingIdentity
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errMissingIdentity
	}
	return id, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// writeError maps the service error taxonomy onto HTTP status codes. Foreign
// ownership always surfaces as not-found so other users' records never leak.
func writeError(w http.ResponseWriter, err error) {
	var domainErr *apperrors.DomainError
	message := err.Error()
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	switch {
	case apperrors.IsValidation(err):
		response.UnprocessableEntity(w, message, err)
	case apperrors.IsNotFound(err):
		response.NotFound(w, message)
	case apperrors.IsConflict(err):
		response.Conflict(w, message)
	default:
		response.InternalServerError(w, "internal error", err)
	}
}
