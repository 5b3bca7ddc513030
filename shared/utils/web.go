package utils

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/msgboard/msgboard/shared/api"
	"github.com/msgboard/msgboard/shared/errors"
	"github.com/msgboard/msgboard/shared/logger"
	"github.com/msgboard/msgboard/shared/validation"
)

const (
	malformedBodyMessage = "Request body is malformed."
	bodyTooLargeMessage  = "Request body is too large."
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// WriteError renders err as {"error":[...]} with the matching status code.
// Store details and unexpected errors are logged, never sent.
func WriteError(w http.ResponseWriter, err error) {
	err = classifyBodyError(err)

	var store *errors.StoreFailure
	switch {
	case stderrors.As(err, &store):
		logger.Log.Error("store failure", "write", store.Write, "error", store.Err)
	case !errors.IsTyped(err):
		logger.Log.Error("unexpected error", "error", err)
	}

	status, entries := errors.Describe(err)
	WriteJSON(w, status, api.ErrorResponse{Error: entries})
}

func classifyBodyError(err error) error {
	switch {
	case stderrors.Is(err, validation.ErrPayloadTooLarge):
		return &errors.ErrorWithStatusCode{
			Message:    bodyTooLargeMessage,
			StatusCode: http.StatusRequestEntityTooLarge,
			Scope:      validation.ScopeBody,
		}
	case stderrors.Is(err, validation.ErrMalformedBody):
		return &errors.ValidationError{Scope: validation.ScopeBody, Message: malformedBodyMessage}
	default:
		return err
	}
}
