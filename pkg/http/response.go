package http

import (
	"encoding/json"
	"net/http"

	apperrors "slotbook/pkg/errors"
)

// Result is the uniform outcome shape for mutating operations:
// {"success": true} or {"success": false, "error": ..., "code": ...}.
type Result struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteResult reports a successful state transition.
func WriteResult(w http.ResponseWriter) error {
	return WriteJSON(w, http.StatusOK, Result{Success: true})
}

// WriteError renders any error as a failed Result. AppErrors keep their
// code and status; anything else collapses to an opaque internal error.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	result := Result{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		result.Error = "Internal server error"
		result.Details = nil
	}

	return WriteJSON(w, appErr.HTTPStatus, result)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}
