package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
)

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: true, Message: apperrors.GetMessage(err)})
}

func statusOf(err error) int {
	switch {
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest
	case apperrors.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsDuplicateKey(err):
		return http.StatusConflict
	case apperrors.IsRemoteRejection(err):
		if code := apperrors.RemoteStatus(err); code > 0 {
			return code
		}
		return http.StatusBadGateway
	case apperrors.IsNetworkFailure(err):
		return http.StatusBadGateway
	case apperrors.IsStorageUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func invalid(msg string) error {
	return apperrors.WrapWithCode(apperrors.ErrInvalidInput, "invalid_input", msg)
}
