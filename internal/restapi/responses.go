package restapi

import (
	"encoding/json"
	"net/http"

	"tracker.transitlive.org/internal/logging"
	"tracker.transitlive.org/internal/models"
)

func setJSONResponseType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func (api *RestAPI) sendJSON(w http.ResponseWriter, r *http.Request, payload any) {
	setJSONResponseType(w)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.LogError(api.Logger, "encoding response failed", err)
	}
}

func (api *RestAPI) sendError(w http.ResponseWriter, r *http.Request, code int, message string) {
	sendError(w, code, message)
}

// sendError is the method's dependency-free form, for middleware that runs
// before a RestAPI is in scope.
func sendError(w http.ResponseWriter, code int, message string) {
	setJSONResponseType(w)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
