package restapi

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Ready       bool   `json:"ready"`
}

// healthHandler reports liveness. The service is ready once its vehicle
// source is wired; upstream reachability is deliberately not probed here,
// that is what the data endpoints and their metrics are for.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	setJSONResponseType(w)

	ready := api.Source != nil
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:      "available",
		Environment: api.Env,
		Version:     api.Version,
		Ready:       ready,
	})
}
