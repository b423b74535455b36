package restapi

import (
	"context"
	"log/slog"
	"net/http"

	"tracker.transitlive.org/internal/logging"
	"tracker.transitlive.org/internal/models"
	"tracker.transitlive.org/internal/report"
	"tracker.transitlive.org/internal/utils"
)

func (api *RestAPI) trainDataHandler(w http.ResponseWriter, r *http.Request) {
	api.serveDataset(w, r, "train", api.Source.TrainVehicles)
}

func (api *RestAPI) busDataHandler(w http.ResponseWriter, r *http.Request) {
	api.serveDataset(w, r, "bus", api.Source.BusVehicles)
}

type datasetFetch func(ctx context.Context) ([]models.EnrichedVehicle, error)

// serveDataset runs the pipeline (or serves the cached snapshot) and shapes
// the response. A pipeline failure surfaces as 500 with a generic message;
// the previous snapshot, if any, stays cached for the next request.
func (api *RestAPI) serveDataset(w http.ResponseWriter, r *http.Request, dataset string, fetch datasetFetch) {
	vehicles, err := fetch(r.Context())
	if err != nil {
		logging.LogError(logging.FromContext(r.Context()), "pipeline run failed", err, slog.String("dataset", dataset))
		report.CaptureError(err)
		api.sendError(w, r, http.StatusInternalServerError, "failed to fetch vehicle data")
		return
	}

	if bboxParam := r.URL.Query().Get("bbox"); bboxParam != "" {
		bounds, err := utils.ParseBounds(bboxParam)
		if err != nil {
			api.sendError(w, r, http.StatusBadRequest, "invalid bbox: expected swLat,swLon,neLat,neLon")
			return
		}
		vehicles = filterViewport(vehicles, bounds)
	}

	if r.URL.Query().Get("geometry") == "points" {
		api.sendJSON(w, r, decodeGeometries(vehicles))
		return
	}
	api.sendJSON(w, r, vehicles)
}

// decodeGeometries renders the snapshot with polylines expanded into
// [lat, lon] pairs, for clients without a polyline decoder.
func decodeGeometries(vehicles []models.EnrichedVehicle) []models.DecodedVehicle {
	decoded := make([]models.DecodedVehicle, len(vehicles))
	for i, v := range vehicles {
		decoded[i] = models.DecodedVehicle{
			Lat:         v.Lat,
			Lon:         v.Lon,
			Speed:       v.Speed,
			Heading:     v.Heading,
			Headsign:    v.Headsign,
			ShortName:   v.ShortName,
			Delay:       v.Delay,
			RoutePoints: utils.DecodeGeometry(v.Route),
			Start:       v.Start,
			Timetable:   v.Timetable,
		}
	}
	return decoded
}
