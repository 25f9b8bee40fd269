package cluster

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/bfp-echague/firetrack/core/rest"
	"github.com/bfp-echague/firetrack/core/schema"
	"github.com/bfp-echague/firetrack/tracker"
)

// featureCount is the number of features per data point, latitude and
// longitude.
const featureCount = 2

// maxClusterCount caps the requested range; beyond it the analysis gets
// uselessly slow.
const maxClusterCount = 100

var settingsUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"clusterCountStart": {"type": "integer", "minimum": 1},
		"clusterCountEnd": {"type": ["integer", "null"]},
		"componentCount": {"type": ["integer", "null"]}
	},
	"required": ["clusterCountStart"],
	"additionalProperties": false
}`)

// Settings is the client-supplied clustering configuration. Null values
// resolve to defaults: componentCount to the feature count, and
// clusterCountEnd to clusterCountStart.
type Settings struct {
	ClusterCountStart int  `json:"clusterCountStart"`
	ClusterCountEnd   *int `json:"clusterCountEnd"`
	ComponentCount    *int `json:"componentCount"`
}

type resolvedSettings struct {
	ClusterCountStart int `json:"clusterCountStart"`
	ClusterCountEnd   int `json:"clusterCountEnd"`
	ComponentCount    int `json:"componentCount"`
}

func (s Settings) resolve() resolvedSettings {
	resolved := resolvedSettings{
		ClusterCountStart: s.ClusterCountStart,
		ClusterCountEnd:   s.ClusterCountStart,
		ComponentCount:    featureCount,
	}
	if s.ClusterCountEnd != nil {
		resolved.ClusterCountEnd = *s.ClusterCountEnd
	}
	if s.ComponentCount != nil {
		resolved.ComponentCount = *s.ComponentCount
	}
	return resolved
}

func (s resolvedSettings) validate(incidentCount int) error {
	if s.ClusterCountEnd > maxClusterCount {
		return rest.NewError("clusterCountEndTooLarge",
			"clusterCountEnd must be less than or equal to "+strconv.Itoa(maxClusterCount)+".")
	}
	if s.ComponentCount > featureCount {
		return rest.NewError("largeComponentCount",
			"componentCount must be less than or equal to amount of features.")
	}
	if s.ClusterCountStart > s.ClusterCountEnd {
		return rest.NewError("invalidClusterCountRange",
			"clusterCountStart must be less than or equal to clusterCountEnd.")
	}
	if s.ClusterCountEnd > incidentCount {
		return rest.NewError("clusterCountEndLargerThanIncidentCount",
			"clusterCountEnd must be less than or equal to the amount of incidents.")
	}
	return nil
}

// FinalResult merges the incident records with the service's analysis.
type FinalResult struct {
	Incidents           []tracker.Incident `json:"incidents"`
	ClusterResults      []ClusterResult    `json:"clusterResults"`
	OptimalClusterCount int                `json:"optimalClusterCount"`
}

// Table builds the controller table for the clustering endpoint, a single
// POST operation.
func Table(store tracker.Store, client *Client) *rest.ControllerTable {
	return &rest.ControllerTable{
		Post: func(w http.ResponseWriter, r *http.Request) {
			body, apiErr := rest.ValidatedCreateBody(r, settingsUpsert)
			if apiErr != nil {
				rest.WriteError(w, r, apiErr)
				return
			}
			var settings Settings
			if err := json.Unmarshal(body, &settings); err != nil {
				rest.WriteError(w, r, err)
				return
			}
			resolved := settings.resolve()

			incidents, err := store.AllIncidents(r.Context())
			if err != nil {
				rest.WriteError(w, r, err)
				return
			}
			if err := resolved.validate(len(incidents)); err != nil {
				rest.WriteError(w, r, err)
				return
			}

			request := Request{Settings: resolved, Data: make([]RequestPoint, 0, len(incidents))}
			for _, incident := range incidents {
				latitude, err := strconv.ParseFloat(incident.Location.Latitude, 64)
				if err != nil {
					rest.WriteError(w, r, err)
					return
				}
				longitude, err := strconv.ParseFloat(incident.Location.Longitude, 64)
				if err != nil {
					rest.WriteError(w, r, err)
					return
				}
				request.Data = append(request.Data, RequestPoint{
					ID:                incident.ID,
					LocationLatitude:  latitude,
					LocationLongitude: longitude,
				})
			}

			response, err := client.Cluster(r.Context(), request)
			if err != nil {
				rest.WriteError(w, r, err)
				return
			}

			rest.Success(FinalResult{
				Incidents:           incidents,
				ClusterResults:      response.ClusterResults,
				OptimalClusterCount: response.OptimalClusterCount,
			}).Write(w)
		},
	}
}
