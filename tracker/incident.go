package tracker

import (
	"net/http"
	"strconv"

	"github.com/bfp-echague/firetrack/core/rest"
)

func validateAxis(axis string) error {
	if _, err := strconv.ParseFloat(axis, 64); err != nil {
		return rest.NewError("invalidLocationAxis", "Location axes must be decimal numbers.")
	}
	return nil
}

func validateLocation(location Location) error {
	if err := validateAxis(location.Latitude); err != nil {
		return err
	}
	return validateAxis(location.Longitude)
}

// IncidentTable builds the controller table for the incident resource.
// The listing is cursor paged; incidents cannot be deleted, only archived
// through PATCH.
func IncidentTable(store Store) *rest.ControllerTable {
	queryParams := append(rest.PageQueryParams(),
		rest.SearchQueryParam(),
		rest.QueryParam{Name: "includeArchived", Kind: rest.ParamBool},
	)

	return &rest.ControllerTable{
		QueryParams: queryParams,

		Get: rest.GeneralGet(func(r *http.Request) (interface{}, error) {
			return store.Incident(r.Context(), rest.PathID(r))
		}),

		GetMany: rest.GeneralGetManyPaged(func(r *http.Request, q rest.Query) (*rest.PagedResult, error) {
			options := rest.Paginate(q)
			filter := IncidentFilter{}
			filter.Search, _ = q.String("search")
			filter.IncludeArchived, _ = q.Bool("includeArchived")

			incidents, err := store.Incidents(r.Context(), filter, options)
			if err != nil {
				return nil, err
			}

			var lastID int64
			if len(incidents) > 0 {
				lastID = incidents[len(incidents)-1].ID
			}
			return &rest.PagedResult{
				Data:     incidents,
				PageInfo: options.PageInfo(len(incidents), lastID),
			}, nil
		}),

		Post: rest.GeneralPost(incidentUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			input, err := decode[IncidentInput](body)
			if err != nil {
				return nil, err
			}
			if err := validateLocation(input.Location); err != nil {
				return nil, err
			}
			return store.CreateIncident(r.Context(), *input)
		}),

		Patch: rest.GeneralPatch(incidentUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			patch, err := decode[IncidentPatch](body)
			if err != nil {
				return nil, err
			}
			if patch.Location != nil {
				if err := validateLocation(Location{
					Latitude:  *patch.Location.Latitude,
					Longitude: *patch.Location.Longitude,
				}); err != nil {
					return nil, err
				}
			}
			return store.UpdateIncident(r.Context(), rest.PathID(r), *patch)
		}),

		Delete: func(w http.ResponseWriter, r *http.Request) {
			rest.WriteError(w, r, rest.NewError("cannotDeleteIncident",
				"You cannot delete incidents, only archive them. "+
					"You can instead send a PATCH request with {'archived': true}."))
		},
	}
}
