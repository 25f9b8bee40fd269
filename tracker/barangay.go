package tracker

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/bfp-echague/firetrack/core/rest"
)

func decode[T any](body []byte) (*T, error) {
	value := new(T)
	if err := json.Unmarshal(body, value); err != nil {
		return nil, err
	}
	return value, nil
}

// BarangayTable builds the controller table for the barangay resource.
// Barangays support batch creation so the municipality's full list can be
// loaded in one request.
func BarangayTable(store Store) *rest.ControllerTable {
	return &rest.ControllerTable{
		QueryParams: []rest.QueryParam{rest.SearchQueryParam()},

		Get: rest.GeneralGet(func(r *http.Request) (interface{}, error) {
			return store.Barangay(r.Context(), rest.PathID(r))
		}),

		GetMany: rest.GeneralGetMany(func(r *http.Request, q rest.Query) (interface{}, error) {
			search, _ := q.String("search")
			return store.Barangays(r.Context(), search)
		}),

		Post: rest.GeneralPost(barangayUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			input, err := decode[BarangayInput](body)
			if err != nil {
				return nil, err
			}
			return store.CreateBarangay(r.Context(), *input)
		}),

		PutMany: rest.GeneralPutMany(barangayUpsert, func(r *http.Request, q rest.Query, body []byte) (interface{}, error) {
			inputs, err := decode[[]BarangayInput](body)
			if err != nil {
				return nil, err
			}
			return store.CreateBarangays(r.Context(), *inputs)
		}),

		Patch: rest.GeneralPatch(barangayUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			patch, err := decode[BarangayPatch](body)
			if err != nil {
				return nil, err
			}
			return store.UpdateBarangay(r.Context(), rest.PathID(r), *patch)
		}),

		Delete: rest.GeneralDelete(func(r *http.Request) (interface{}, error) {
			return store.DeleteBarangay(r.Context(), rest.PathID(r))
		}),
	}
}
