package tracker

import (
	"net/http"

	"github.com/bfp-echague/firetrack/core/rest"
)

// CauseTable builds the controller table for the cause resource.
func CauseTable(store Store) *rest.ControllerTable {
	return &rest.ControllerTable{
		QueryParams: []rest.QueryParam{rest.SearchQueryParam()},

		Get: rest.GeneralGet(func(r *http.Request) (interface{}, error) {
			return store.Cause(r.Context(), rest.PathID(r))
		}),

		GetMany: rest.GeneralGetMany(func(r *http.Request, q rest.Query) (interface{}, error) {
			search, _ := q.String("search")
			return store.Causes(r.Context(), search)
		}),

		Post: rest.GeneralPost(causeUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			input, err := decode[CauseInput](body)
			if err != nil {
				return nil, err
			}
			return store.CreateCause(r.Context(), *input)
		}),

		Patch: rest.GeneralPatch(causeUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			patch, err := decode[CausePatch](body)
			if err != nil {
				return nil, err
			}
			return store.UpdateCause(r.Context(), rest.PathID(r), *patch)
		}),

		Delete: rest.GeneralDelete(func(r *http.Request) (interface{}, error) {
			return store.DeleteCause(r.Context(), rest.PathID(r))
		}),
	}
}
