package tracker

import (
	"net/http"

	"github.com/bfp-echague/firetrack/core/rest"
)

// CategoryTable builds the controller table for the category resource.
func CategoryTable(store Store) *rest.ControllerTable {
	return &rest.ControllerTable{
		QueryParams: []rest.QueryParam{rest.SearchQueryParam()},

		Get: rest.GeneralGet(func(r *http.Request) (interface{}, error) {
			return store.Category(r.Context(), rest.PathID(r))
		}),

		GetMany: rest.GeneralGetMany(func(r *http.Request, q rest.Query) (interface{}, error) {
			search, _ := q.String("search")
			return store.Categories(r.Context(), search)
		}),

		Post: rest.GeneralPost(categoryUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			input, err := decode[CategoryInput](body)
			if err != nil {
				return nil, err
			}
			return store.CreateCategory(r.Context(), *input)
		}),

		Patch: rest.GeneralPatch(categoryUpsert, func(r *http.Request, body []byte) (interface{}, error) {
			patch, err := decode[CategoryPatch](body)
			if err != nil {
				return nil, err
			}
			return store.UpdateCategory(r.Context(), rest.PathID(r), *patch)
		}),

		Delete: rest.GeneralDelete(func(r *http.Request) (interface{}, error) {
			return store.DeleteCategory(r.Context(), rest.PathID(r))
		}),
	}
}
