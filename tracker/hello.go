package tracker

import (
	"net/http"

	"github.com/bfp-echague/firetrack/core/rest"
)

// HelloTable serves the API root with a friendly pointer for lost visitors.
func HelloTable() *rest.ControllerTable {
	return &rest.ControllerTable{
		GetMany: func(w http.ResponseWriter, r *http.Request, q rest.Query) {
			rest.SuccessMessage(nil,
				"Hello there, welcome to the API! Are you lost? Check the wiki!").Write(w)
		},
	}
}
