package rest

import (
	"io"
	"net/http"
	"reflect"

	"github.com/bfp-echague/firetrack/core/schema"
)

// GetFunc fetches one record for the request's path id. A nil result with a
// nil error means the id does not exist.
type GetFunc func(r *http.Request) (interface{}, error)

// ListFunc fetches a plain collection for the validated query.
type ListFunc func(r *http.Request, q Query) (interface{}, error)

// PagedListFunc fetches one cursor page for the validated query.
type PagedListFunc func(r *http.Request, q Query) (*PagedResult, error)

// BodyFunc runs a create or update with the schema-validated request body.
type BodyFunc func(r *http.Request, body []byte) (interface{}, error)

// QueryBodyFunc runs a batch create with the validated query and body.
type QueryBodyFunc func(r *http.Request, q Query, body []byte) (interface{}, error)

// QueryHandler is a handler that additionally receives the coerced query.
type QueryHandler func(w http.ResponseWriter, r *http.Request, q Query)

// ControllerTable is the declarative bundle implementing one resource's
// HTTP surface: up to six operation slots plus the resource's query
// parameter validators. Tables are built once at startup from the general
// factories below and are immutable afterwards, safe for concurrent use.
type ControllerTable struct {
	QueryParams []QueryParam

	Get     http.HandlerFunc
	GetMany QueryHandler
	Post    http.HandlerFunc
	PutMany QueryHandler
	Patch   http.HandlerFunc
	Delete  http.HandlerFunc
}

const noneFoundMessage = "No results found, but here's an empty list anyway"

// GeneralGet builds a get-one handler from a fetch closure.
func GeneralGet(fetchOne GetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fetchOne(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if isNil(result) {
			WriteError(w, r, ErrNotFoundID)
			return
		}
		Success(result).Write(w)
	}
}

// GeneralGetMany builds a plain list handler from a fetch closure. An empty
// result is not an error, it is a success with an empty list.
func GeneralGetMany(fetchMany ListFunc) QueryHandler {
	return func(w http.ResponseWriter, r *http.Request, q Query) {
		result, err := fetchMany(r, q)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if sliceLen(result) == 0 {
			SuccessMessage([]interface{}{}, noneFoundMessage).Write(w)
			return
		}
		Success(result).Write(w)
	}
}

// GeneralGetManyPaged builds a cursor-paged list handler from a fetch
// closure. An empty page is a success with an empty page and a null cursor.
func GeneralGetManyPaged(fetchMany PagedListFunc) QueryHandler {
	return func(w http.ResponseWriter, r *http.Request, q Query) {
		result, err := fetchMany(r, q)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if sliceLen(result.Data) == 0 {
			SuccessMessage(PagedResult{Data: []interface{}{}}, noneFoundMessage).Write(w)
			return
		}
		Success(result).Write(w)
	}
}

// GeneralPost builds a create handler: the body is validated against the
// resource's create schema before the closure runs.
func GeneralPost(upsert *schema.Upsert, create BodyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, apiErr := validatedBody(r, upsert.ValidateCreate)
		if apiErr != nil {
			WriteError(w, r, apiErr)
			return
		}
		result, err := create(r, body)
		if err != nil {
			WriteError(w, r, upsertError(err))
			return
		}
		Success(result).Write(w)
	}
}

// GeneralPatch builds a partial-update handler: the body is validated
// against the mechanically derived update schema.
func GeneralPatch(upsert *schema.Upsert, update BodyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, apiErr := validatedBody(r, upsert.ValidateUpdate)
		if apiErr != nil {
			WriteError(w, r, apiErr)
			return
		}
		result, err := update(r, body)
		if err != nil {
			WriteError(w, r, upsertError(err))
			return
		}
		Success(result).Write(w)
	}
}

// GeneralPutMany builds a batch-create handler: the body is validated
// against the derived batch schema, an array of create-shaped objects.
func GeneralPutMany(upsert *schema.Upsert, createMany QueryBodyFunc) QueryHandler {
	return func(w http.ResponseWriter, r *http.Request, q Query) {
		body, apiErr := validatedBody(r, upsert.ValidateBatch)
		if apiErr != nil {
			WriteError(w, r, apiErr)
			return
		}
		result, err := createMany(r, q, body)
		if err != nil {
			WriteError(w, r, upsertError(err))
			return
		}
		Success(result).Write(w)
	}
}

// GeneralDelete builds a delete handler from a delete closure.
func GeneralDelete(deleteOne GetFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := deleteOne(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		if isNil(result) {
			WriteError(w, r, ErrNotFoundID)
			return
		}
		Success(result).Write(w)
	}
}

// ValidatedCreateBody reads the request body and validates it against the
// create schema. It serves handlers that live outside a controller table,
// e.g. login.
func ValidatedCreateBody(r *http.Request, upsert *schema.Upsert) ([]byte, *Error) {
	return validatedBody(r, upsert.ValidateCreate)
}

func validatedBody(r *http.Request, validate func([]byte) ([]schema.Violation, error)) ([]byte, *Error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, NewError("invalidJson", "Your JSON is invalid.")
	}
	violations, err := validate(body)
	if err != nil {
		return nil, NewErrorInfo("invalidJson", "Your JSON is invalid.",
			map[string]string{"syntaxMessage": err.Error()})
	}
	if len(violations) > 0 {
		return nil, NewErrorInfo("invalidJSONFormat", "Your JSON is not formatted correctly.", violations)
	}
	return body, nil
}

func isNil(result interface{}) bool {
	if result == nil {
		return true
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

func sliceLen(result interface{}) int {
	if result == nil {
		return 0
	}
	v := reflect.ValueOf(result)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 1
}
