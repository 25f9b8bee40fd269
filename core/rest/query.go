package rest

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bfp-echague/firetrack/core/schema"
)

// ParamKind selects the validator/coercer for one query parameter.
type ParamKind int

// all supported query parameter kinds
const (
	ParamString ParamKind = iota
	ParamInt
	ParamBool
	ParamTime
	ParamEnum
)

// QueryParam declares one named, independently optional query parameter of
// a resource. The declared list runs before the handler; coercion to typed
// values happens here and nowhere else.
type QueryParam struct {
	Name string
	Kind ParamKind
	// Enum lists the accepted values for ParamEnum parameters
	Enum []string
	// Positive rejects values below one for ParamInt parameters
	Positive bool
}

// Query holds the coerced query parameter values for one request. Handlers
// read typed values instead of raw strings.
type Query struct {
	values map[string]interface{}
}

// String returns the string parameter with the given name, if it was sent.
func (q Query) String(name string) (string, bool) {
	v, ok := q.values[name].(string)
	return v, ok
}

// Int returns the integer parameter with the given name, if it was sent.
func (q Query) Int(name string) (int64, bool) {
	v, ok := q.values[name].(int64)
	return v, ok
}

// Bool returns the boolean parameter with the given name, if it was sent.
func (q Query) Bool(name string) (bool, bool) {
	v, ok := q.values[name].(bool)
	return v, ok
}

// Time returns the timestamp parameter with the given name, if it was sent.
func (q Query) Time(name string) (time.Time, bool) {
	v, ok := q.values[name].(time.Time)
	return v, ok
}

func parseQuery(params []QueryParam, raw url.Values) (Query, []schema.Violation) {
	query := Query{values: map[string]interface{}{}}
	var violations []schema.Violation

	byName := make(map[string]QueryParam, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	for key, array := range raw {
		param, ok := byName[key]
		if !ok {
			violations = append(violations, schema.Violation{Field: key, Reason: "unknown query parameter"})
			continue
		}
		if len(array) > 1 {
			violations = append(violations, schema.Violation{Field: key, Reason: "parameter given more than once"})
			continue
		}
		value := array[0]

		switch param.Kind {
		case ParamString:
			query.values[key] = value

		case ParamInt:
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				violations = append(violations, schema.Violation{Field: key, Reason: "must be an integer"})
				continue
			}
			if param.Positive && n < 1 {
				violations = append(violations, schema.Violation{Field: key, Reason: "must be a positive integer"})
				continue
			}
			query.values[key] = n

		case ParamBool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				violations = append(violations, schema.Violation{Field: key, Reason: "must be a boolean"})
				continue
			}
			query.values[key] = b

		case ParamTime:
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				violations = append(violations, schema.Violation{Field: key, Reason: "must be an RFC 3339 timestamp"})
				continue
			}
			query.values[key] = t

		case ParamEnum:
			found := false
			for _, accepted := range param.Enum {
				if value == accepted {
					found = true
					break
				}
			}
			if !found {
				violations = append(violations, schema.Violation{Field: key, Reason: "not an accepted value"})
				continue
			}
			query.values[key] = value
		}
	}

	return query, violations
}

// common query parameter declarations shared by most resources

// SearchQueryParam declares the free-text name filter.
func SearchQueryParam() QueryParam {
	return QueryParam{Name: "search", Kind: ParamString}
}

// PageQueryParams declares the cursor pagination pair. Both values must
// be positive, a non-positive page size would reach storage as a broken
// LIMIT.
func PageQueryParams() []QueryParam {
	return []QueryParam{
		{Name: "cursorId", Kind: ParamInt, Positive: true},
		{Name: "pageSize", Kind: ParamInt, Positive: true},
	}
}
