package schema

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is a single validation failure, a field path plus the reason
// the field was rejected.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Reason
}

// Upsert owns the compiled validation schemas for one resource.
//
// The resource author writes a single create schema as a JSON-schema
// document. The update schema (every top-level field optional) and the
// batch schema (array of create) are derived mechanically from it, so the
// three can never drift apart.
type Upsert struct {
	create *gojsonschema.Schema
	update *gojsonschema.Schema
	batch  *gojsonschema.Schema
}

// NewUpsert compiles the given create schema document and derives the
// update and batch schemas from it.
func NewUpsert(createSchema string) (*Upsert, error) {
	var createDoc map[string]interface{}
	if err := json.Unmarshal([]byte(createSchema), &createDoc); err != nil {
		return nil, fmt.Errorf("parse error in create schema: %w", err)
	}

	updateDoc, err := copyDoc(createDoc)
	if err != nil {
		return nil, err
	}
	// the update schema is the create schema with nothing required
	delete(updateDoc, "required")

	itemDoc, err := copyDoc(createDoc)
	if err != nil {
		return nil, err
	}
	delete(itemDoc, "$id")
	batchDoc := map[string]interface{}{
		"type":  "array",
		"items": itemDoc,
	}

	u := Upsert{}
	if u.create, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(createDoc)); err != nil {
		return nil, fmt.Errorf("cannot compile create schema: %w", err)
	}
	if u.update, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(updateDoc)); err != nil {
		return nil, fmt.Errorf("cannot compile update schema: %w", err)
	}
	if u.batch, err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(batchDoc)); err != nil {
		return nil, fmt.Errorf("cannot compile batch schema: %w", err)
	}
	return &u, nil
}

// MustUpsert is like NewUpsert but panics on an invalid schema. Resource
// schemas are compile-time constants, an invalid one is a configuration error.
func MustUpsert(createSchema string) *Upsert {
	u, err := NewUpsert(createSchema)
	if err != nil {
		panic(err)
	}
	return u
}

// ValidateCreate validates a raw request body against the create schema.
// It returns the list of violations, empty if the body is valid, or an
// error if the body is not valid JSON at all.
func (u *Upsert) ValidateCreate(raw []byte) ([]Violation, error) {
	return validate(u.create, raw)
}

// ValidateUpdate validates a raw request body against the derived update
// schema, where every top-level field is optional.
func (u *Upsert) ValidateUpdate(raw []byte) ([]Violation, error) {
	return validate(u.update, raw)
}

// ValidateBatch validates a raw request body against the derived batch
// schema, an array whose elements each satisfy the create schema.
func (u *Upsert) ValidateBatch(raw []byte) ([]Violation, error) {
	return validate(u.batch, raw)
}

func validate(schema *gojsonschema.Schema, raw []byte) ([]Violation, error) {
	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, err
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]Violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, Violation{Field: e.Field(), Reason: e.Description()})
	}
	return violations, nil
}

func copyDoc(doc map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
