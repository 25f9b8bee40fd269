package tracker

import "github.com/bfp-echague/firetrack/core/schema"

// The create schemas below are the single source of truth for each
// resource's body contract. Update and batch schemas are derived from
// them mechanically, never written by hand.

var barangayUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"}
	},
	"required": ["name"],
	"additionalProperties": false
}`)

var categoryUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"severity": {"type": "integer"}
	},
	"required": ["name", "severity"],
	"additionalProperties": false
}`)

var causeUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"}
	},
	"required": ["name"],
	"additionalProperties": false
}`)

var incidentUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"location": {
			"type": "object",
			"properties": {
				"latitude": {"type": "string"},
				"longitude": {"type": "string"}
			},
			"required": ["latitude", "longitude"],
			"additionalProperties": false
		},
		"barangayId": {"type": "integer"},
		"causes": {"type": "array", "items": {"type": "string"}},
		"structuresInvolved": {"type": "array", "items": {"type": "string"}},
		"categoryId": {"type": "integer"},
		"reportTime": {"type": "string", "format": "date-time"},
		"responseTime": {"type": "string", "format": "date-time"},
		"fireOutTime": {"type": "string", "format": "date-time"},
		"notes": {"type": "string"},
		"archived": {"type": "boolean"}
	},
	"required": ["name", "location", "barangayId", "causes", "structuresInvolved", "categoryId"],
	"additionalProperties": false
}`)

var userUpsert = schema.MustUpsert(`{
	"type": "object",
	"properties": {
		"username": {"type": "string"},
		"email": {"type": "string"},
		"password": {"type": "string"},
		"privilege": {"enum": ["BASIC", "ADMIN"]}
	},
	"required": ["username", "email", "password", "privilege"],
	"additionalProperties": false
}`)
