// internal/api/schema.go
package api

import "review-responder/internal/common/validation"

var responderRequestSchema = validation.NewSchema("responder-request", `{
	"type": "object",
	"required": ["reviewText"],
	"properties": {
		"reviewText": {"type": "string"},
		"authorName": {"type": ["string", "null"]}
	}
}`).MustCompile()
