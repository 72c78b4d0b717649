// internal/workers/review-reply/analyze-review/schema.go
package analyzereview

import "review-responder/internal/common/validation"

// analysisSchema describes the object the analysis prompt asks for. Nullable
// fields may also be omitted. Sentiment values are checked by ParseSentiment.
var analysisSchema = validation.NewSchema("analysis", `{
	"type": "object",
	"required": ["sentiment", "allPoints", "nameClassification"],
	"properties": {
		"sentiment": {"type": "string"},
		"allPoints": {
			"type": "array",
			"items": {"type": "string"}
		},
		"mainPositivePoint": {"type": ["string", "null"]},
		"mainNegativePoint": {"type": ["string", "null"]},
		"greetingName": {"type": ["string", "null"]},
		"nameClassification": {"type": "string"}
	}
}`).MustCompile()
