// internal/workers/review-reply/generate-reply/models.go
package generatereply

import "review-responder/internal/models"

type Input struct {
	ReviewText string `json:"reviewText"`
	AuthorName string `json:"authorName,omitempty"`
}

type Output struct {
	DraftReply    string           `json:"draftReply"`
	Sentiment     models.Sentiment `json:"sentiment"`
	PromptVersion string           `json:"promptVersion"`
}

// Request sources, used as a metric label.
const (
	SourceHTTP  = "http"
	SourceZeebe = "zeebe"
)
