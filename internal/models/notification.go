// internal/models/notification.go
package models

// Escalation statuses.
const (
	EscalationSent     = "sent"
	EscalationFailed   = "failed"
	EscalationDisabled = "disabled"
	EscalationSkipped  = "skipped"
)

// Escalation channels.
const (
	ChannelEmail = "email"
	ChannelTopic = "sns"
)

// Escalation is a negative or mixed review forwarded to the quality team
// together with the reply that was drafted for it.
type Escalation struct {
	ID                string    `json:"id"`
	BusinessName      string    `json:"businessName"`
	Sentiment         Sentiment `json:"sentiment"`
	ReviewText        string    `json:"reviewText"`
	AuthorName        string    `json:"authorName,omitempty"`
	MainNegativePoint string    `json:"mainNegativePoint,omitempty"`
	DraftReply        string    `json:"draftReply"`
	CreatedAt         string    `json:"createdAt"`
}

// EscalationResult records what happened to one escalation.
type EscalationResult struct {
	ID       string   `json:"notificationId"`
	Status   string   `json:"status"`
	Channels []string `json:"channels,omitempty"`
	SentAt   string   `json:"sentAt,omitempty"`
}
