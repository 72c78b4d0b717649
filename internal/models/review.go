package models

import (
	"fmt"
	"strings"

	apperrors "review-responder/internal/common/errors"
)

// BusinessProfile is the fixed voice replies are written in. It is loaded
// once per process and shared read-only between requests.
type BusinessProfile struct {
	BusinessName              string   `json:"businessName"`
	ResponderName             string   `json:"responderName"`
	ResponseTone              string   `json:"responseTone,omitempty"`
	Language                  string   `json:"language,omitempty"`
	StyleExamples             []string `json:"styleExamples"`
	AvoidPhrases              []string `json:"avoidPhrases"`
	ServiceRecoveryOffer      string   `json:"serviceRecoveryOffer"`
	OfflineContactInstruction string   `json:"offlineContactInstruction,omitempty"`
}

// SignOff is the literal line every reply must end with.
func (p *BusinessProfile) SignOff() string {
	return "- " + p.ResponderName
}

// HasOfflineContact reports whether replies should point the customer to an offline channel.
func (p *BusinessProfile) HasOfflineContact() bool {
	return strings.TrimSpace(p.OfflineContactInstruction) != ""
}

// Validate checks the fields the prompts cannot do without.
func (p *BusinessProfile) Validate() error {
	if strings.TrimSpace(p.BusinessName) == "" {
		return fmt.Errorf("business name is required")
	}
	if strings.TrimSpace(p.ResponderName) == "" {
		return fmt.Errorf("responder name is required")
	}
	if strings.TrimSpace(p.ServiceRecoveryOffer) == "" {
		return fmt.Errorf("service recovery offer is required")
	}
	return nil
}

// ReviewInput is the untrusted review submitted by the caller.
type ReviewInput struct {
	Text       string `json:"reviewText"`
	AuthorName string `json:"authorName,omitempty"`
}

// Normalized returns a copy with surrounding whitespace removed.
func (r ReviewInput) Normalized() ReviewInput {
	return ReviewInput{
		Text:       strings.TrimSpace(r.Text),
		AuthorName: strings.TrimSpace(r.AuthorName),
	}
}

// Validate rejects a review whose text is blank.
func (r ReviewInput) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return apperrors.NewValidationError("reviewText must be a non-empty string")
	}
	return nil
}

func (r ReviewInput) HasAuthor() bool {
	return strings.TrimSpace(r.AuthorName) != ""
}

// Sentiment is the overall polarity of a review.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentMixed    Sentiment = "mixed"
)

// ParseSentiment accepts any casing of the three known values.
func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNegative:
		return SentimentNegative, nil
	case SentimentMixed:
		return SentimentMixed, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// NameClassification records how the author name was judged.
type NameClassification string

const (
	NameRealName NameClassification = "real_name"
	NameHandle   NameClassification = "handle"
	NameAbsent   NameClassification = "absent"
)

// ParseNameClassification accepts any casing; unknown values read as a handle
// so that no personal greeting is produced from them.
func ParseNameClassification(s string) NameClassification {
	switch NameClassification(strings.ToLower(strings.TrimSpace(s))) {
	case NameRealName:
		return NameRealName
	case NameAbsent:
		return NameAbsent
	default:
		return NameHandle
	}
}

// Analysis is the validated output of the analysis stage.
type Analysis struct {
	Sentiment          Sentiment          `json:"sentiment"`
	AllPoints          []string           `json:"allPoints"`
	MainPositivePoint  *string            `json:"mainPositivePoint,omitempty"`
	MainNegativePoint  *string            `json:"mainNegativePoint,omitempty"`
	GreetingName       *string            `json:"greetingName,omitempty"`
	NameClassification NameClassification `json:"nameClassification"`
}

func (a *Analysis) HasPositive() bool {
	return a.MainPositivePoint != nil
}

func (a *Analysis) HasNegative() bool {
	return a.MainNegativePoint != nil
}

// ReplyDraft is the reply handed back to the caller.
type ReplyDraft struct {
	Text string `json:"draftReply"`

	AvoidPhraseHits []string `json:"-"`
	SignOffRepaired bool     `json:"-"`
}

// Instructions is the model-facing payload for one completion call.
type Instructions struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// StringPtr returns a pointer to s, or nil when s is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
