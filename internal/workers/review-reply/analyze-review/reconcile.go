// internal/workers/review-reply/analyze-review/reconcile.go
package analyzereview

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "review-responder/internal/common/errors"
	"review-responder/internal/models"
)

// ParseAnalysis validates a structured completion against the analysis
// schema and decodes it. It does not check the cross-field invariants.
func ParseAnalysis(data []byte) (*models.Analysis, error) {
	result, err := analysisSchema.ValidateBytes(data)
	if err != nil {
		return nil, apperrors.NewUpstreamMalformedError(StageName, string(data), err)
	}
	if !result.Valid {
		return nil, apperrors.NewUpstreamMalformedError(StageName, string(data), errors.New(result.Error()))
	}

	var raw rawAnalysis
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewUpstreamMalformedError(StageName, string(data), err)
	}

	sentiment, err := models.ParseSentiment(raw.Sentiment)
	if err != nil {
		return nil, apperrors.NewUpstreamMalformedError(StageName, string(data), err)
	}

	return &models.Analysis{
		Sentiment:          sentiment,
		AllPoints:          raw.AllPoints,
		MainPositivePoint:  raw.MainPositivePoint,
		MainNegativePoint:  raw.MainNegativePoint,
		GreetingName:       raw.GreetingName,
		NameClassification: models.ParseNameClassification(raw.NameClassification),
	}, nil
}

// Reconcile enforces the analysis invariants on an untrusted analysis:
// sentiment follows the main points that are actually present (mixed iff
// both), main points appear in AllPoints, and a greeting name survives only
// for a real author name. An analysis with no main point at all is rejected.
// Reconcile(Reconcile(a)) == Reconcile(a).
func Reconcile(a models.Analysis, review models.ReviewInput) (models.Analysis, []string, error) {
	var repairs []string

	out := models.Analysis{
		MainPositivePoint:  models.StringPtr(models.Deref(a.MainPositivePoint)),
		MainNegativePoint:  models.StringPtr(models.Deref(a.MainNegativePoint)),
		NameClassification: a.NameClassification,
	}

	for _, p := range a.AllPoints {
		if p = strings.TrimSpace(p); p != "" {
			out.AllPoints = append(out.AllPoints, p)
		}
	}

	switch {
	case out.MainPositivePoint != nil && out.MainNegativePoint != nil:
		out.Sentiment = models.SentimentMixed
	case out.MainPositivePoint != nil:
		out.Sentiment = models.SentimentPositive
	case out.MainNegativePoint != nil:
		out.Sentiment = models.SentimentNegative
	default:
		return models.Analysis{}, nil, apperrors.NewAnalysisIncompleteError(
			fmt.Sprintf("claimed sentiment %q without a main positive or negative point", a.Sentiment))
	}

	if out.Sentiment != a.Sentiment {
		switch {
		case a.Sentiment == models.SentimentMixed:
			repairs = append(repairs, RepairMixedDowngraded)
		case out.Sentiment == models.SentimentMixed:
			repairs = append(repairs, RepairMixedUpgraded)
		default:
			repairs = append(repairs, RepairPolarityCorrected)
		}
	}

	// review order is unknown here, so a missing main point is appended
	for _, p := range []*string{out.MainPositivePoint, out.MainNegativePoint} {
		if p != nil && !contains(out.AllPoints, *p) {
			out.AllPoints = append(out.AllPoints, *p)
			repairs = append(repairs, RepairPointAdded)
		}
	}

	greeting, greetingRepairs := reconcileGreeting(&out, a.GreetingName, review)
	out.GreetingName = greeting
	repairs = append(repairs, greetingRepairs...)

	return out, repairs, nil
}

func reconcileGreeting(out *models.Analysis, claimed *string, review models.ReviewInput) (*string, []string) {
	name := models.StringPtr(models.Deref(claimed))

	switch {
	case !review.HasAuthor():
		out.NameClassification = models.NameAbsent
	case LooksLikeHandle(review.AuthorName):
		out.NameClassification = models.NameHandle
	}

	if out.NameClassification != models.NameRealName {
		if name != nil {
			return nil, []string{RepairGreetingDropped}
		}
		return nil, nil
	}
	if name == nil {
		return nil, nil
	}

	cleaned := cleanGreeting(*name)
	if cleaned == "" || LooksLikeHandle(cleaned) {
		return nil, []string{RepairGreetingDropped}
	}
	if cleaned != *name {
		return &cleaned, []string{RepairGreetingTrimmed}
	}
	return name, nil
}

// honorifics are forms of address a model may put in front of the name.
var honorifics = map[string]bool{
	"пан": true, "пані": true, "пане": true,
	"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true,
}

// cleanGreeting keeps the first word that is not an honorific and drops
// surrounding punctuation.
func cleanGreeting(name string) string {
	for _, field := range strings.Fields(name) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) && r != '\'' && r != '’' && r != '-'
		})
		if word == "" || honorifics[strings.ToLower(word)] {
			continue
		}
		return word
	}
	return ""
}

// LooksLikeHandle reports author names that are obviously not a person's
// name: digits, handle symbols, links or absurd length. Anything subtler is
// left to the model.
func LooksLikeHandle(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if utf8.RuneCountInString(name) > 60 {
		return true
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") {
		return true
	}
	for _, r := range name {
		if unicode.IsDigit(r) || strings.ContainsRune("@_#$%^&*+=/\\|<>[]{}~", r) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
