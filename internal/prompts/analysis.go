package prompts

import (
	"fmt"
	"strings"

	"review-responder/internal/models"
)

// analysisOutputShape is the exact object the analysis call must return.
const analysisOutputShape = `{
  "nameClassification": "real_name" | "handle" | "absent",
  "greetingName": string | null,
  "allPoints": [string, ...],
  "mainPositivePoint": string | null,
  "mainNegativePoint": string | null,
  "sentiment": "positive" | "negative" | "mixed"
}`

// BuildAnalysisInstructions renders the first-stage instructions: classify
// the author name, extract every point, choose the main point per polarity
// and report the sentiment as one JSON object.
func BuildAnalysisInstructions(profile *models.BusinessProfile, review models.ReviewInput) models.Instructions {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You analyze customer reviews left for %s. You do not write replies. ", profile.BusinessName)
	sb.WriteString("Follow the steps below in order and answer with a single JSON object and nothing else.\n\n")

	sb.WriteString("STEP 1. AUTHOR NAME\n")
	for _, rule := range NameRules {
		sb.WriteString("- ")
		sb.WriteString(rule)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "- The reply language is %s.\n\n", language(profile))

	sb.WriteString("STEP 2. POINTS\n")
	sb.WriteString("- List every distinct point the customer makes in allPoints, in the order they appear, using the customer's own words where possible.\n")
	sb.WriteString("- Mark each point mentally as positive or negative.\n\n")

	sb.WriteString("STEP 3. MAIN POINTS\n")
	sb.WriteString("- Choose at most ONE main positive point and at most ONE main negative point, using this strict priority order:\n")
	for _, tier := range PriorityTiers {
		fmt.Fprintf(&sb, "  Priority %d (%s): %s.\n", tier.Rank, tier.Label, tier.Description)
	}
	sb.WriteString("- If several points share the highest priority, choose the one mentioned first in the review.\n")
	sb.WriteString("- A main point must be copied from allPoints. Use null when the review has no point of that polarity.\n\n")

	sb.WriteString("STEP 4. SENTIMENT\n")
	sb.WriteString("- \"mixed\" if and only if the review contains at least one positive AND at least one negative point; both main points are then required.\n")
	sb.WriteString("- \"positive\" when only positive points exist; mainNegativePoint is null.\n")
	sb.WriteString("- \"negative\" when only negative points exist; mainPositivePoint is null.\n\n")

	sb.WriteString("OUTPUT\n")
	sb.WriteString("Return exactly this JSON shape, with no markdown and no commentary:\n")
	sb.WriteString(analysisOutputShape)

	return models.Instructions{
		System: sb.String(),
		User:   renderReview(review),
	}
}

func renderReview(review models.ReviewInput) string {
	var sb strings.Builder
	author := strings.TrimSpace(review.AuthorName)
	if author == "" {
		sb.WriteString("Author name: (not provided)\n")
	} else {
		fmt.Fprintf(&sb, "Author name: %q\n", author)
	}
	sb.WriteString("Review:\n\"\"\"\n")
	sb.WriteString(strings.TrimSpace(review.Text))
	sb.WriteString("\n\"\"\"")
	return sb.String()
}

func language(profile *models.BusinessProfile) string {
	if strings.TrimSpace(profile.Language) == "" {
		return "Ukrainian"
	}
	return profile.Language
}
