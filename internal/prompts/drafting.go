package prompts

import (
	"fmt"
	"strings"

	"review-responder/internal/models"
)

// BuildDraftingInstructions renders the second-stage instructions for the
// sentiment of a validated analysis.
func BuildDraftingInstructions(profile *models.BusinessProfile, analysis *models.Analysis) (models.Instructions, error) {
	steps, ok := Checklists[analysis.Sentiment]
	if !ok {
		return models.Instructions{}, fmt.Errorf("no drafting checklist for sentiment %q", analysis.Sentiment)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s from %s. Write ONE short, human reply to a customer review, in %s.\n\n",
		profile.ResponderName, profile.BusinessName, language(profile))

	sb.WriteString("STRUCTURE (follow this order exactly)\n")
	n := 0
	for _, step := range steps {
		if step.Key == StepOfflineContact && !profile.HasOfflineContact() {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s%s\n", n, step.Instruction, stepDetail(step.Key, profile, analysis))
	}

	sb.WriteString("\nTONE AND STYLE\n")
	if profile.ResponseTone != "" {
		fmt.Fprintf(&sb, "- Tone: %s.\n", profile.ResponseTone)
	}
	if len(profile.StyleExamples) > 0 {
		sb.WriteString("- Match the informal, friendly style of these examples:\n")
		for _, ex := range profile.StyleExamples {
			fmt.Fprintf(&sb, "  - %q\n", ex)
		}
	}
	if len(profile.AvoidPhrases) > 0 {
		quoted := make([]string, len(profile.AvoidPhrases))
		for i, p := range profile.AvoidPhrases {
			quoted[i] = fmt.Sprintf("%q", p)
		}
		fmt.Fprintf(&sb, "- Never use these phrases or close variants: %s.\n", strings.Join(quoted, ", "))
	}
	sb.WriteString("- Do not list every point of the review. Do not invent facts, names or promises.\n")
	sb.WriteString("\nOUTPUT\n")
	fmt.Fprintf(&sb, "Return only the reply text. Its last line must be exactly: %s\n", profile.SignOff())

	return models.Instructions{
		System: sb.String(),
		User:   renderAnalysis(analysis),
	}, nil
}

func stepDetail(key string, profile *models.BusinessProfile, analysis *models.Analysis) string {
	switch key {
	case StepGreeting:
		if analysis.GreetingName != nil {
			return fmt.Sprintf(" Address the customer by name: %q.", *analysis.GreetingName)
		}
		return " Use a polite generic greeting without any name, and vary its wording between replies."
	case StepMainPositive, StepTransitionThank:
		return fmt.Sprintf(" Main positive point: %q.", models.Deref(analysis.MainPositivePoint))
	case StepApologize:
		return fmt.Sprintf(" Main negative point: %q.", models.Deref(analysis.MainNegativePoint))
	case StepRecovery:
		return fmt.Sprintf(" Use this wording: %q", profile.ServiceRecoveryOffer)
	case StepOfflineContact:
		return fmt.Sprintf(" Use this wording: %q", profile.OfflineContactInstruction)
	case StepSignOff:
		return fmt.Sprintf(" The sign-off is exactly %q.", profile.SignOff())
	default:
		return ""
	}
}

func renderAnalysis(analysis *models.Analysis) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Review sentiment: %s\n", analysis.Sentiment)
	if analysis.MainPositivePoint != nil {
		fmt.Fprintf(&sb, "Main positive point: %s\n", *analysis.MainPositivePoint)
	}
	if analysis.MainNegativePoint != nil {
		fmt.Fprintf(&sb, "Main negative point: %s\n", *analysis.MainNegativePoint)
	}
	if analysis.GreetingName != nil {
		fmt.Fprintf(&sb, "Greeting name: %s\n", *analysis.GreetingName)
	} else {
		sb.WriteString("Greeting name: none (use a generic greeting)\n")
	}
	sb.WriteString("Write the reply now.")
	return sb.String()
}
