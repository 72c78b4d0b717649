// Package prompts renders the instructions sent to the completion API.
// Reply policy lives in the tables below; the builders only format them.
package prompts

import "review-responder/internal/models"

// Version identifies the prompt revision in logs and job variables.
const Version = "reply-prompts/v3"

// PriorityTier is one rung of the main-point selection order. Lower rank wins.
type PriorityTier struct {
	Rank        int
	Label       string
	Description string
}

// PriorityTiers orders candidate main points. Ties within a tier go to the
// point mentioned first in the review.
var PriorityTiers = []PriorityTier{
	{
		Rank:        1,
		Label:       "emotional impact",
		Description: "specific, emotional comments about how the service affected the patient or their family (children especially)",
	},
	{
		Rank:        2,
		Label:       "named staff",
		Description: "praise or criticism of a specific person (doctor, nurse, administrator)",
	},
	{
		Rank:        3,
		Label:       "service aspect",
		Description: "comments about a concrete part of the service (quality of treatment, insurance process, test results)",
	},
	{
		Rank:        4,
		Label:       "general facility",
		Description: "general comments about the facility (cleanliness, speed, location, waiting time)",
	},
}

// Step is one item of a drafting checklist.
type Step struct {
	Key         string
	Instruction string
}

const (
	StepGreeting        = "greeting"
	StepThank           = "thank"
	StepMainPositive    = "main_positive"
	StepApologize       = "apologize"
	StepRecovery        = "recovery"
	StepOfflineContact  = "offline_contact"
	StepTransitionThank = "transition_thank"
	StepSignOff         = "sign_off"
)

// Checklists is the ordered structure of a reply for each sentiment. The
// mixed order (apologize, recover, then appreciate) is fixed.
var Checklists = map[models.Sentiment][]Step{
	models.SentimentPositive: {
		{StepGreeting, "Open with the greeting."},
		{StepThank, "Thank the customer warmly for the feedback."},
		{StepMainPositive, "Build the body around the main positive point only; do not list other points."},
		{StepSignOff, "End with the sign-off line."},
	},
	models.SentimentNegative: {
		{StepGreeting, "Open with the greeting."},
		{StepApologize, "Apologize sincerely and specifically for the main negative point."},
		{StepRecovery, "State the service recovery offer."},
		{StepOfflineContact, "Give the offline contact instruction."},
		{StepSignOff, "End with the sign-off line."},
	},
	models.SentimentMixed: {
		{StepGreeting, "Open with the greeting."},
		{StepApologize, "First, apologize sincerely for the main negative point."},
		{StepRecovery, "Second, state the service recovery offer."},
		{StepOfflineContact, "Together with the recovery offer, give the offline contact instruction."},
		{StepTransitionThank, "Third, transition to the positive and thank the customer for the main positive point."},
		{StepSignOff, "End with the sign-off line."},
	},
}

// NameRules explains how the author name is classified.
var NameRules = []string{
	"A real personal name (for example \"Олена\", \"Володимир Петренко\", \"Іван Петренко\") is classified as real_name.",
	"Nicknames, usernames, handles, brand names, initials only, or strings containing digits or symbols unusual in names (for example \"SuperCat1998\", \"user_42\", \"@anna\") are classified as handle.",
	"A missing or blank author name is classified as absent.",
	"For real_name only, greetingName is the FIRST name alone, inflected into the vocative case of the reply language (for example \"Іван Петренко\" becomes \"Іване\", \"Олена\" becomes \"Олено\").",
	"For handle and absent, greetingName is null.",
}
