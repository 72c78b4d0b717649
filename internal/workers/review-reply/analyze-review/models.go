// internal/workers/review-reply/analyze-review/models.go
package analyzereview

// rawAnalysis is the analysis object exactly as the model returned it.
type rawAnalysis struct {
	NameClassification string   `json:"nameClassification"`
	GreetingName       *string  `json:"greetingName"`
	AllPoints          []string `json:"allPoints"`
	MainPositivePoint  *string  `json:"mainPositivePoint"`
	MainNegativePoint  *string  `json:"mainNegativePoint"`
	Sentiment          string   `json:"sentiment"`
}

// Repair kinds recorded when a model analysis had to be corrected.
const (
	RepairMixedDowngraded   = "mixed_downgraded"
	RepairMixedUpgraded     = "mixed_upgraded"
	RepairPolarityCorrected = "polarity_corrected"
	RepairPointAdded        = "main_point_added"
	RepairGreetingDropped   = "greeting_dropped"
	RepairGreetingTrimmed   = "greeting_trimmed"
)
