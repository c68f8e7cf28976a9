package models

// HealthRating is the canonical health rating of a scanned food label
type HealthRating string

const (
	HealthRatingGood   HealthRating = "Good"
	HealthRatingMedium HealthRating = "Medium"
	HealthRatingPoor   HealthRating = "Poor"
)

// NotAvailable is reported for percentages the provider did not supply
const NotAvailable = "N/A"

// Field is a single scalar value parsed from a provider reply.
// Present is false when no line carried the field's label.
type Field struct {
	Value   string
	Present bool
}

// ListField is a comma-separated value parsed from a provider reply.
// It is only present when at least one non-empty element was found.
type ListField struct {
	Items   []string
	Present bool
}

// ParsedFields holds everything the reply parser recovered from a provider reply
type ParsedFields struct {
	NutritionalBenefitScore Field
	NutritionalRiskScore    Field
	OverallNutritionScore   Field
	HealthRating            Field
	AdditivesPercentage     Field
	SodiumPercentage        Field
	Overview                Field
	Recommendation          Field
	PositiveElements        ListField
	AreasForImprovement     ListField
}

// NutritionScore is the normalized numeric assessment.
// NetScore is taken from the reply as-is, never recomputed from the other two.
type NutritionScore struct {
	GoodScore    int          `json:"goodScore"`
	BadScore     int          `json:"badScore"`
	NetScore     int          `json:"netScore"`
	HealthRating HealthRating `json:"healthRating"`
}

// SummaryResult is the narrative part of a report
type SummaryResult struct {
	Overview            string   `json:"overview"`
	Recommendation      string   `json:"recommendation"`
	PositiveElements    []string `json:"positiveElements"`
	AreasForImprovement []string `json:"areasForImprovement"`
}

// SummarySource tells where a SummaryResult came from
type SummarySource string

const (
	SummarySourceProvider SummarySource = "provider"
	SummarySourceFallback SummarySource = "fallback"
)

// SummaryResolution is a summary together with its source. All four summary
// fields always come from the same source.
type SummaryResolution struct {
	Source  SummarySource
	Summary SummaryResult
}

// NutritionReport is the final structured result returned to clients
type NutritionReport struct {
	NutritionScore
	AdditivesPercentage string        `json:"additivesPercentage"`
	SodiumPercentage    string        `json:"sodiumPercentage"`
	Summary             SummaryResult `json:"summary"`
}

// AnalyzeResponse is the body of a successful label analysis
type AnalyzeResponse struct {
	NutritionReport
	ExtractedText string `json:"extracted_text"`
}
