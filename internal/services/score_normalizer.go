package services

import (
	"strconv"
	"strings"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// defaultRatingText is assumed when the reply carries no rating
const defaultRatingText = "Medium"

// ratingRule maps a keyword found in the provider's rating text to a
// canonical rating
type ratingRule struct {
	keyword string
	rating  models.HealthRating
}

// ratingRules are evaluated in order and the first match wins, so a text
// containing both "High" and "Poor" is rated Good.
var ratingRules = []ratingRule{
	{"High", models.HealthRatingGood},
	{"Good", models.HealthRatingGood},
	{"Low", models.HealthRatingPoor},
	{"Poor", models.HealthRatingPoor},
}

// NormalizeScore converts parsed reply fields into a NutritionScore.
// Unparsable or missing numbers become 0.
func NormalizeScore(fields models.ParsedFields) models.NutritionScore {
	ratingText := defaultRatingText
	if fields.HealthRating.Present {
		ratingText = fields.HealthRating.Value
	}

	return models.NutritionScore{
		GoodScore:    parseScore(fields.NutritionalBenefitScore),
		BadScore:     parseScore(fields.NutritionalRiskScore),
		NetScore:     parseScore(fields.OverallNutritionScore),
		HealthRating: ClassifyRating(ratingText),
	}
}

// ClassifyRating collapses free-text rating phrases such as
// "High Health Rating" into a canonical rating
func ClassifyRating(text string) models.HealthRating {
	for _, rule := range ratingRules {
		if strings.Contains(text, rule.keyword) {
			return rule.rating
		}
	}
	return models.HealthRatingMedium
}

func parseScore(field models.Field) int {
	if !field.Present {
		return 0
	}
	score, err := strconv.Atoi(strings.TrimSpace(field.Value))
	if err != nil {
		return 0
	}
	return score
}

// percentageOrNA returns the reported percentage, or N/A when the reply had
// no line for it. A line with nothing after the label stays empty.
func percentageOrNA(field models.Field) string {
	if !field.Present {
		return models.NotAvailable
	}
	return field.Value
}
