package services

import (
	"fmt"
	"strings"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// fallbackTemplate is the fixed narrative used for one rating tier
type fallbackTemplate struct {
	clause              string
	recommendation      string
	positiveElements    []string
	areasForImprovement []string
}

var fallbackTemplates = map[models.HealthRating]fallbackTemplate{
	models.HealthRatingGood: {
		clause:         "It is nutritionally beneficial with many positive elements.",
		recommendation: "Regular consumption is recommended as part of a balanced diet.",
		positiveElements: []string{
			"High in essential nutrients",
			"Good source of protein",
			"Rich in dietary fiber",
			"Contains healthy fats",
		},
		areasForImprovement: []string{
			"Some sodium",
			"Moderate sugar",
			"Minor processing",
		},
	},
	models.HealthRatingMedium: {
		clause:         "It has a balanced nutritional profile with room for improvement.",
		recommendation: "Consume in moderation and pair with fresh foods.",
		positiveElements: []string{
			"Moderate protein",
			"Contains fiber",
			"Some vitamins and minerals",
		},
		areasForImprovement: []string{
			"Relatively high sodium",
			"Some processed ingredients",
			"Moderate sugar",
		},
	},
	models.HealthRatingPoor: {
		clause:         "It has more negative than positive nutritional aspects.",
		recommendation: "Consider alternatives with better nutritional profiles.",
		positiveElements: []string{
			"Provides some energy",
			"Contains minimal nutrients",
		},
		areasForImprovement: []string{
			"High in unhealthy fats",
			"Excessive sodium",
			"Added sugars",
			"Highly processed",
		},
	},
}

// ResolveSummary uses the provider's narrative only when all four summary
// fields are filled in. Otherwise the whole summary is generated from the
// health rating; the two sources are never mixed.
func ResolveSummary(fields models.ParsedFields, score models.NutritionScore) models.SummaryResolution {
	overview := strings.TrimSpace(fields.Overview.Value)
	recommendation := strings.TrimSpace(fields.Recommendation.Value)

	if overview != "" && recommendation != "" &&
		len(fields.PositiveElements.Items) > 0 && len(fields.AreasForImprovement.Items) > 0 {
		return models.SummaryResolution{
			Source: models.SummarySourceProvider,
			Summary: models.SummaryResult{
				Overview:            overview,
				Recommendation:      recommendation,
				PositiveElements:    fields.PositiveElements.Items,
				AreasForImprovement: fields.AreasForImprovement.Items,
			},
		}
	}

	return models.SummaryResolution{
		Source:  models.SummarySourceFallback,
		Summary: FallbackSummary(score),
	}
}

// FallbackSummary builds the deterministic summary for a score. Only the
// rating and the sign of the net score affect the text.
func FallbackSummary(score models.NutritionScore) models.SummaryResult {
	tmpl, ok := fallbackTemplates[score.HealthRating]
	if !ok {
		tmpl = fallbackTemplates[models.HealthRatingPoor]
	}

	sign := ""
	if score.NetScore > 0 {
		sign = "+"
	}
	lead := fmt.Sprintf(
		"Based on our analysis, your food has a %s health rating with a net score of %s%d%%. ",
		strings.ToLower(string(score.HealthRating)), sign, score.NetScore,
	)

	return models.SummaryResult{
		Overview:            lead + tmpl.clause,
		Recommendation:      tmpl.recommendation,
		PositiveElements:    append([]string(nil), tmpl.positiveElements...),
		AreasForImprovement: append([]string(nil), tmpl.areasForImprovement...),
	}
}
