package services

import (
	"fmt"
	"strings"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// BuildReport turns a raw provider reply into a complete NutritionReport.
// It never fails: every missing or malformed field is replaced by a default.
func (p *ReplyParser) BuildReport(reply string) (models.NutritionReport, models.SummarySource) {
	fields := p.Parse(reply)
	score := NormalizeScore(fields)
	resolution := ResolveSummary(fields, score)

	return models.NutritionReport{
		NutritionScore:      score,
		AdditivesPercentage: percentageOrNA(fields.AdditivesPercentage),
		SodiumPercentage:    percentageOrNA(fields.SodiumPercentage),
		Summary:             resolution.Summary,
	}, resolution.Source
}

// FormatReply renders a report back into the nine-line reply format
func FormatReply(report models.NutritionReport) string {
	ratingText := map[models.HealthRating]string{
		models.HealthRatingGood:   "High Health Rating",
		models.HealthRatingMedium: "Medium Health Rating",
		models.HealthRatingPoor:   "Low Health Rating",
	}[report.HealthRating]

	lines := []string{
		fmt.Sprintf("%s %d", LabelBenefitScore, report.GoodScore),
		fmt.Sprintf("%s %d", LabelRiskScore, report.BadScore),
		fmt.Sprintf("%s %d (%s)", LabelOverallScore, report.NetScore, ratingText),
		fmt.Sprintf("%s %s", LabelAdditives, report.AdditivesPercentage),
		fmt.Sprintf("%s %s", LabelSodium, report.SodiumPercentage),
		fmt.Sprintf("%s %s", LabelOverview, report.Summary.Overview),
		fmt.Sprintf("%s %s", LabelRecommendation, report.Summary.Recommendation),
		fmt.Sprintf("%s %s", LabelPositiveElements, strings.Join(report.Summary.PositiveElements, ", ")),
		fmt.Sprintf("%s %s", LabelAreasForImprovement, strings.Join(report.Summary.AreasForImprovement, ", ")),
	}
	return strings.Join(lines, "\n")
}
