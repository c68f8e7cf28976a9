package services

import (
	"strings"

	"github.com/foxxcyber/nutri-scan/internal/models"
)

// Reply line labels, matched case-sensitively at the start of a line
const (
	LabelBenefitScore        = "Nutritional Benefit Score:"
	LabelRiskScore           = "Nutritional Risk Score:"
	LabelOverallScore        = "Overall Nutrition Score:"
	LabelAdditives           = "Additives Percentage:"
	LabelSodium              = "Sodium Percentage:"
	LabelOverview            = "Overview:"
	LabelRecommendation      = "Recommendation:"
	LabelPositiveElements    = "Positive Elements:"
	LabelAreasForImprovement = "Areas for Improvement:"
)

// replyLabel binds a line prefix to the code that stores its value
type replyLabel struct {
	prefix string
	apply  func(fields *models.ParsedFields, value string)
}

// ReplyParser extracts the nine labeled fields from a provider reply
type ReplyParser struct {
	labels []replyLabel
}

// NewReplyParser creates a new reply parser
func NewReplyParser() *ReplyParser {
	return &ReplyParser{
		labels: []replyLabel{
			{LabelBenefitScore, func(f *models.ParsedFields, v string) { f.NutritionalBenefitScore = present(v) }},
			{LabelRiskScore, func(f *models.ParsedFields, v string) { f.NutritionalRiskScore = present(v) }},
			{LabelOverallScore, applyOverallScore},
			{LabelAdditives, func(f *models.ParsedFields, v string) { f.AdditivesPercentage = present(v) }},
			{LabelSodium, func(f *models.ParsedFields, v string) { f.SodiumPercentage = present(v) }},
			{LabelOverview, func(f *models.ParsedFields, v string) { f.Overview = present(v) }},
			{LabelRecommendation, func(f *models.ParsedFields, v string) { f.Recommendation = present(v) }},
			{LabelPositiveElements, func(f *models.ParsedFields, v string) { f.PositiveElements = splitList(v) }},
			{LabelAreasForImprovement, func(f *models.ParsedFields, v string) { f.AreasForImprovement = splitList(v) }},
		},
	}
}

// Parse scans the reply line by line. Lines that carry no known label are
// ignored, and a repeated label overwrites the earlier value.
func (p *ReplyParser) Parse(reply string) models.ParsedFields {
	var fields models.ParsedFields

	for _, line := range splitLines(reply) {
		for _, label := range p.labels {
			if !strings.HasPrefix(line, label.prefix) {
				continue
			}
			label.apply(&fields, strings.TrimSpace(line[len(label.prefix):]))
			break
		}
	}

	return fields
}

// applyOverallScore splits "15 (High Health Rating)" into score and rating
func applyOverallScore(f *models.ParsedFields, value string) {
	score, rating, found := strings.Cut(value, "(")
	if !found {
		f.OverallNutritionScore = present(value)
		return
	}

	f.OverallNutritionScore = present(strings.TrimSpace(score))
	f.HealthRating = present(strings.TrimSpace(strings.ReplaceAll(rating, ")", "")))
}

// splitList splits a comma-separated value, dropping blank elements.
// A list with no elements left is reported as absent.
func splitList(value string) models.ListField {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}

	if len(items) == 0 {
		return models.ListField{}
	}
	return models.ListField{Items: items, Present: true}
}

func present(value string) models.Field {
	return models.Field{Value: value, Present: true}
}

// splitLines breaks on the same boundaries as Python's str.splitlines
func splitLines(text string) []string {
	return strings.FieldsFunc(text, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
