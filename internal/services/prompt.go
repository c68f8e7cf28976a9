package services

import "strings"

// labelPromptTemplate instructs the provider to answer with the nine-line
// contract understood by ReplyParser.
const labelPromptTemplate = `You are an AI assistant that calculates nutrition scores from food label data.
Based solely on the provided context, calculate the following values using only the data present.

You are given food product label and ingredient data. Using the following Yuka-inspired metric, calculate the nutrition scores and additional percentages.

1. Nutritional Benefit Score: Sum the % Daily Value (DV) of beneficial nutrients (fiber, protein, vitamins such as Vitamin D, and minerals like Calcium, Iron, Potassium).
2. Nutritional Risk Score: Sum the % DV of nutrients to limit (total fat, saturated fat, trans fat, cholesterol, sodium, added sugars).
3. Overall Nutrition Score: Calculate as (Nutritional Benefit Score) minus (Nutritional Risk Score).
4. Additives Percentage: Estimate the percentage of additives from the ingredient list.
5. Sodium Percentage: Extract the sodium % DV from the label.
6. Health Rating:
   - Overall Nutrition Score >= +10 => "High Health Rating"
   - Overall Nutrition Score between 0 and +10 => "Medium Health Rating"
   - Overall Nutrition Score < 0 => "Low Health Rating"

Now, produce a summary that includes:
- Overview: one-sentence explanation of the overall nutritional quality.
- Recommendation: one-sentence recommendation.
- Positive Elements: a comma-separated list of positive nutritional aspects.
- Areas for Improvement: a comma-separated list of aspects that could be improved.

Your response MUST have exactly the following nine lines (do not include any extra text or formatting):
Nutritional Benefit Score: <numeric value>
Nutritional Risk Score: <numeric value>
Overall Nutrition Score: <numeric value> (<Health Rating>)
Additives Percentage: <numeric value>
Sodium Percentage: <numeric value>
Overview: <one-sentence overview>
Recommendation: <one-sentence recommendation>
Positive Elements: <comma-separated list>
Areas for Improvement: <comma-separated list>

Food Label Data:
`

// BuildPrompt returns the provider prompt for the given OCR text
func BuildPrompt(labelText string) string {
	return labelPromptTemplate + strings.TrimSpace(labelText)
}
