package classifier

import "strings"

const systemPrompt = `You are a financial news sentiment classifier. You will receive a single stock news headline.

Classify the headline's sentiment toward the company or market it covers as exactly one of: positive, negative, neutral.
Report your confidence in the label as a number between 0 and 1.

Output as JSON only, no other text:
{
  "label": "positive | negative | neutral",
  "score": 0.0-1.0 confidence
}`

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
