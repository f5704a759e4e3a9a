package prompt

import "fmt"

// AnalysisSystemPrompt provides strict directions and schema for the
// structured website analysis call.
func AnalysisSystemPrompt() string {
	return `You are a website analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- website_type must be exactly one of: E-commerce, SaaS/Software, Blog/Content, Portfolio, Corporate/Business, Landing Page, News/Media, Social Platform, Educational, Government, Other.
- primary_goal must be exactly one of: Product Sales, Lead Generation, Information/Education, Brand Awareness, User Engagement, Content Distribution, Service Delivery, Community Building, Other.
- description is a brief 2-3 sentence description of the website, its purpose, and visual design.
- key_features lists 3 to 5 notable features, UI elements, or characteristics observed.
- keywords lists exactly 5 SEO keywords that best represent the page content and business focus, ordered from most to least relevant.

Schema (example with empty values):
{
  "website_type": "<string>",
  "primary_goal": "<string>",
  "description": "<string>",
  "key_features": ["<string>"],
  "keywords": ["<string>"]
}`
}

// AnalysisUserPrompt builds the user message accompanying the screenshot.
func AnalysisUserPrompt(url string) string {
	return fmt.Sprintf(
		"Analyze this website screenshot from %s. Identify the website type, primary business goal, provide a description, list key features, and determine the top 5 SEO keywords that best represent this page.",
		url,
	)
}
