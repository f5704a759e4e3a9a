package prompt

import (
	"fmt"
	"strings"

	"github.com/sitelens/scan-engine/internal/core/domain"
)

// ReportSystemPrompt provides strict directions and schema for the SEO
// synthesis call.
func ReportSystemPrompt() string {
	return `You are an SEO expert analyzing a website's competitive position across multiple search engines. You must produce one valid JSON object only (no markdown fences, no commentary outside the JSON) that follows the schema below.

Requirements:
- Output must be a single JSON object.
- findings: markdown-formatted key observations about the website's current SEO position across Google and Bing, competitive landscape differences between engines, and opportunities.
- recommendations: markdown-formatted specific, actionable steps to improve SEO performance on both search engines and overall competitiveness.
- require_attention: markdown-formatted high-priority items or quick wins that should be addressed immediately.
- Write everything in a positive, encouraging, and constructive tone; focus on opportunities and growth potential rather than shortcomings.
- Highlight any interesting differences between Google and Bing results.
- Use markdown formatting inside the string values (bullet points, bold text, headings).

Schema (example with empty values):
{
  "findings": "<string>",
  "recommendations": "<string>",
  "require_attention": "<string>"
}`
}

// ReportUserPrompt assembles the full competitive context for the synthesis
// call: the structured analysis, both result sets and both rankings.
func ReportUserPrompt(url string, analysis domain.WebsiteAnalysis, googleResults, bingResults []domain.SearchResult, googleRanking, bingRanking *int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Website Being Analyzed:** %s\n\n", url)
	fmt.Fprintf(&b, "**Website Analysis:**\n")
	fmt.Fprintf(&b, "- Type: %s\n", analysis.WebsiteType)
	fmt.Fprintf(&b, "- Primary Goal: %s\n", analysis.PrimaryGoal)
	fmt.Fprintf(&b, "- Description: %s\n", analysis.Description)
	fmt.Fprintf(&b, "- Key Features: %s\n", strings.Join(analysis.KeyFeatures, ", "))
	fmt.Fprintf(&b, "- Target Keywords: %s\n\n", strings.Join(analysis.Keywords, ", "))

	fmt.Fprintf(&b, "**Current Search Rankings:**\n%s\n%s\n\n",
		rankingLine("Google", googleRanking),
		rankingLine("Bing", bingRanking))

	query := ""
	if len(analysis.Keywords) > 0 {
		query = analysis.Keywords[0]
	}
	fmt.Fprintf(&b, "**Top Google Competitors (search for %q):**\n%s\n", query, competitorList(googleResults))
	fmt.Fprintf(&b, "**Top Bing Competitors (search for %q):**\n%s\n", query, competitorList(bingResults))

	b.WriteString("Provide the comprehensive SEO analysis as JSON per the schema.")
	return b.String()
}

func rankingLine(engine string, rank *int) string {
	if rank == nil {
		return fmt.Sprintf("%s: Not in top 10", engine)
	}
	return fmt.Sprintf("%s: Ranked at position #%d", engine, *rank)
}

func competitorList(results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**\n   URL: %s\n   Snippet: %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	if b.Len() == 0 {
		b.WriteString("(no results returned)\n")
	}
	return b.String()
}
