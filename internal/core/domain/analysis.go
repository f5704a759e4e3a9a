package domain

// WebsiteAnalysis is the structured output of the first inference call.
type WebsiteAnalysis struct {
	// WebsiteType is the primary category: E-commerce, SaaS/Software,
	// Blog/Content, Portfolio, Corporate/Business, Landing Page, News/Media,
	// Social Platform, Educational, Government, Other.
	WebsiteType string `json:"website_type" bson:"website_type"`

	// PrimaryGoal is the main business objective: Product Sales, Lead
	// Generation, Information/Education, Brand Awareness, User Engagement,
	// Content Distribution, Service Delivery, Community Building, Other.
	PrimaryGoal string `json:"primary_goal" bson:"primary_goal"`

	// Description is a brief 2-3 sentence description of the website.
	Description string `json:"description" bson:"description"`

	// KeyFeatures lists 3-5 notable features or UI elements observed.
	KeyFeatures []string `json:"key_features" bson:"key_features"`

	// Keywords holds exactly 5 ranking keywords; the first one drives the
	// competitive search.
	Keywords []string `json:"keywords" bson:"keywords"`
}

// SearchResult is one entry returned by a search backend.
type SearchResult struct {
	Title   string `json:"title" bson:"title"`
	URL     string `json:"url" bson:"url"`
	Snippet string `json:"snippet" bson:"snippet"`
}

// SEOReport is the qualitative report produced by the synthesis call.
// All three sections are markdown in a positive, constructive register.
type SEOReport struct {
	Findings         string `json:"findings" bson:"findings"`
	Recommendations  string `json:"recommendations" bson:"recommendations"`
	RequireAttention string `json:"require_attention" bson:"require_attention"`

	// Rankings are 1-based positions of the scanned URL in each backend's
	// results; nil when not found in the returned set.
	GoogleRanking *int `json:"google_ranking" bson:"google_ranking"`
	BingRanking   *int `json:"bing_ranking" bson:"bing_ranking"`
}

// ScanResult is the full result payload persisted on a completed scan.
type ScanResult struct {
	Mode          string          `json:"mode" bson:"mode"`
	ScreenshotKey string          `json:"screenshot_key,omitempty" bson:"screenshot_key,omitempty"`
	Analysis      WebsiteAnalysis `json:"analysis" bson:"analysis"`
	SEO           SEOReport       `json:"seo" bson:"seo"`
}
