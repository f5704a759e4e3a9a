package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
	"github.com/sitelens/scan-engine/internal/infrastructure/ai/prompt"
)

const maxTokens = 2048

// Client is the inference backend in its two call shapes: the structured
// vision analysis and the free-form synthesis call. Both request a JSON
// object response and decode straight into the domain types.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{api: openai.NewClient(apiKey), model: model}
}

// AnalyzeWebsite submits the screenshot plus the target URL and decodes the
// fixed structured schema.
func (c *Client) AnalyzeWebsite(ctx context.Context, url string, screenshot []byte) (*domain.WebsiteAnalysis, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(screenshot)

	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.AnalysisSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.AnalysisUserPrompt(url)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var analysis domain.WebsiteAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("%w: decode analysis response: %v", domain.ErrUpstreamFailure, err)
	}
	if len(analysis.Keywords) != 5 {
		return nil, fmt.Errorf("%w: analysis returned %d keywords, want 5", domain.ErrUpstreamFailure, len(analysis.Keywords))
	}
	if len(analysis.KeyFeatures) < 3 {
		return nil, fmt.Errorf("%w: analysis returned %d key features, want at least 3", domain.ErrUpstreamFailure, len(analysis.KeyFeatures))
	}
	return &analysis, nil
}

// GenerateReport produces the three-part qualitative report from the
// structured analysis, both result sets and both rankings.
func (c *Client) GenerateReport(ctx context.Context, input ports.ReportInput) (*domain.SEOReport, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.ReportSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				Content: prompt.ReportUserPrompt(
					input.URL,
					input.Analysis,
					input.GoogleResults,
					input.BingResults,
					input.GoogleRanking,
					input.BingRanking,
				),
			},
		},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var report domain.SEOReport
	if err := json.Unmarshal([]byte(content), &report); err != nil {
		return nil, fmt.Errorf("%w: decode report response: %v", domain.ErrUpstreamFailure, err)
	}
	if report.Findings == "" || report.Recommendations == "" {
		return nil, fmt.Errorf("%w: report response missing required sections", domain.ErrUpstreamFailure)
	}
	return &report, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", domain.ErrUpstreamFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", domain.ErrUpstreamFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

var _ ports.Analyzer = (*Client)(nil)
