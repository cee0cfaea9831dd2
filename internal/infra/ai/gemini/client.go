package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
	"github.com/bryanwahyu/logsentinel/internal/infra/ai/prompt"
)

const defaultModel = "gemini-2.5-flash"

// Client implements analysis.Analyzer against the Gemini API. The result
// schema is enforced twice: declaratively through responseSchema on the
// request, and again locally through analysis.ParseResult, so a model that
// drifts from the declared schema is still rejected.
type Client struct {
	client          *genai.Client
	model           string
	checkScoreLevel bool
}

func NewClient(ctx context.Context, apiKey, model string, checkScoreLevel bool) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: cli, model: model, checkScoreLevel: checkScoreLevel}, nil
}

func (c *Client) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt.GetUserPrompt(req.LogText))}
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema(),
		// Low temperature for analytical precision.
		Temperature: genai.Ptr[float32](0.2),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &analysis.TransportError{StatusCode: apiErr.Code, Err: err}
		}
		return nil, &analysis.TransportError{Err: err}
	}

	text := resp.Text()
	if text == "" {
		return nil, analysis.ErrEmptyResponse
	}

	result, err := analysis.ParseResult([]byte(text))
	if err != nil {
		return nil, err
	}
	if c.checkScoreLevel {
		if err := analysis.CheckScoreLevel(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// resultSchema mirrors the analysis.Result contract for the Gemini
// responseSchema request field.
func resultSchema() *genai.Schema {
	levels := []string{"Low", "Medium", "High", "Critical"}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"riskScore": {Type: genai.TypeNumber, Description: "A score from 0 to 100 indicating overall security risk."},
			"riskLevel": {Type: genai.TypeString, Enum: levels, Description: "Overall risk level categorization."},
			"summary":   {Type: genai.TypeString, Description: "Executive summary of the analysis."},
			"anomalies": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"timestamp":   {Type: genai.TypeString},
						"eventType":   {Type: genai.TypeString},
						"severity":    {Type: genai.TypeString, Enum: levels},
						"description": {Type: genai.TypeString},
						"sourceIp":    {Type: genai.TypeString},
					},
					Required: []string{"id", "timestamp", "eventType", "severity", "description"},
				},
			},
			"suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":       {Type: genai.TypeString},
						"action":   {Type: genai.TypeString},
						"reason":   {Type: genai.TypeString},
						"priority": {Type: genai.TypeString, Enum: []string{"Immediate", "High", "Normal"}},
						"type":     {Type: genai.TypeString, Enum: []string{"Network", "System", "Policy"}},
					},
					Required: []string{"id", "action", "reason", "priority", "type"},
				},
			},
			"threatDistribution": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString, Description: "Category of threat (e.g. Auth, Network, Malware)"},
						"value": {Type: genai.TypeNumber, Description: "Count or intensity"},
					},
					Required: []string{"name", "value"},
				},
			},
		},
		Required: []string{"riskScore", "riskLevel", "summary", "anomalies", "suggestions", "threatDistribution"},
	}
}
