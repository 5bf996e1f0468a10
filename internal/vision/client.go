// Package vision estimates the nutrition of a meal photo with Gemini.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/theirongolddev/mealradar/internal/model"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel   = "gemini-2.5-flash"
	requestTimeout = 60 * time.Second
	maxImageSize   = 20 << 20 // 20 MB inline data limit

	analysisPrompt = "Analyze the image of this meal and provide a detailed nutritional breakdown " +
		"for a standard serving size. Estimate the following: calories, protein in grams, " +
		"carbohydrates in grams, fat in grams, and sugar in grams. " +
		"Also provide a short, descriptive name for the meal."
)

var (
	// ErrNoAPIKey indicates no Gemini API key was configured.
	ErrNoAPIKey = errors.New("vision: API key not found; set GEMINI_API_KEY or vision.api_key")
	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("vision: model returned no content")
	// ErrImageTooLarge indicates the image exceeds the inline upload limit.
	ErrImageTooLarge = errors.New("vision: image too large")
)

// Analyzer turns a meal photo into a nutrition estimate.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (model.Estimate, error)
}

// Client is a Gemini-backed Analyzer.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a Gemini client for the given key and model name.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("vision: creating gemini client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = estimateSchema()

	return &Client{client: client, model: m}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// AnalyzeImage sends the image with the analysis prompt and parses the
// structured reply.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (model.Estimate, error) {
	if len(image) > maxImageSize {
		return model.Estimate{}, ErrImageTooLarge
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	format := strings.TrimPrefix(mimeType, "image/")
	if format == "" {
		format = "jpeg"
	}

	resp, err := c.model.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(analysisPrompt))
	if err != nil {
		return model.Estimate{}, fmt.Errorf("vision: failed to analyze image: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Estimate{}, ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return model.Estimate{}, ErrEmptyResponse
	}

	return ParseEstimate([]byte(sb.String()))
}

// ParseEstimate decodes the model's JSON reply. Code fences are tolerated
// and negative values are rejected.
func ParseEstimate(raw []byte) (model.Estimate, error) {
	text := strings.TrimSpace(string(raw))
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var reply struct {
		MealName      *string  `json:"mealName"`
		Calories      *float64 `json:"calories"`
		Protein       *float64 `json:"protein"`
		Carbohydrates *float64 `json:"carbohydrates"`
		Fat           *float64 `json:"fat"`
		Sugar         *float64 `json:"sugar"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return model.Estimate{}, fmt.Errorf("vision: parsing response: %w", err)
	}
	if reply.MealName == nil || reply.Calories == nil || reply.Protein == nil ||
		reply.Carbohydrates == nil || reply.Fat == nil || reply.Sugar == nil {
		return model.Estimate{}, fmt.Errorf("vision: response is missing required fields")
	}

	est := model.Estimate{
		MealName:      strings.TrimSpace(*reply.MealName),
		Calories:      *reply.Calories,
		Protein:       *reply.Protein,
		Carbohydrates: *reply.Carbohydrates,
		Fat:           *reply.Fat,
		Sugar:         *reply.Sugar,
	}
	if est.Calories < 0 || est.Protein < 0 || est.Carbohydrates < 0 || est.Fat < 0 || est.Sugar < 0 {
		return model.Estimate{}, fmt.Errorf("vision: response contains negative values")
	}
	if est.MealName == "" {
		est.MealName = "Unnamed Meal"
	}
	return est, nil
}

func estimateSchema() *genai.Schema {
	number := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"mealName":      {Type: genai.TypeString, Description: "A short, descriptive name for the meal."},
			"calories":      number("Estimated total calories."),
			"protein":       number("Estimated protein in grams."),
			"carbohydrates": number("Estimated carbohydrates in grams."),
			"fat":           number("Estimated fat in grams."),
			"sugar":         number("Estimated sugar in grams."),
		},
		Required: []string{"mealName", "calories", "protein", "carbohydrates", "fat", "sugar"},
	}
}
