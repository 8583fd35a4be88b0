package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.0-flash"

// Gemini 2.0 Flash pricing (per million tokens)
const (
	geminiInputPricePerMillion  = 0.10 // $0.10 per 1M input tokens (text/image/video)
	geminiOutputPricePerMillion = 0.40 // $0.40 per 1M output tokens
)

const classifyPrompt = `You are an expert waste classification AI. Analyze this image of a waste item and classify it.

Provide your response in this EXACT JSON format (no markdown, no code blocks, just pure JSON):

{
  "materialType": "one of: Plastic, Paper, Metal, Glass, Organic, E-waste, Textile, or Mixed",
  "description": "brief 2-4 word description of the item",
  "recyclable": true or false,
  "binColor": "one of: Green, Blue, Yellow, or Red",
  "collectionType": "one of: E-Waste Collection, Recyclable Collection, Organic Collection, or General Waste",
  "specialHandling": true or false,
  "specialHandlingMessage": "if specialHandling is true, provide warning message in 10-15 words, otherwise null",
  "preparationSteps": ["step 1", "step 2", "step 3", "step 4"],
  "upcyclingIdea": "creative reuse suggestion in 10-20 words",
  "tip": "one practical recycling tip in 10-20 words",
  "examples": ["similar item 1", "similar item 2", "similar item 3"]
}

Color coding system:
- Green: Organic/Compostable waste
- Blue: Paper and cardboard
- Yellow: Plastic and metal
- Red: General/non-recyclable waste

Special handling examples:
- E-waste: batteries, electronics (requires special care)
- Hazardous: chemicals, sharp objects
- Bulky: furniture, appliances

Preparation steps should be practical actions before disposal.
Upcycling ideas should be creative and actionable.

Be accurate and specific in your classification.`

// GeminiClassifier uses Google's Gemini API for waste classification.
type GeminiClassifier struct {
	client *genai.Client
}

// NewGeminiClassifier creates a new Gemini-based classifier. The client is
// built once and reused across all requests.
func NewGeminiClassifier(ctx context.Context, apiKey string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClassifier{client: client}, nil
}

// Classify implements the Classifier interface using Gemini. An error is
// returned only when the model call itself fails; an unparseable reply
// yields the fallback result with a nil error.
func (g *GeminiClassifier) Classify(ctx context.Context, imageData []byte, mimeType string) (*Classification, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(classifyPrompt),
		{InlineData: &genai.Blob{Data: imageData, MIMEType: mimeType}},
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	var text string
	if len(resp.Candidates) > 0 {
		text = resp.Text()
	}
	log.Debug().Str("response", text).Msg("gemini classification response")

	result := ParseModelReply(text)

	usage := Usage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(resp.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens)
	}

	return &Classification{Result: result, Usage: usage}, nil
}

func calculateGeminiCost(inputTokens, outputTokens int64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * geminiInputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * geminiOutputPricePerMillion
	return inputCost + outputCost
}

// ParseModelReply parses the model's free-text reply into a Result. The
// model is asked for bare JSON but markdown fences still show up, so they
// are stripped before decoding. Parsing never fails: any reply that does
// not decode into the expected shape yields the fallback result.
func ParseModelReply(text string) *Result {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		log.Warn().Err(err).Str("response", text).Msg("failed to parse model reply, using fallback result")
		return FallbackResult()
	}

	result.Normalize()
	return &result
}
