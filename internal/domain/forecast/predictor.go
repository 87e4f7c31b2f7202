// internal/domain/forecast/predictor.go
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/your-org/pharmacy-backend/internal/config"
)

// Predictor estimates demand for one product. Implementations are best-effort;
// any error makes the caller fall back to the moving average.
type Predictor interface {
	Predict(ctx context.Context, product ProductContext) (*Prediction, error)
}

// Gemini API structures
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GeminiPredictor asks the Gemini generateContent endpoint for a forecast
type GeminiPredictor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGeminiPredictor returns nil when no API key is configured
func NewGeminiPredictor(cfg *config.Config) *GeminiPredictor {
	if cfg.Forecast.GeminiAPIKey == "" {
		return nil
	}
	return &GeminiPredictor{
		apiKey:   cfg.Forecast.GeminiAPIKey,
		model:    cfg.Forecast.GeminiModel,
		endpoint: strings.TrimRight(cfg.Forecast.GeminiEndpoint, "/"),
		client:   &http.Client{Timeout: cfg.Forecast.Timeout},
	}
}

// Predict sends one prompt and parses the JSON answer
func (g *GeminiPredictor) Predict(ctx context.Context, product ProductContext) (*Prediction, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(product)}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.endpoint, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send Gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("Gemini response has no candidates")
	}

	return ParsePrediction(parsed.Candidates[0].Content.Parts[0].Text)
}

// ParsePrediction decodes a model answer, tolerating markdown code fences
func ParsePrediction(text string) (*Prediction, error) {
	cleaned := strings.NewReplacer("```json", "", "```", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)

	var prediction Prediction
	if err := json.Unmarshal([]byte(cleaned), &prediction); err != nil {
		return nil, fmt.Errorf("malformed prediction: %w", err)
	}
	if prediction.PredictedDemand <= 0 {
		return nil, fmt.Errorf("prediction has no demand")
	}
	if prediction.SafetyBuffer < 0 {
		prediction.SafetyBuffer = 0
	}
	return &prediction, nil
}

func buildPrompt(p ProductContext) string {
	return fmt.Sprintf(`Context: Pharmacy Inventory Management.
Product: %s (Category: %s)

Data:
- Past 30 Days Sales: %d units
- Current Stock: %d units
- Average Daily Sales: %.2f units/day

Task:
Predict the demand for the NEXT 30 days. Consider that real-world demand fluctuates.
Return a valid JSON object strictly with this structure. Do not add markdown formatting:
{
  "predictedDemand": number,
  "safetyBuffer": number,
  "reasoning": "short one sentence explanation"
}`, p.Name, p.Category, p.SoldLast30Days, p.CurrentStock, p.DailyRate)
}
