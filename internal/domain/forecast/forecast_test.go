// internal/domain/forecast/forecast_test.go
package forecast

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/config"
)

func TestBaseline(t *testing.T) {
	tests := []struct {
		sold   int
		rate   float64
		demand int
		buffer int
	}{
		{0, 0, 0, 0},
		{7, 7.0 / 30, 7, 2},
		{30, 1, 30, 6},
		{45, 1.5, 45, 9},
		{50, 50.0 / 30, 50, 10},
	}
	for _, tt := range tests {
		rate, demand, buffer := Baseline(tt.sold)
		assert.InDelta(t, tt.rate, rate, 1e-9, "sold %d", tt.sold)
		assert.Equal(t, tt.demand, demand, "sold %d", tt.sold)
		assert.Equal(t, tt.buffer, buffer, "sold %d", tt.sold)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		stock      int
		demand     int
		buffer     int
		status     Status
		suggestion int
	}{
		{"empty and needed", 0, 10, 2, StatusCritical, 12},
		{"short", 5, 45, 9, StatusReorder, 49},
		{"exactly covered", 12, 10, 2, StatusHealthy, 0},
		{"no demand", 0, 0, 0, StatusHealthy, 0},
		{"plenty", 500, 10, 2, StatusHealthy, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, suggestion := Classify(tt.stock, tt.demand, tt.buffer)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.suggestion, suggestion)
		})
	}
}

func TestParsePrediction(t *testing.T) {
	t.Run("plain and fenced json", func(t *testing.T) {
		for _, text := range []string{
			`{"predictedDemand": 40, "safetyBuffer": 8, "reasoning": "Flu season"}`,
			"```json\n{\"predictedDemand\": 40, \"safetyBuffer\": 8, \"reasoning\": \"Flu season\"}\n```",
		} {
			p, err := ParsePrediction(text)
			require.NoError(t, err)
			assert.Equal(t, 40, p.PredictedDemand)
			assert.Equal(t, 8, p.SafetyBuffer)
			assert.Equal(t, "Flu season", p.Reasoning)
		}
	})

	t.Run("negative buffer is clamped", func(t *testing.T) {
		p, err := ParsePrediction(`{"predictedDemand": 5, "safetyBuffer": -3}`)
		require.NoError(t, err)
		assert.Zero(t, p.SafetyBuffer)
	})

	t.Run("rejects unusable answers", func(t *testing.T) {
		for _, text := range []string{"", "I think about 40", `{"predictedDemand": 0}`, `{"predictedDemand": "lots"}`} {
			_, err := ParsePrediction(text)
			assert.Error(t, err, "text %q", text)
		}
	})
}

func TestGeminiPredictor(t *testing.T) {
	assert.Nil(t, NewGeminiPredictor(&config.Config{}))

	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" || r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"parts": []interface{}{
							map[string]interface{}{"text": "```json\n{\"predictedDemand\": 12, \"safetyBuffer\": 3, \"reasoning\": \"Steady\"}\n```"},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	cfg := &config.Config{Forecast: config.ForecastConfig{
		GeminiAPIKey:   "secret",
		GeminiModel:    "test-model",
		GeminiEndpoint: srv.URL + "/",
		Timeout:        2 * time.Second,
	}}
	predictor := NewGeminiPredictor(cfg)
	require.NotNil(t, predictor)

	p, err := predictor.Predict(context.Background(), ProductContext{Name: "Cetirizine", Category: "Antihistamine", SoldLast30Days: 9, CurrentStock: 2, DailyRate: 0.3})
	require.NoError(t, err)
	assert.Equal(t, 12, p.PredictedDemand)
	assert.Equal(t, 3, p.SafetyBuffer)
	assert.Contains(t, gotPrompt, "Product: Cetirizine (Category: Antihistamine)")
	assert.Contains(t, gotPrompt, "Past 30 Days Sales: 9 units")

	cfg.Forecast.GeminiModel = "other-model"
	_, err = NewGeminiPredictor(cfg).Predict(context.Background(), ProductContext{Name: "X"})
	assert.Error(t, err)
}
