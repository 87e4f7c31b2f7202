// internal/domain/forecast/entity.go
package forecast

import "math"

// Status is the reorder classification of a product
type Status string

const (
	StatusCritical Status = "CRITICAL"
	StatusReorder  Status = "REORDER"
	StatusHealthy  Status = "HEALTHY"
)

const (
	// WindowDays is the trailing sales window and the forecast horizon
	WindowDays = 30
	// SafetyBufferPercent is the share of predicted demand held as buffer
	SafetyBufferPercent = 20

	fallbackExplanation = "Based on 30-day simple moving average."
	predictorPrefix     = "AI Analysis: "
)

// Row is one product line of the forecast report
type Row struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	CurrentStock    int     `json:"current_stock"`
	SoldLast30Days  int     `json:"sold_last_30_days"`
	DailyRate       float64 `json:"daily_rate"`
	PredictedDemand int     `json:"predicted_demand"`
	SafetyBuffer    int     `json:"safety_buffer"`
	Status          Status  `json:"status"`
	Suggestion      int     `json:"suggestion"`
	Explanation     string  `json:"explanation"`
}

// ProductContext is what a predictor is told about a product
type ProductContext struct {
	ProductID      string
	Name           string
	Category       string
	SoldLast30Days int
	CurrentStock   int
	DailyRate      float64
}

// Prediction is a predictor's demand estimate for the next window
type Prediction struct {
	PredictedDemand int    `json:"predictedDemand"`
	SafetyBuffer    int    `json:"safetyBuffer"`
	Reasoning       string `json:"reasoning"`
}

// Baseline computes demand and buffer from the trailing daily rate.
// Demand is ceil(rate × horizon) and the buffer is ceil(20% of demand), both
// in integer arithmetic so that e.g. 7 units sold never projects to 8.
func Baseline(sold int) (dailyRate float64, demand int, buffer int) {
	dailyRate = float64(sold) / WindowDays
	demand = ceilDiv(sold*WindowDays, WindowDays)
	buffer = ceilDiv(demand*SafetyBufferPercent, 100)
	return dailyRate, demand, buffer
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Classify derives the status and suggested reorder quantity
func Classify(stock, demand, buffer int) (Status, int) {
	target := demand + buffer
	if stock >= target {
		return StatusHealthy, 0
	}
	if stock == 0 {
		return StatusCritical, target
	}
	return StatusReorder, target - stock
}

func roundRate(rate float64) float64 {
	return math.Round(rate*100) / 100
}
