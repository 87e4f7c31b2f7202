// internal/domain/forecast/service.go
package forecast

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service builds the demand forecast report
type Service struct {
	db          *gorm.DB
	predictor   Predictor
	cache       Cache
	log         *logrus.Logger
	concurrency int
	now         func() time.Time
}

// NewService creates a forecast service. predictor may be nil and cache
// defaults to NoopCache.
func NewService(db *gorm.DB, predictor Predictor, cache Cache, log *logrus.Logger, concurrency int) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		db:          db,
		predictor:   predictor,
		cache:       cache,
		log:         log,
		concurrency: concurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type productStock struct {
	ID       string
	Name     string
	Category string
	Stock    int64
}

type productSold struct {
	ProductID string
	Sold      int64
}

// Generate returns one row per product, CRITICAL rows first
func (s *Service) Generate(ctx context.Context) ([]Row, error) {
	if rows, ok, err := s.cache.Get(ctx); err != nil {
		s.log.WithError(err).Warn("Forecast cache read failed")
	} else if ok {
		return rows, nil
	}

	db := s.db.WithContext(ctx)

	var products []productStock
	if err := db.Raw(`
		SELECT p.id, p.name, p.category, COALESCE(SUM(b.quantity), 0) AS stock
		FROM products p
		LEFT JOIN batches b ON b.product_id = p.id
		GROUP BY p.id, p.name, p.category
		ORDER BY p.name ASC, p.id ASC
	`).Scan(&products).Error; err != nil {
		return nil, apperror.Internal("failed to load product stock", err)
	}

	since := s.now().AddDate(0, 0, -WindowDays)
	var soldRows []productSold
	if err := db.Raw(`
		SELECT b.product_id, COALESCE(SUM(si.quantity), 0) AS sold
		FROM sale_items si
		JOIN batches b ON b.id = si.batch_id
		JOIN sales s ON s.id = si.sale_id
		WHERE s.created_at >= ?
		GROUP BY b.product_id
	`, since).Scan(&soldRows).Error; err != nil {
		return nil, apperror.Internal("failed to load recent sales", err)
	}

	sold := make(map[string]int, len(soldRows))
	for _, r := range soldRows {
		sold[r.ProductID] = int(r.Sold)
	}

	rows := make([]Row, len(products))
	for i, p := range products {
		rows[i] = baselineRow(p, sold[p.ID])
	}

	if s.predictor != nil {
		s.applyPredictions(ctx, rows)
	}

	for i := range rows {
		rows[i].Status, rows[i].Suggestion = Classify(rows[i].CurrentStock, rows[i].PredictedDemand, rows[i].SafetyBuffer)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Status == StatusCritical && rows[j].Status != StatusCritical
	})

	if err := s.cache.Set(ctx, rows); err != nil {
		s.log.WithError(err).Warn("Forecast cache write failed")
	}

	return rows, nil
}

// StockChanged drops the cached report so the next one reads current stock.
// A failure is logged; the entry then lives until its TTL.
func (s *Service) StockChanged(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("Forecast cache invalidation failed")
	}
}

func baselineRow(p productStock, sold int) Row {
	rate, demand, buffer := Baseline(sold)
	return Row{
		ProductID:       p.ID,
		Name:            p.Name,
		Category:        p.Category,
		CurrentStock:    int(p.Stock),
		SoldLast30Days:  sold,
		DailyRate:       roundRate(rate),
		PredictedDemand: demand,
		SafetyBuffer:    buffer,
		Explanation:     fallbackExplanation,
	}
}

// applyPredictions fans out one predictor call per row with bounded
// concurrency. Failed calls leave the baseline untouched.
func (s *Service) applyPredictions(ctx context.Context, rows []Row) {
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(row *Row) {
			defer wg.Done()
			defer func() { <-sem }()

			prediction, err := s.predictor.Predict(ctx, ProductContext{
				ProductID:      row.ProductID,
				Name:           row.Name,
				Category:       row.Category,
				SoldLast30Days: row.SoldLast30Days,
				CurrentStock:   row.CurrentStock,
				DailyRate:      row.DailyRate,
			})
			if err != nil {
				s.log.WithError(err).WithField("product", row.Name).Warn("Demand predictor failed, using moving average")
				return
			}
			if prediction == nil || prediction.PredictedDemand <= 0 {
				return
			}

			row.PredictedDemand = prediction.PredictedDemand
			row.SafetyBuffer = prediction.SafetyBuffer
			row.Explanation = predictorPrefix + prediction.Reasoning
		}(&rows[i])
	}

	wg.Wait()
}
