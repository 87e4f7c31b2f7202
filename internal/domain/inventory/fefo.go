// internal/domain/inventory/fefo.go
package inventory

import (
	"sort"

	"github.com/your-org/pharmacy-backend/internal/pkg/apperror"
)

// SelectBatch picks the batch that expires first among those with stock left.
// Batches sharing an expiry date keep their input order.
func SelectBatch(batches []Batch) (*Batch, error) {
	available := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.Quantity > 0 {
			available = append(available, b)
		}
	}
	if len(available) == 0 {
		return nil, apperror.Business("Out of stock")
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].ExpiryDate.Before(available[j].ExpiryDate)
	})

	selected := available[0]
	return &selected, nil
}
