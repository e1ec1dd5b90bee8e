package history

import (
	"time"

	"coffeestock-backend/internal/services"
)

type HistoryListResponse struct {
	Entries []services.HistoryRow `json:"entries"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
}

// UpdateLogRequest edits a single history row. Either field may be
// omitted.
type UpdateLogRequest struct {
	Delta      *int       `json:"delta,omitempty" binding:"omitempty,gte=1"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
