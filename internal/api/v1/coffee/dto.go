package coffee

import (
	"time"

	"coffeestock-backend/internal/services"
)

// StatusResponse is the stock snapshot plus derived fields.
type StatusResponse struct {
	InitialStock    int       `json:"initial_stock"`
	CurrentStock    int       `json:"current_stock"`
	MinStock        int       `json:"min_stock"`
	ConsumedTotal   int       `json:"consumed_total"`
	ExpectedCurrent int       `json:"expected_current"`
	ManualDelta     int       `json:"manual_delta"`
	Low             bool      `json:"low"`
	UpdatedBy       string    `json:"updated_by"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ConsumeInput struct {
	Delta int `json:"delta" binding:"omitempty,gte=1"`
}

// ConsumeResponse reports the appended log entry and the state after it.
type ConsumeResponse struct {
	LogID      uint           `json:"log_id"`
	Delta      int            `json:"delta"`
	ConsumedAt time.Time      `json:"consumed_at"`
	Stock      StatusResponse `json:"stock"`
	Remaining  *int           `json:"remaining"`
}

type HistoryResponse struct {
	Entries []services.HistoryRow `json:"entries"`
	Total   int64                 `json:"total"`
}
