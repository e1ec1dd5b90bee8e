package services

// Accounting rules over the stock ledger. These are pure functions so the
// self-serve consume path, the admin on-behalf path and the status/stats
// endpoints all derive the same numbers.

// StockDerived is the computed view of the singleton stock row.
type StockDerived struct {
	ConsumedTotal   int  `json:"consumed_total"`
	ExpectedCurrent int  `json:"expected_current"`
	ManualDelta     int  `json:"manual_delta"`
	Low             bool `json:"low"`
}

// DeriveStock computes the quantities that are never stored:
// expected_current = initial - consumed_total, and manual_delta as the
// divergence introduced by admin edits. ManualDelta is the only quantity
// allowed to be negative.
func DeriveStock(initialStock, currentStock, minStock, consumedTotal int) StockDerived {
	expected := initialStock - consumedTotal
	return StockDerived{
		ConsumedTotal:   consumedTotal,
		ExpectedCurrent: expected,
		ManualDelta:     currentStock - expected,
		Low:             currentStock <= minStock,
	}
}

// Remaining returns the user's remaining allowance, floored at zero, or
// nil when no cap is set.
func Remaining(maxCoffees *int, consumedCount int) *int {
	if maxCoffees == nil {
		return nil
	}
	r := *maxCoffees - consumedCount
	if r < 0 {
		r = 0
	}
	return &r
}

// CapExceeded reports whether consuming delta more would push the user
// past a finite cap. A nil cap never blocks.
func CapExceeded(maxCoffees *int, consumedCount, delta int) bool {
	if maxCoffees == nil {
		return false
	}
	return consumedCount+delta > *maxCoffees
}
