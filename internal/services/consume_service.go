package services

import (
	"errors"
	"time"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"
	"coffeestock-backend/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrStockExhausted = errors.New("stock exhausted")
	ErrCapReached     = errors.New("consumption cap reached")
)

// ConsumeResult is returned to both the self-serve and the admin
// on-behalf endpoints.
type ConsumeResult struct {
	Log       models.CoffeeLog
	Stock     models.StockSettings
	Derived   StockDerived
	Remaining *int
}

// Consume runs the consumption state machine for the given user:
// cap check, stock check, guarded decrement, re-read verification, log
// append. Decrement and append run in one transaction so a failed append
// rolls the decrement back. The low-stock notification is dispatched in a
// detached goroutine after commit and can never fail the request.
func Consume(user models.User, delta int) (*ConsumeResult, error) {
	if delta <= 0 {
		delta = 1
	}

	var result ConsumeResult

	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Re-read the user inside the transaction so the cap check sees the
	// live row, not the middleware's cached copy.
	var acting models.User
	if err := tx.First(&acting, user.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	consumed, err := ConsumedCountForUser(tx, acting.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if CapExceeded(acting.MaxCoffees, consumed, delta) {
		tx.Rollback()
		return nil, ErrCapReached
	}

	before, err := GetStockSettings(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if before.CurrentStock <= 0 {
		tx.Rollback()
		return nil, ErrStockExhausted
	}

	rows, err := decrementStockGuarded(tx, delta)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	// Zero rows means the guard predicate failed: either the stock is
	// short of the requested delta, or a racing request took the last
	// units after our snapshot. Under READ COMMITTED the update
	// re-evaluates its predicate against the committed row, so this is
	// the authoritative lost-race signal; the snapshot comparison below
	// cannot be trusted on its own because the re-read may see the
	// winner's lower value.
	if rows == 0 {
		tx.Rollback()
		return nil, ErrStockExhausted
	}

	// Re-read and verify the decrement took effect relative to the
	// snapshot.
	after, err := GetStockSettings(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if after.CurrentStock >= before.CurrentStock {
		tx.Rollback()
		return nil, ErrStockExhausted
	}

	entry := models.CoffeeLog{
		UserID:     acting.ID,
		Delta:      delta,
		ConsumedAt: time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	total, err := ConsumedTotal(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	result.Log = entry
	result.Stock = after
	result.Derived = DeriveStock(after.InitialStock, after.CurrentStock, after.MinStock, total)
	result.Remaining = Remaining(acting.MaxCoffees, consumed+delta)

	if result.Derived.Low {
		go notifyLowStock(after.CurrentStock, after.MinStock)
	}

	logger.Log.Info("coffee consumed",
		zap.Uint("user_id", user.ID),
		zap.Int("delta", delta),
		zap.Int("current_stock", after.CurrentStock))

	return &result, nil
}

// notifyLowStock is the fire-and-forget fan-out. Errors are logged and
// ring-buffered, never returned to the consuming request.
func notifyLowStock(currentStock, minStock int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("low stock notification panicked", zap.Any("panic", r))
		}
	}()

	if err := BroadcastLowStock(currentStock, minStock); err != nil {
		RecordRuntimeError("mail", err)
		logger.Log.Error("low stock notification failed", zap.Error(err))
	}
}
