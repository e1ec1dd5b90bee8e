package services

import (
	"errors"
	"time"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"

	"gorm.io/gorm"
)

var ErrStockNotInitialized = errors.New("stock settings not initialized")

// GetStockSettings loads the singleton stock row.
func GetStockSettings(db *gorm.DB) (models.StockSettings, error) {
	var s models.StockSettings
	if err := db.First(&s, models.StockSettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s, ErrStockNotInitialized
		}
		return s, err
	}
	return s, nil
}

// EnsureStockSettings creates the singleton row if it does not exist yet.
// Called once at startup.
func EnsureStockSettings() error {
	var s models.StockSettings
	err := database.DB.First(&s, models.StockSettingsID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	s = models.StockSettings{
		ID:        models.StockSettingsID,
		UpdatedBy: "system",
		UpdatedAt: time.Now().UTC(),
	}
	return database.DB.Create(&s).Error
}

// UpdateStockSettings overwrites initial/current/min stock and records the
// acting admin. Values are validated at the handler; the row keeps the
// non-negative invariant because all inputs are >= 0.
func UpdateStockSettings(initial, current, min int, updatedBy string) (models.StockSettings, error) {
	updates := map[string]interface{}{
		"initial_stock": initial,
		"current_stock": current,
		"min_stock":     min,
		"updated_by":    updatedBy,
		"updated_at":    time.Now().UTC(),
	}
	if err := database.DB.Model(&models.StockSettings{}).
		Where("id = ?", models.StockSettingsID).
		Updates(updates).Error; err != nil {
		return models.StockSettings{}, err
	}
	return GetStockSettings(database.DB)
}

// decrementStockGuarded performs the compare-and-set decrement. The WHERE
// clause guards the invariant on its own: two racing requests cannot both
// take the last unit. Returns the number of rows affected (0 or 1).
func decrementStockGuarded(db *gorm.DB, n int) (int64, error) {
	res := db.Model(&models.StockSettings{}).
		Where("id = ? AND current_stock >= ?", models.StockSettingsID, n).
		Update("current_stock", gorm.Expr("current_stock - ?", n))
	return res.RowsAffected, res.Error
}

// debitStockFloored subtracts n from the counter, flooring at zero. Used
// by history edits where the ledger may already have diverged.
func debitStockFloored(db *gorm.DB, n int) error {
	return db.Model(&models.StockSettings{}).
		Where("id = ?", models.StockSettingsID).
		Update("current_stock",
			gorm.Expr("CASE WHEN current_stock >= ? THEN current_stock - ? ELSE 0 END", n, n)).Error
}

// creditStock adds n back to the counter. Credits are uncapped: deleting
// history can push current_stock above initial_stock.
func creditStock(db *gorm.DB, n int) error {
	return db.Model(&models.StockSettings{}).
		Where("id = ?", models.StockSettingsID).
		Update("current_stock", gorm.Expr("current_stock + ?", n)).Error
}

// ConsumedTotal sums all log deltas.
func ConsumedTotal(db *gorm.DB) (int, error) {
	var total int64
	err := db.Model(&models.CoffeeLog{}).
		Select("COALESCE(SUM(delta), 0)").Scan(&total).Error
	return int(total), err
}

// ConsumedCountForUser sums the user's log deltas.
func ConsumedCountForUser(db *gorm.DB, userID uint) (int, error) {
	var total int64
	err := db.Model(&models.CoffeeLog{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta), 0)").Scan(&total).Error
	return int(total), err
}

// StockStatus assembles the stock snapshot plus derived fields.
func StockStatus() (models.StockSettings, StockDerived, error) {
	s, err := GetStockSettings(database.DB)
	if err != nil {
		return s, StockDerived{}, err
	}
	total, err := ConsumedTotal(database.DB)
	if err != nil {
		return s, StockDerived{}, err
	}
	return s, DeriveStock(s.InitialStock, s.CurrentStock, s.MinStock, total), nil
}
