package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	"coffeestock-backend/internal/database"
	"coffeestock-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrLogNotFound = errors.New("log entry not found")

// HistoryFilter defines criteria for filtering consumption history.
type HistoryFilter struct {
	UserID    *uint
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Page      int
}

// HistoryRow is a log entry joined to its owner's identity.
type HistoryRow struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Delta      int       `json:"delta"`
	ConsumedAt time.Time `json:"consumed_at"`
}

// FindHistory retrieves log rows joined to user identity, newest first.
func FindHistory(filter HistoryFilter) ([]HistoryRow, int64, error) {
	var rows []HistoryRow
	var total int64

	query := database.DB.Model(&models.CoffeeLog{}).
		Joins("JOIN users ON users.id = coffee_logs.user_id")

	if filter.UserID != nil {
		query = query.Where("coffee_logs.user_id = ?", *filter.UserID)
	}
	if filter.StartTime != nil {
		query = query.Where("coffee_logs.consumed_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("coffee_logs.consumed_at <= ?", *filter.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	err := query.
		Select("coffee_logs.id, coffee_logs.user_id, users.email, users.name, coffee_logs.delta, coffee_logs.consumed_at").
		Order("coffee_logs.consumed_at desc").
		Limit(filter.Limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

// UpdateLog edits a row's delta and/or timestamp. Only the difference
// between old and new delta is applied to the stock counter, and the
// owner's cap is re-validated against the adjusted total before commit.
func UpdateLog(id uint, newDelta *int, consumedAt *time.Time) (*models.CoffeeLog, error) {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var entry models.CoffeeLog
	if err := tx.First(&entry, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if consumedAt != nil {
		updates["consumed_at"] = consumedAt.UTC()
	}

	if newDelta != nil && *newDelta != entry.Delta {
		diff := *newDelta - entry.Delta

		var owner models.User
		if err := tx.First(&owner, entry.UserID).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		consumed, err := ConsumedCountForUser(tx, owner.ID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		// Adjusted total replaces the old delta with the new one.
		if owner.MaxCoffees != nil && consumed-entry.Delta+*newDelta > *owner.MaxCoffees {
			tx.Rollback()
			return nil, ErrCapReached
		}

		if diff > 0 {
			if err := debitStockFloored(tx, diff); err != nil {
				tx.Rollback()
				return nil, err
			}
		} else {
			if err := creditStock(tx, -diff); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		updates["delta"] = *newDelta
	}

	if len(updates) > 0 {
		if err := tx.Model(&entry).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := database.DB.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteLog removes one row and credits its delta back to the stock
// counter. The credit is uncapped.
func DeleteLog(id uint) error {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var entry models.CoffeeLog
	if err := tx.First(&entry, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLogNotFound
		}
		return err
	}

	if err := tx.Delete(&models.CoffeeLog{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := creditStock(tx, entry.Delta); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// DeleteHistory bulk-deletes log rows, all of them or one user's, and
// credits the net sum of the removed deltas back.
func DeleteHistory(userID *uint) (int64, error) {
	tx := database.DB.Begin()
	if tx.Error != nil {
		return 0, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	query := tx.Model(&models.CoffeeLog{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var removed int64
	if err := query.Select("COALESCE(SUM(delta), 0)").Scan(&removed).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	del := tx.Where("1 = 1")
	if userID != nil {
		del = tx.Where("user_id = ?", *userID)
	}
	res := del.Delete(&models.CoffeeLog{})
	if res.Error != nil {
		tx.Rollback()
		return 0, res.Error
	}

	if removed > 0 {
		if err := creditStock(tx, int(removed)); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// UserStats summarizes one user's consumption.
type UserStats struct {
	UserID        uint       `json:"user_id"`
	ConsumedCount int        `json:"consumed_count"`
	Remaining     *int       `json:"remaining"`
	LastConsumed  *time.Time `json:"last_consumed"`
}

// StatsForUser computes the per-user counters the admin dashboard shows.
func StatsForUser(user models.User) (UserStats, error) {
	consumed, err := ConsumedCountForUser(database.DB, user.ID)
	if err != nil {
		return UserStats{}, err
	}

	stats := UserStats{
		UserID:        user.ID,
		ConsumedCount: consumed,
		Remaining:     Remaining(user.MaxCoffees, consumed),
	}

	var last models.CoffeeLog
	err = database.DB.Where("user_id = ?", user.ID).
		Order("consumed_at desc").First(&last).Error
	if err == nil {
		t := last.ConsumedAt
		stats.LastConsumed = &t
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserStats{}, err
	}

	return stats, nil
}

// GenerateHistoryCSV renders all log rows joined to user identity as CSV.
// encoding/csv quote-escapes each field.
func GenerateHistoryCSV(rows []HistoryRow) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"ID", "Consumed At", "User ID", "Email", "Name", "Delta"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			fmt.Sprintf("%d", r.ID),
			r.ConsumedAt.Format(time.RFC3339),
			fmt.Sprintf("%d", r.UserID),
			r.Email,
			r.Name,
			fmt.Sprintf("%d", r.Delta),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// GenerateHistoryXLSX renders the same dump as a spreadsheet.
func GenerateHistoryXLSX(rows []HistoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "History"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	header := []interface{}{"ID", "Consumed At", "User ID", "Email", "Name", "Delta"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{r.ID, r.ConsumedAt.Format(time.RFC3339), r.UserID, r.Email, r.Name, r.Delta}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
