package models

import "time"

// CoffeeLog is one consumption event. Rows are immutable except through
// the admin history endpoints, which re-balance the stock counter.
type CoffeeLog struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	UserID     uint      `gorm:"index;not null"`
	User       User      `gorm:"constraint:OnDelete:CASCADE"`
	Delta      int       `gorm:"not null;default:1"`
	ConsumedAt time.Time `gorm:"index;not null"`
}
