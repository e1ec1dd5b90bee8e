package models

import "time"

// StockSettingsID is the fixed primary key of the singleton stock row.
const StockSettingsID uint = 1

// StockSettings holds the shared coffee counter. CurrentStock never goes
// below zero; it is only mutated through the guarded statements in the
// stock service.
type StockSettings struct {
	ID           uint `gorm:"primarykey"`
	InitialStock int  `gorm:"not null;default:0"`
	CurrentStock int  `gorm:"not null;default:0"`
	MinStock     int  `gorm:"not null;default:0"`
	UpdatedBy    string
	UpdatedAt    time.Time
}
