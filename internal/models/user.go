package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Email     string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"not null"`
	Password  string `gorm:"not null"`
	Role      string `gorm:"not null;default:'user'"`
	IsActive  bool   `gorm:"not null;default:true"`
	// MaxCoffees is the per-user consumption cap; nil means unlimited.
	MaxCoffees *int
	Notify     bool `gorm:"not null;default:false"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
