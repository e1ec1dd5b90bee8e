package user

import "time"

type UserListItem struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"is_active"`
	MaxCoffees *int      `json:"max_coffees"`
	Notify     bool      `json:"notify"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type CreateUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"omitempty,oneof=admin user"`
	MaxCoffees *int   `json:"max_coffees" binding:"omitempty,gte=0"`
	Notify     bool   `json:"notify"`
}

// UpdateUserRequest carries selective field updates. MaxCoffees accepts
// -1 to clear the cap back to unlimited, since JSON null and an absent
// field are indistinguishable after binding.
type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty" binding:"omitempty,email"`
	Name       *string `json:"name,omitempty"`
	Password   *string `json:"password,omitempty" binding:"omitempty,min=8"`
	Role       *string `json:"role,omitempty" binding:"omitempty,oneof=admin user"`
	IsActive   *bool   `json:"is_active,omitempty"`
	MaxCoffees *int    `json:"max_coffees,omitempty" binding:"omitempty,gte=-1"`
	Notify     *bool   `json:"notify,omitempty"`
}

type ConsumeRequest struct {
	Delta int `json:"delta" binding:"omitempty,gte=1"`
}
