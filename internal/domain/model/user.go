package model

import "time"

// UserStatus is the account state of a marketplace user.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is a marketplace customer account as served by the upstream API.
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Status      UserStatus `json:"status"`
	Country     string     `json:"country"`
	TotalOrders int        `json:"totalOrders"`
	CreatedAt   time.Time  `json:"createdAt"`
}
