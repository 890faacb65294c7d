package models

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleProducer Role = "PRODUCER"
	RoleEditor   Role = "EDITOR"
	RoleReporter Role = "REPORTER"
)

type User struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
