package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is an operator account. Password holds the bcrypt hash and is
// never serialized.
type AdminUser struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email    string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_admin_users_email"`
	Password string    `json:"-" gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// CredentialsRequest carries an email/password pair for register and login
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
