package entity

import (
	"time"
)

// Role is the two-value authorization flag carried in session tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash once the record has been persisted; handlers
// never serialize it. ResetDigest/ResetExpiry are both set while a password
// reset is in flight and both nil otherwise.
type User struct {
	ID             string
	Email          string
	FullName       string
	Password       string
	Role           Role
	AvatarPublicID string
	AvatarURL      string
	ResetDigest    *string
	ResetExpiry    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
