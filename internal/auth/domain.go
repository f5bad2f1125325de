package auth

import (
	"time"

	"github.com/salesdesk/salesdesk/internal/shared"
)

// User represents a dashboard user account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         shared.Role
	IsActive     bool
	CreatedAt    time.Time
}
