package models

import (
	"time"
)

type User struct {
	ID                 string
	Username           string
	PasswordHash       string
	RoleID             int
	IsActive           bool
	FailedAttemptCount int // consecutive wrong-password attempts, reset on success
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
