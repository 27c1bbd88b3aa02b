package model

import "time"

// User represents a registered user in the system.
//
// SessionToken and ResetToken are nullable: a non-nil SessionToken means the
// user has an active session, a non-nil ResetToken means a password-reset flow
// is in progress. The two fields are independent and may both be set at once.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	HashedPassword string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	SessionToken   *string   `json:"-" gorm:"uniqueIndex;size:36"`
	ResetToken     *string   `json:"-" gorm:"uniqueIndex;size:36"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
