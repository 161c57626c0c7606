package models

import "time"

// UserProfile enthält die für die Auswertung relevanten Profildaten.
type UserProfile struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string `json:"email,omitempty" gorm:"index"`
	FullName string `json:"full_name,omitempty"`
	Gender   Gender `json:"gender" gorm:"not null;default:'both'"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
