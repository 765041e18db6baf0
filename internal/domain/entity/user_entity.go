package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Password     string    `json:"-"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Preferences  []string  `json:"preferences"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
