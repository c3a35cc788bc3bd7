package models

import "time"

// Patient is a person who can be booked for appointments.
type Patient struct {
	BaseModel
	FirstName     string     `gorm:"size:100;not null" json:"firstName"`
	LastName      string     `gorm:"size:100;not null" json:"lastName"`
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PhoneNumber   string     `gorm:"size:50" json:"phoneNumber,omitempty"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Address       string     `gorm:"size:255" json:"address,omitempty"`
	IsActive      bool       `gorm:"default:true;index" json:"isActive"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}
