package models

import "time"

// Doctor is a practitioner whose schedule appointments are booked against.
type Doctor struct {
	BaseModel
	FirstName     string     `gorm:"size:100;not null" json:"firstName"`
	LastName      string     `gorm:"size:100;not null" json:"lastName"`
	Email         string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PhoneNumber   string     `gorm:"size:50" json:"phoneNumber,omitempty"`
	Specialty     string     `gorm:"size:100;index" json:"specialty,omitempty"`
	LicenseNumber string     `gorm:"size:100" json:"licenseNumber,omitempty"`
	IsActive      bool       `gorm:"default:true;index" json:"isActive"`
	DeactivatedAt *time.Time `json:"deactivatedAt,omitempty"`
}
