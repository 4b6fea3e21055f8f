// File: models/patient.go
package models

import "time"

// PatientRecord is keyed by phone number.
type PatientRecord struct {
	ID                string     `bson:"id" json:"id"`
	Phone             string     `bson:"phone" json:"phone"`
	Name              string     `bson:"name" json:"name"`
	Email             string     `bson:"email,omitempty" json:"email,omitempty"`
	PreferredLanguage string     `bson:"preferredLanguage" json:"preferredLanguage"`
	TotalAppointments int        `bson:"totalAppointments" json:"totalAppointments"`
	TotalCalls        int        `bson:"totalCalls" json:"totalCalls"`
	Notes             string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
	LastContact       *time.Time `bson:"lastContact,omitempty" json:"lastContact,omitempty"`
}
