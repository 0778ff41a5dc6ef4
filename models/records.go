package models

import "time"

// BookingRecord is the durable audit entry written after a successful commit.
type BookingRecord struct {
	ID                string    `bson:"id" json:"id"`
	Identity          string    `bson:"identity" json:"identity"` // phone
	BookingID         string    `bson:"bookingId" json:"bookingId"`
	EstablishmentID   string    `bson:"establishmentId" json:"establishmentId"`
	EstablishmentName string    `bson:"establishmentName" json:"establishmentName"`
	Date              string    `bson:"date" json:"date"`
	StartTime         string    `bson:"startTime" json:"startTime"`
	EndTime           string    `bson:"endTime" json:"endTime"`
	Services          []string  `bson:"services" json:"services"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}
