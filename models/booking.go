package models

// CustomerInfo is the contact data collected before a booking is submitted.
type CustomerInfo struct {
	Name        string `json:"name"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	PhoneCode   string `json:"phoneCode"` // e.g. "+593"
}

// BookingDraft is the accumulating, partially complete booking selection.
// Fields fill in step order; replacing an earlier selection clears everything
// after it.
type BookingDraft struct {
	Services      []ServiceOffering `json:"services,omitempty"`
	Establishment *Establishment    `json:"establishment,omitempty"`
	Date          string            `json:"date,omitempty"` // ISO date, e.g. "2025-12-22"
	Slot          *TimeSlot         `json:"slot,omitempty"`
	Customer      CustomerInfo      `json:"customer"`
}

// TotalDuration is the summed duration of the selected services in minutes.
func (d *BookingDraft) TotalDuration() int {
	return TotalDuration(d.Services)
}

// ServiceIDs returns the ids of the selected services.
func (d *BookingDraft) ServiceIDs() []string {
	return ServiceIDs(d.Services)
}

// BookingTransaction is the immutable result of a successful commit.
type BookingTransaction struct {
	BookingID     string            `json:"_id"`
	Establishment Establishment     `json:"establishment"`
	Date          string            `json:"date"`
	StartTime     string            `json:"startTime"`
	EndTime       string            `json:"endTime"`
	Customer      CustomerInfo      `json:"customer"`
	Services      []ServiceOffering `json:"services"`
	State         string            `json:"state,omitempty"`
}
