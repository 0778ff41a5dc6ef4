package models

// SlotHour is the time window of a proposed slot, as the remote API renders it.
type SlotHour struct {
	StartTime string `json:"startTime"` // "11:00"
	EndTime   string `json:"endTime"`   // "11:10"
}

// TimeSlot is a proposed appointment window. It carries no reservation:
// the remote side may hand the same window to another customer at any time.
type TimeSlot struct {
	Establishment Establishment `json:"establishment"`
	Hour          SlotHour      `json:"hour"`
	Duration      int           `json:"duration,omitempty"`
	Employees     []Employee    `json:"employees,omitempty"`
}

// SameWindow reports whether two slots cover the exact same time window.
// Comparison is on the raw start/end strings, not parsed times.
func (s TimeSlot) SameWindow(other TimeSlot) bool {
	return s.Hour.StartTime == other.Hour.StartTime && s.Hour.EndTime == other.Hour.EndTime
}
