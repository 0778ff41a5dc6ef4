package models

// ServiceOffering is one bookable service from the remote catalog.
// A fetched copy is advisory only; the remote system owns the truth.
type ServiceOffering struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Duration    int     `json:"duration"` // minutes
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type,omitempty"`
}

// TotalDuration sums the durations of a service selection in minutes.
func TotalDuration(services []ServiceOffering) int {
	total := 0
	for _, s := range services {
		total += s.Duration
	}
	return total
}

// ServiceIDs returns the ids of a service selection, in order.
func ServiceIDs(services []ServiceOffering) []string {
	ids := make([]string, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	return ids
}
