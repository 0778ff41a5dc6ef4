package models

// Employee is a staff member attached to an establishment.
type Employee struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// Establishment is a location offering the selected services.
type Establishment struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Employees []Employee `json:"employees,omitempty"`
}
