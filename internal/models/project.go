package models

// Project is read-only reference data joined into lead, opportunity and visit rows.
type Project struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}
