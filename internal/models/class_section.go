package models

import "time"

// ClassSection is a scheduled offering of a course with a seat limit.
type ClassSection struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	Course    string    `db:"course" json:"course"`
	Shift     string    `db:"shift" json:"shift"`
	Term      string    `db:"term" json:"term"`
	MaxSeats  int       `db:"max_seats" json:"max_seats"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassSectionDetail annotates a section with its live occupancy. The count is
// always derived from enrollments, never stored.
type ClassSectionDetail struct {
	ClassSection
	EnrolledCount int `db:"enrolled_count" json:"enrolled_count"`
}

// ClassSectionFilter encapsulates search parameters for listing sections.
type ClassSectionFilter struct {
	Search    string
	Term      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
