package models

import "time"

// Enrollment binds one Student to one ClassSection. The pair is unique; the
// only lifecycle transitions are create and delete.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	SectionID  string    `db:"section_id" json:"section_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with student and section info for
// listings.
type EnrollmentDetail struct {
	Enrollment
	StudentName   string        `db:"student_name" json:"student_name"`
	StudentCPF    string        `db:"student_cpf" json:"student_cpf"`
	StudentStatus StudentStatus `db:"student_status" json:"student_status"`
	SectionLabel  string        `db:"section_label" json:"section_label"`
	SectionCourse string        `db:"section_course" json:"section_course"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	SectionID string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
