package models

import "time"

// GradeOutcome mirrors the situacao column of the notas table.
type GradeOutcome string

const (
	GradeOutcomeApproved GradeOutcome = "APROVADO"
	GradeOutcomeFailed   GradeOutcome = "REPROVADO"
	GradeOutcomeOngoing  GradeOutcome = "EM_CURSO"
)

// Grade is the single academic record of an enrollment. At most one row
// exists per enrollment; writes are create-or-replace keyed on enrollment_id.
type Grade struct {
	ID           string       `db:"id" json:"id"`
	EnrollmentID string       `db:"enrollment_id" json:"enrollment_id"`
	Score        float64      `db:"score" json:"score"`
	Attendance   float64      `db:"attendance" json:"attendance"`
	Outcome      GradeOutcome `db:"outcome" json:"outcome"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// GradeDetail enriches Grade with enrollment context for the history listing.
type GradeDetail struct {
	Grade
	StudentName   string `db:"student_name" json:"student_name"`
	StudentCPF    string `db:"student_cpf" json:"student_cpf"`
	SectionLabel  string `db:"section_label" json:"section_label"`
	SectionCourse string `db:"section_course" json:"section_course"`
}
