package models

import "time"

// StudentStatus mirrors the situacao column of the original schema.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ATIVO"
	StudentStatusInactive  StudentStatus = "INATIVO"
	StudentStatusSuspended StudentStatus = "TRANCADO"
)

// Student represents a learner registered at the secretariat.
type Student struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	CPF       string        `db:"cpf" json:"cpf"`
	BirthDate time.Time     `db:"birth_date" json:"birth_date"`
	Phone     string        `db:"phone" json:"phone"`
	Email     string        `db:"email" json:"email"`
	Address   string        `db:"address" json:"address"`
	Status    StudentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
