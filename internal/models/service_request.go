package models

import "time"

// ServiceRequestType enumerates the kinds of secretariat requests.
type ServiceRequestType string

const (
	ServiceRequestDeclaration ServiceRequestType = "DECLARACAO"
	ServiceRequestTranscript  ServiceRequestType = "HISTORICO"
	ServiceRequestDuplicate   ServiceRequestType = "SEGUNDA_VIA"
	ServiceRequestOther       ServiceRequestType = "OUTROS"
)

// ServiceRequestStatus tracks handling progress. Transitions are free in any
// direction.
type ServiceRequestStatus string

const (
	ServiceRequestOpen       ServiceRequestStatus = "ABERTO"
	ServiceRequestInProgress ServiceRequestStatus = "EM_ANDAMENTO"
	ServiceRequestDone       ServiceRequestStatus = "CONCLUIDO"
)

// ServiceRequest is a student-initiated secretariat request (atendimento).
type ServiceRequest struct {
	ID          string               `db:"id" json:"id"`
	StudentID   string               `db:"student_id" json:"student_id"`
	Type        ServiceRequestType   `db:"type" json:"type"`
	RequestedAt time.Time            `db:"requested_at" json:"requested_at"`
	Status      ServiceRequestStatus `db:"status" json:"status"`
	Notes       string               `db:"notes" json:"notes"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `db:"updated_at" json:"updated_at"`
}

// ServiceRequestDetail adds the student name for listings.
type ServiceRequestDetail struct {
	ServiceRequest
	StudentName string `db:"student_name" json:"student_name"`
}

// ServiceRequestFilter provides filters for listing service requests.
type ServiceRequestFilter struct {
	StudentID string
	Status    ServiceRequestStatus
	Type      ServiceRequestType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
