package models

// DashboardSummary carries the aggregate counts shown on the admin landing
// page. All values are derived live from the record store.
type DashboardSummary struct {
	ActiveStudents      int `json:"active_students"`
	OpenSections        int `json:"open_sections"`
	TermEnrollments     int `json:"term_enrollments"`
	OpenServiceRequests int `json:"open_service_requests"`
}
