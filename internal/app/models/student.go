package models

import "time"

// Student is created when an application reaches Enrolled status. Exactly one
// exists per person; the application link is a weak back-reference.
type Student struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	PersonID       int64     `json:"personId" db:"person_id"`
	ApplicationID  *int64    `json:"applicationId,omitempty" db:"application_id"`
	StudentNumber  string    `json:"studentNumber" db:"student_number" example:"E0001"`
	EnrollmentDate time.Time `json:"enrollmentDate" db:"enrollment_date"`

	// Relations (populated when needed)
	Person      *Person      `json:"person,omitempty"`
	Application *Application `json:"application,omitempty"`
}
