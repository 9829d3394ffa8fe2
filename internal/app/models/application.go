package models

import "time"

// ApplicationStatus enumerates the lifecycle of an admission attempt.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "Pending"
	StatusExamTaken ApplicationStatus = "Exam Taken"
	StatusEnrolled  ApplicationStatus = "Enrolled"
)

// Display aliases accepted on input alongside the canonical statuses.
const (
	StatusAliasActive   = "active"
	StatusAliasInactive = "inactive"
)

// StudentCategory is the derived grouping of an application by school level.
// It is computed from the year level text, never supplied by the applicant.
type StudentCategory string

const (
	CategoryLES StudentCategory = "LES" // Kindergarten to Grade 6
	CategoryJHS StudentCategory = "JHS" // Grade 7 to Grade 10
	CategorySHS StudentCategory = "SHS" // Grade 11 to Grade 12
)

// ApplicationType distinguishes how the application entered the system.
type ApplicationType string

const (
	TypeOnline ApplicationType = "Online"
	TypeOnsite ApplicationType = "Onsite"
)

// Application is one admission attempt tied to a person and a school year.
// A person may hold many applications across years and attempts.
type Application struct {
	ID                int64             `json:"id" db:"id" example:"1"`
	PersonID          int64             `json:"personId" db:"person_id"`
	ApplicationNumber string            `json:"applicationNumber" db:"application_number" example:"E0001"`
	Status            ApplicationStatus `json:"status" db:"status" example:"Pending"`
	SchoolYear        string            `json:"schoolYear" db:"school_year" example:"2026-2027"`
	YearLevel         string            `json:"yearLevel" db:"year_level" example:"Grade 7"`
	Category          *StudentCategory  `json:"category,omitempty" db:"category"` // derived, nullable
	ApplicationType   ApplicationType   `json:"applicationType" db:"application_type" example:"Online"`
	Strand            string            `json:"strand,omitempty" db:"strand"`
	Classification    string            `json:"classification,omitempty" db:"classification"`
	LearningMode      string            `json:"learningMode,omitempty" db:"learning_mode"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Person    *Person                  `json:"person,omitempty"`
	Schools   []EducationalBackground  `json:"schools,omitempty"`
	Documents *Documents               `json:"documents,omitempty"`
}

// EducationalBackground is one prior-school snapshot owned by an application,
// not the person. Replaced wholesale on update.
type EducationalBackground struct {
	ID            int64  `json:"id" db:"id"`
	ApplicationID int64  `json:"applicationId" db:"application_id"`
	School        string `json:"school" db:"school"`
	GradeFrom     string `json:"gradeFrom,omitempty" db:"grade_from"`
	GradeTo       string `json:"gradeTo,omitempty" db:"grade_to"`
	Average       string `json:"average,omitempty" db:"average"`
	Honors        string `json:"honors,omitempty" db:"honors"`
}

// Documents holds stored paths of up to four uploaded files for an
// application. An update merges only the slots resubmitted in that call.
type Documents struct {
	ID                      int64   `json:"id" db:"id"`
	ApplicationID           int64   `json:"applicationId" db:"application_id"`
	CertificateOfEnrollment *string `json:"certificateOfEnrollment,omitempty" db:"certificate_of_enrollment"`
	BirthCertificate        *string `json:"birthCertificate,omitempty" db:"birth_certificate"`
	ReportCardFront         *string `json:"reportCardFront,omitempty" db:"report_card_front"`
	ReportCardBack          *string `json:"reportCardBack,omitempty" db:"report_card_back"`
}

// NormalizeStatus maps display aliases onto canonical statuses. Unknown
// values are returned unchanged so validation can reject them downstream.
func NormalizeStatus(raw string) ApplicationStatus {
	switch raw {
	case StatusAliasActive:
		return StatusPending
	case StatusAliasInactive:
		return StatusExamTaken
	default:
		return ApplicationStatus(raw)
	}
}

// ValidStatus reports whether s is one of the canonical statuses.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusExamTaken, StatusEnrolled:
		return true
	}
	return false
}
