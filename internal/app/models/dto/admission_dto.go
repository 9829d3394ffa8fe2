package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SiblingInput is one sibling entry from the enrollment form.
type SiblingInput struct {
	FullName   string `json:"fullName"`
	GradeLevel string `json:"gradeLevel"`
	IDNumber   string `json:"idNumber"`
}

// SchoolInput is one prior-school entry from the enrollment form.
type SchoolInput struct {
	School    string `json:"school"`
	GradeFrom string `json:"gradeFrom"`
	GradeTo   string `json:"gradeTo"`
	Average   string `json:"average"`
	Honors    string `json:"honors"`
}

// ApplicationRequest carries the flat enrollment-form payload. It binds from
// multipart form data; sibling and school lists arrive either JSON-encoded in
// the Siblings/Schools fields or already parsed when submitted as JSON.
type ApplicationRequest struct {
	// Personal data
	Email            string   `form:"email" json:"email" binding:"required,email"`
	FirstName        string   `form:"firstName" json:"firstName" binding:"required"`
	MiddleName       string   `form:"middleName" json:"middleName"`
	LastName         string   `form:"lastName" json:"lastName" binding:"required"`
	Suffix           string   `form:"suffix" json:"suffix"`
	LRN              string   `form:"lrn" json:"lrn"`
	BirthDate        string   `form:"birthDate" json:"birthDate"` // YYYY-MM-DD
	Gender           string   `form:"gender" json:"gender"`
	ContactNumber    string   `form:"contactNumber" json:"contactNumber"`
	CurrentAddress   string   `form:"currentAddress" json:"currentAddress"`
	PermanentAddress string   `form:"permanentAddress" json:"permanentAddress"`
	HealthConditions []string `form:"healthConditions" json:"healthConditions"`
	HasSiblings      bool     `form:"hasSiblings" json:"hasSiblings"`

	// Family background
	FatherName        string `form:"fatherName" json:"fatherName"`
	FatherOccupation  string `form:"fatherOccupation" json:"fatherOccupation"`
	FatherContact     string `form:"fatherContact" json:"fatherContact"`
	MotherName        string `form:"motherName" json:"motherName"`
	MotherOccupation  string `form:"motherOccupation" json:"motherOccupation"`
	MotherContact     string `form:"motherContact" json:"motherContact"`
	GuardianName      string `form:"guardianName" json:"guardianName"`
	GuardianRelation  string `form:"guardianRelation" json:"guardianRelation"`
	GuardianContact   string `form:"guardianContact" json:"guardianContact"`
	EmergencyName     string `form:"emergencyName" json:"emergencyName"`
	EmergencyContact  string `form:"emergencyContact" json:"emergencyContact"`
	EmergencyRelation string `form:"emergencyRelation" json:"emergencyRelation"`

	// Application
	SchoolYear        string `form:"schoolYear" json:"schoolYear" binding:"required"`
	YearLevel         string `form:"yearLevel" json:"yearLevel" binding:"required"`
	ApplicationNumber string `form:"applicationNumber" json:"applicationNumber"` // manual override, staff only
	Status            string `form:"status" json:"status"`
	ApplicationType   string `form:"applicationType" json:"applicationType"`
	Strand            string `form:"strand" json:"strand"`
	Classification    string `form:"classification" json:"classification"`
	LearningMode      string `form:"learningMode" json:"learningMode"`

	// Child lists, JSON-encoded when submitted as form fields
	Siblings string `form:"siblings" json:"-"`
	Schools  string `form:"schools" json:"-"`

	// Already-parsed lists when submitted as JSON
	SiblingList []SiblingInput `form:"-" json:"siblings"`
	SchoolList  []SchoolInput  `form:"-" json:"schools"`
}

// ParsedSiblings returns the sibling list, decoding the JSON-encoded form
// field when the structured list is absent.
func (r *ApplicationRequest) ParsedSiblings() ([]SiblingInput, error) {
	if len(r.SiblingList) > 0 {
		return r.SiblingList, nil
	}
	if strings.TrimSpace(r.Siblings) == "" {
		return nil, nil
	}
	var out []SiblingInput
	if err := json.Unmarshal([]byte(r.Siblings), &out); err != nil {
		return nil, fmt.Errorf("invalid siblings payload: %w", err)
	}
	return out, nil
}

// ParsedSchools returns the prior-school list, decoding the JSON-encoded form
// field when the structured list is absent.
func (r *ApplicationRequest) ParsedSchools() ([]SchoolInput, error) {
	if len(r.SchoolList) > 0 {
		return r.SchoolList, nil
	}
	if strings.TrimSpace(r.Schools) == "" {
		return nil, nil
	}
	var out []SchoolInput
	if err := json.Unmarshal([]byte(r.Schools), &out); err != nil {
		return nil, fmt.Errorf("invalid schools payload: %w", err)
	}
	return out, nil
}

// Document slot tags, in stored-filename order.
const (
	SlotCertificateOfEnrollment = "COE"
	SlotBirthCertificate        = "BC"
	SlotReportCardFront         = "RCF"
	SlotReportCardBack          = "RCB"
)

// ApplicationResponse is the stored key view of a created/updated application.
type ApplicationResponse struct {
	ID                int64  `json:"id" example:"1"`
	ApplicationNumber string `json:"applicationNumber" example:"E0001"`
	Status            string `json:"status" example:"Pending"`
}

// ApplicationFilter carries list-endpoint query parameters.
type ApplicationFilter struct {
	Status     string `form:"status"`
	Category   string `form:"category"`
	SchoolYear string `form:"schoolYear"`
	Page       int    `form:"page"`
	Size       int    `form:"size"`
}
