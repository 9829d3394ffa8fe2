package models

import "time"

// Person is the durable identity record for an applicant, independent of how
// many admission attempts they make. Email is the soft-unique business key.
type Person struct {
	ID               int64     `json:"id" db:"id" example:"1"`
	Email            string    `json:"email" db:"email" example:"juan.delacruz@example.com"`
	FirstName        string    `json:"firstName" db:"first_name" example:"Juan"`
	MiddleName       string    `json:"middleName,omitempty" db:"middle_name"`
	LastName         string    `json:"lastName" db:"last_name" example:"Dela Cruz"`
	Suffix           string    `json:"suffix,omitempty" db:"suffix"`
	LRN              string    `json:"lrn,omitempty" db:"lrn"` // government learner reference number
	BirthDate        *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	Gender           string    `json:"gender,omitempty" db:"gender"`
	ContactNumber    string    `json:"contactNumber,omitempty" db:"contact_number"`
	CurrentAddress   string    `json:"currentAddress,omitempty" db:"current_address"`
	PermanentAddress string    `json:"permanentAddress,omitempty" db:"permanent_address"`
	HealthConditions string    `json:"healthConditions,omitempty" db:"health_conditions"` // serialized list or "None"
	HasSiblings      bool      `json:"hasSiblings" db:"has_siblings"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// FamilyBackground is the one-to-one family record for a person. It is
// replaced wholesale on every submission; no history is kept.
type FamilyBackground struct {
	ID                int64  `json:"id" db:"id"`
	PersonID          int64  `json:"personId" db:"person_id"`
	FatherName        string `json:"fatherName,omitempty" db:"father_name"`
	FatherOccupation  string `json:"fatherOccupation,omitempty" db:"father_occupation"`
	FatherContact     string `json:"fatherContact,omitempty" db:"father_contact"`
	MotherName        string `json:"motherName,omitempty" db:"mother_name"`
	MotherOccupation  string `json:"motherOccupation,omitempty" db:"mother_occupation"`
	MotherContact     string `json:"motherContact,omitempty" db:"mother_contact"`
	GuardianName      string `json:"guardianName,omitempty" db:"guardian_name"`
	GuardianRelation  string `json:"guardianRelation,omitempty" db:"guardian_relation"`
	GuardianContact   string `json:"guardianContact,omitempty" db:"guardian_contact"`
	EmergencyName     string `json:"emergencyName,omitempty" db:"emergency_name"`
	EmergencyContact  string `json:"emergencyContact,omitempty" db:"emergency_contact"`
	EmergencyRelation string `json:"emergencyRelation,omitempty" db:"emergency_relation"`
}

// Sibling is one of zero or more sibling rows owned by a person.
type Sibling struct {
	ID         int64  `json:"id" db:"id"`
	PersonID   int64  `json:"personId" db:"person_id"`
	FullName   string `json:"fullName" db:"full_name"`
	GradeLevel string `json:"gradeLevel,omitempty" db:"grade_level"`
	IDNumber   string `json:"idNumber,omitempty" db:"id_number"`
}
