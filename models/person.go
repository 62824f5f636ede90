package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Person represents one alumni record plus the derived identity columns and
// the partner/founder annotations written back by the pipeline. It
// corresponds to the 'people' table. List-valued annotation columns are
// stored as JSON; one person can be associated with several companies.
type Person struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Enrollment string `gorm:"index" json:"enrollment"`

	DisplayName    string `gorm:"not null" json:"display_name"`
	NormalizedName string `gorm:"index" json:"normalized_name"`
	FatherName     string `json:"father_name,omitempty"`
	MotherName     string `json:"mother_name,omitempty"`

	// CleanCPF is the validated digits-only tax ID; empty when the source
	// value failed validation. IdentityHash is the salted HMAC token derived
	// from it; empty hash means no identity join is attempted for this row.
	CleanCPF     string `gorm:"index" json:"-"`
	IdentityHash string `gorm:"index" json:"identity_hash"`

	BirthDate      *int64 `json:"birth_date,omitempty"`      // Unix timestamp, nullable
	EnrollmentDate *int64 `json:"enrollment_date,omitempty"` // Unix timestamp, nullable
	CompletionDate *int64 `json:"completion_date,omitempty"` // Unix timestamp, nullable

	Age        *int   `json:"age,omitempty"`
	AgeBracket string `json:"age_bracket"`

	LastCourse   string `json:"last_course"`
	CourseCode   string `json:"course_code"`
	CourseLevel  string `json:"course_level"`
	CourseStatus string `json:"course_status"`

	// Match signals, written by the pipeline.
	MatchedByFragment bool `gorm:"not null;default:false" json:"matched_by_fragment"`
	MatchedByName     bool `gorm:"not null;default:false" json:"matched_by_name"`
	MatchedByNameOnly bool `gorm:"not null;default:false" json:"matched_by_name_only"`
	IsPartner         bool `gorm:"not null;default:false" json:"is_partner"`

	// Partner relationships confirmed by the matcher (JSON string lists).
	PartnerCompanyIDs datatypes.JSON `json:"partner_company_ids,omitempty"`
	AssociationDates  datatypes.JSON `json:"association_dates,omitempty"`

	// Founder inference output.
	IsFounder         bool           `gorm:"not null;default:false" json:"is_founder"`
	FounderCompanyIDs datatypes.JSON `json:"founder_company_ids,omitempty"`
	FoundingRelations datatypes.JSON `json:"founding_relations,omitempty"`

	// LastRunUUID records which pipeline run last annotated this row.
	LastRunUUID string `gorm:"index" json:"last_run_uuid,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// StringListJSON marshals a string slice into a JSON column value. A nil
// slice is stored as an empty list, never as null.
func StringListJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	out, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(out)
}

// StringListFromJSON unmarshals a JSON column back into a string slice,
// returning an empty slice for null or malformed values.
func StringListFromJSON(col datatypes.JSON) []string {
	if len(col) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(col, &values); err != nil || values == nil {
		return []string{}
	}
	return values
}
