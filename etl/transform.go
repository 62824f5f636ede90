// Package etl holds the tabular stages of the reconciliation pipeline: the
// per-person basic transform and the final dataset assembly.
package etl

import (
	"time"

	"github.com/pedrolhs/egressolink/models"
	"github.com/pedrolhs/egressolink/utils"
)

// SourceRecord is one raw alumni roster row before any derivation. String
// fields arrive as found in the source; dates are pre-parsed by the reader
// and nil when absent or unparseable.
type SourceRecord struct {
	Enrollment string
	Name       string
	CPF        string
	FatherName string
	MotherName string

	BirthDate      *time.Time
	EnrollmentDate *time.Time
	CompletionDate *time.Time

	Course       string
	CourseCode   string
	CourseLevel  string
	CourseStatus string
}

// TransformPerson derives the identity and demographic columns for one
// roster row: normalized names, the validated CPF, the salted identity hash,
// and the age bracket. It is a pure function of (record, salt, now); rows
// with an invalid CPF come out with empty CleanCPF and IdentityHash and are
// skipped by the identity join downstream, never dropped.
func TransformPerson(rec SourceRecord, salt string, now time.Time) models.Person {
	person := models.Person{
		Enrollment:     rec.Enrollment,
		DisplayName:    rec.Name,
		NormalizedName: utils.NormalizeName(rec.Name),
		FatherName:     utils.NormalizeName(rec.FatherName),
		MotherName:     utils.NormalizeName(rec.MotherName),
		LastCourse:     rec.Course,
		CourseCode:     rec.CourseCode,
		CourseLevel:    rec.CourseLevel,
		CourseStatus:   rec.CourseStatus,
		AgeBracket:     utils.AgeBracketUnknown,
	}

	person.CleanCPF = utils.CleanCPF(rec.CPF)
	person.IdentityHash = utils.HashIdentifier(person.CleanCPF, salt)

	if rec.BirthDate != nil {
		ts := rec.BirthDate.Unix()
		person.BirthDate = &ts
		age := utils.AgeAt(*rec.BirthDate, now)
		person.Age = &age
		person.AgeBracket = utils.AgeBracket(age)
	}
	if rec.EnrollmentDate != nil {
		ts := rec.EnrollmentDate.Unix()
		person.EnrollmentDate = &ts
	}
	if rec.CompletionDate != nil {
		ts := rec.CompletionDate.Unix()
		person.CompletionDate = &ts
	}

	return person
}
