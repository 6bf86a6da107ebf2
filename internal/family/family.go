// Package family holds parents, the children they are guardians of and the
// children's classroom enrollments.
package family

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Classroom string

const (
	ClassroomToddlers  Classroom = "toddlers"
	ClassroomPreschool Classroom = "preschool"
	ClassroomPreK      Classroom = "pre_k"
)

func (c Classroom) Valid() bool {
	switch c {
	case ClassroomToddlers, ClassroomPreschool, ClassroomPreK:
		return true
	}

	return false
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentInactive  EnrollmentStatus = "inactive"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

type Parent struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	FirstName             string
	LastName              string
	Phone                 string
	Address               string
	EmergencyContactName  string
	EmergencyContactPhone string
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// Email comes from the linked user account.
	Email string
}

func (p *Parent) FullName() string {
	return p.FirstName + " " + p.LastName
}

type Child struct {
	ID                 uuid.UUID
	RegistrationNumber string
	FirstName          string
	LastName           string
	DateOfBirth        time.Time
	Gender             Gender
	MedicalInfo        string
	IsActive           bool
	ParentIDs          []uuid.UUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (c *Child) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Age is the child's age in whole years on today.
func (c *Child) Age(today time.Time) int {
	years := today.Year() - c.DateOfBirth.Year()

	if today.Month() < c.DateOfBirth.Month() ||
		(today.Month() == c.DateOfBirth.Month() && today.Day() < c.DateOfBirth.Day()) {
		years--
	}

	return years
}

type Enrollment struct {
	ID        uuid.UUID
	ChildID   uuid.UUID
	Date      time.Time
	Classroom Classroom
	Status    EnrollmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
