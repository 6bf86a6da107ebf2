package family

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type parentResponse struct {
	ID                    uuid.UUID `json:"id"`
	UserID                uuid.UUID `json:"user_id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Email                 string    `json:"email,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	Address               string    `json:"address,omitempty"`
	EmergencyContactName  string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `json:"emergency_contact_phone,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func toParentResponse(p *family.Parent) parentResponse {
	return parentResponse{
		ID:                    p.ID,
		UserID:                p.UserID,
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		Email:                 p.Email,
		Phone:                 p.Phone,
		Address:               p.Address,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		CreatedAt:             p.CreatedAt,
	}
}

type childResponse struct {
	ID                 uuid.UUID     `json:"id"`
	RegistrationNumber string        `json:"registration_number"`
	FirstName          string        `json:"first_name"`
	LastName           string        `json:"last_name"`
	DateOfBirth        web.Date      `json:"date_of_birth"`
	Age                int           `json:"age"`
	Gender             family.Gender `json:"gender"`
	MedicalInfo        string        `json:"medical_info,omitempty"`
	IsActive           bool          `json:"is_active"`
	ParentIDs          []uuid.UUID   `json:"parents"`
}

func toChildResponse(c *family.Child, today time.Time) childResponse {
	return childResponse{
		ID:                 c.ID,
		RegistrationNumber: c.RegistrationNumber,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		DateOfBirth:        web.Date{Time: c.DateOfBirth},
		Age:                c.Age(today),
		Gender:             c.Gender,
		MedicalInfo:        c.MedicalInfo,
		IsActive:           c.IsActive,
		ParentIDs:          c.ParentIDs,
	}
}

type enrollmentResponse struct {
	ID        uuid.UUID               `json:"id"`
	ChildID   uuid.UUID               `json:"child_id"`
	Date      web.Date                `json:"enrollment_date"`
	Classroom family.Classroom        `json:"classroom"`
	Status    family.EnrollmentStatus `json:"status"`
}

func toEnrollmentResponse(e *family.Enrollment) enrollmentResponse {
	return enrollmentResponse{
		ID:        e.ID,
		ChildID:   e.ChildID,
		Date:      web.Date{Time: e.Date},
		Classroom: e.Classroom,
		Status:    e.Status,
	}
}
