package dto

import (
	"time"

	"github.com/oguzd/campusreg/internal/app/models"
)

// CreateOfferingRequest represents a request to create an offering
type CreateOfferingRequest struct {
	SubjectCode    string   `json:"subjectCode" binding:"required" example:"CS101"`
	Semester       string   `json:"semester" binding:"required" example:"2024-1"`
	Title          string   `json:"title" binding:"required" example:"Introduction to Programming"`
	Professor      string   `json:"professor" example:"Dr. Ayse Demir"`
	Classification string   `json:"classification" binding:"required,oneof=MANDATORY ELECTIVE" example:"MANDATORY"`
	CreditValue    int      `json:"creditValue" binding:"required,min=1" example:"3"`
	TotalSeats     int      `json:"totalSeats" binding:"required,min=1" example:"40"`
	TimeSlots      []string `json:"timeSlots" binding:"required,min=1" example:"Mon-1,Mon-2"`
}

// ToModel converts the request into an offering model
func (r *CreateOfferingRequest) ToModel() *models.Offering {
	return &models.Offering{
		SubjectCode:    r.SubjectCode,
		Semester:       models.Semester(r.Semester),
		Title:          r.Title,
		Professor:      r.Professor,
		Classification: models.Classification(r.Classification),
		CreditValue:    r.CreditValue,
		TotalSeats:     r.TotalSeats,
		TimeSlots:      r.TimeSlots,
	}
}

// OfferingResponse represents an offering in API responses
type OfferingResponse struct {
	SubjectCode    string    `json:"subjectCode" example:"CS101"`
	Semester       string    `json:"semester" example:"2024-1"`
	Title          string    `json:"title" example:"Introduction to Programming"`
	Professor      string    `json:"professor" example:"Dr. Ayse Demir"`
	Classification string    `json:"classification" example:"MANDATORY"`
	CreditValue    int       `json:"creditValue" example:"3"`
	TotalSeats     int       `json:"totalSeats" example:"40"`
	RemainingSeats int       `json:"remainingSeats" example:"12"`
	TimeSlots      []string  `json:"timeSlots" example:"Mon-1,Mon-2"`
	CreatedAt      time.Time `json:"createdAt"`
}

// OfferingListResponse wraps a paginated offering listing
type OfferingListResponse struct {
	Offerings  []OfferingResponse `json:"offerings"`
	Pagination PaginationInfo     `json:"pagination"`
}

// FromOffering converts a models.Offering to an OfferingResponse
func FromOffering(offering *models.Offering) OfferingResponse {
	return OfferingResponse{
		SubjectCode:    offering.SubjectCode,
		Semester:       string(offering.Semester),
		Title:          offering.Title,
		Professor:      offering.Professor,
		Classification: string(offering.Classification),
		CreditValue:    offering.CreditValue,
		TotalSeats:     offering.TotalSeats,
		RemainingSeats: offering.RemainingSeats,
		TimeSlots:      offering.TimeSlots,
		CreatedAt:      offering.CreatedAt,
	}
}

// FromOfferings converts a slice of offerings
func FromOfferings(offerings []*models.Offering) []OfferingResponse {
	responses := make([]OfferingResponse, 0, len(offerings))
	for _, offering := range offerings {
		responses = append(responses, FromOffering(offering))
	}
	return responses
}
