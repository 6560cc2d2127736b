package dto

import (
	"time"

	"github.com/oguzd/campusreg/internal/app/models"
)

// EnrollRequest represents a request to enroll in an offering
type EnrollRequest struct {
	SubjectCode string `json:"subjectCode" binding:"required" example:"CS101"`
	Semester    string `json:"semester" binding:"required" example:"2024-1"`
}

// EnrollmentResponse represents an enrollment in API responses
type EnrollmentResponse struct {
	StudentID   int64             `json:"studentId" example:"42"`
	SubjectCode string            `json:"subjectCode" example:"CS101"`
	Semester    string            `json:"semester" example:"2024-1"`
	Grade       *string           `json:"grade,omitempty"`
	EnrolledAt  time.Time         `json:"enrolledAt"`
	Offering    *OfferingResponse `json:"offering,omitempty"`
}

// EnrollmentListResponse wraps a student's enrollments for one semester
type EnrollmentListResponse struct {
	Semester     string               `json:"semester" example:"2024-1"`
	TotalCredits int                  `json:"totalCredits" example:"15"`
	Enrollments  []EnrollmentResponse `json:"enrollments"`
}

// FromEnrollment converts a models.Enrollment to an EnrollmentResponse
func FromEnrollment(enrollment *models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		StudentID:   enrollment.StudentID,
		SubjectCode: enrollment.SubjectCode,
		Semester:    string(enrollment.Semester),
		Grade:       enrollment.Grade,
		EnrolledAt:  enrollment.EnrolledAt,
	}
	if enrollment.Offering != nil {
		offering := FromOffering(enrollment.Offering)
		response.Offering = &offering
	}
	return response
}

// FromEnrollments converts a slice of enrollments
func FromEnrollments(enrollments []*models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, FromEnrollment(enrollment))
	}
	return responses
}
