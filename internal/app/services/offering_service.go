package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/app/repositories"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/validation"
)

// OfferingStore is the storage capability backing the offering catalog.
type OfferingStore interface {
	Create(ctx context.Context, offering *models.Offering) error
	GetBySubjectSemester(ctx context.Context, subjectCode string, semester models.Semester) (*models.Offering, error)
	List(ctx context.Context, filter repositories.OfferingFilter) ([]*models.Offering, int64, error)
	Delete(ctx context.Context, subjectCode string, semester models.Semester) error
}

// OfferingService handles offering catalog operations
type OfferingService struct {
	offerings OfferingStore
}

// NewOfferingService creates a new offering service instance
func NewOfferingService(offerings OfferingStore) *OfferingService {
	return &OfferingService{
		offerings: offerings,
	}
}

// validateOffering validates offering data before database operations
func (s *OfferingService) validateOffering(offering *models.Offering) error {
	if offering == nil {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "offering is nil")
	}

	if !validation.IsValidSubjectCode(offering.SubjectCode) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "subject code must be uppercase letters followed by three digits")
	}

	if !offering.Semester.IsValid() {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "semester must have the YYYY-N form")
	}

	title := strings.TrimSpace(offering.Title)
	if len(title) < validation.TitleMinLength || len(title) > validation.TitleMaxLength {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "title length is out of range")
	}

	if !offering.Classification.IsValid() {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "classification must be MANDATORY or ELECTIVE")
	}

	if offering.CreditValue <= 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "credit value must be positive")
	}

	if offering.TotalSeats <= 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "total seats must be positive")
	}

	if slot, ok := validation.ValidTimeSlots(offering.TimeSlots); !ok {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, fmt.Sprintf("invalid time slot %q", slot))
	}

	// An offering must not collide with itself.
	seen := make(map[string]struct{}, len(offering.TimeSlots))
	for _, slot := range offering.TimeSlots {
		if _, dup := seen[slot]; dup {
			return apperrors.NewCustomError(apperrors.ErrValidationFailed, fmt.Sprintf("duplicate time slot %q", slot))
		}
		seen[slot] = struct{}{}
	}

	return nil
}

// CreateOffering creates a new offering with all seats available
func (s *OfferingService) CreateOffering(ctx context.Context, offering *models.Offering) error {
	offering.Title = strings.TrimSpace(offering.Title)

	if err := s.validateOffering(offering); err != nil {
		return err
	}

	return s.offerings.Create(ctx, offering)
}

// GetOffering retrieves an offering by subject code and semester
func (s *OfferingService) GetOffering(ctx context.Context, subjectCode string, semester models.Semester) (*models.Offering, error) {
	if err := validateEnrollmentKey(subjectCode, semester); err != nil {
		return nil, err
	}

	return s.offerings.GetBySubjectSemester(ctx, subjectCode, semester)
}

// ListOfferings retrieves offerings matching the filter
func (s *OfferingService) ListOfferings(ctx context.Context, filter repositories.OfferingFilter) ([]*models.Offering, int64, error) {
	if filter.Semester != "" && !filter.Semester.IsValid() {
		return nil, 0, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid semester filter")
	}
	if filter.Classification != "" && !filter.Classification.IsValid() {
		return nil, 0, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid classification filter")
	}

	return s.offerings.List(ctx, filter)
}

// DeleteOffering deletes an offering that has no enrollments
func (s *OfferingService) DeleteOffering(ctx context.Context, subjectCode string, semester models.Semester) error {
	if err := validateEnrollmentKey(subjectCode, semester); err != nil {
		return err
	}

	return s.offerings.Delete(ctx, subjectCode, semester)
}
