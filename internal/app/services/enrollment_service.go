package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/schedule"
	"github.com/oguzd/campusreg/internal/pkg/validation"
)

// OfferingReader is the offering lookup capability the arbitrator consumes.
type OfferingReader interface {
	GetBySubjectSemester(ctx context.Context, subjectCode string, semester models.Semester) (*models.Offering, error)
}

// EnrollmentStore is the storage capability backing enrollment arbitration.
// Admit must re-validate the duplicate, credit-cap, and conflict checks
// atomically with the seat reservation and record insert; the snapshot reads
// (Exists, CreditLoad, OccupiedSlots) are only advisory.
type EnrollmentStore interface {
	Exists(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) (bool, error)
	CreditLoad(ctx context.Context, studentID int64, semester models.Semester) (int, error)
	OccupiedSlots(ctx context.Context, studentID int64, semester models.Semester) ([]string, error)
	ListByStudent(ctx context.Context, studentID int64, semester models.Semester) ([]*models.Enrollment, error)
	Admit(ctx context.Context, studentID int64, offering *models.Offering, creditCap int) error
	Withdraw(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) error
}

// EnrollmentService arbitrates enrollment requests and handles withdrawals
type EnrollmentService struct {
	offerings   OfferingReader
	enrollments EnrollmentStore
	creditCap   int
	logger      zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(offerings OfferingReader, enrollments EnrollmentStore, creditCap int, logger zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		offerings:   offerings,
		enrollments: enrollments,
		creditCap:   creditCap,
		logger:      logger,
	}
}

// validateEnrollmentKey validates the request identifiers before touching storage
func validateEnrollmentKey(subjectCode string, semester models.Semester) error {
	if !validation.IsValidSubjectCode(subjectCode) {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid subject code")
	}
	if !semester.IsValid() {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid semester")
	}
	return nil
}

// Enroll arbitrates a single enrollment request. Validation runs in a fixed
// order and each failure short-circuits with its own rejection: duplicate
// enrollment, exhausted seats, credit cap, then time conflict. The checks
// here run against a snapshot; the authoritative decision is made by the
// store's Admit, which repeats them atomically with the seat reservation.
// Rejections are expected outcomes and are returned, not logged as errors.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) (*models.Enrollment, error) {
	if err := validateEnrollmentKey(subjectCode, semester); err != nil {
		return nil, err
	}

	offering, err := s.offerings.GetBySubjectSemester(ctx, subjectCode, semester)
	if err != nil {
		return nil, err
	}

	exists, err := s.enrollments.Exists(ctx, studentID, subjectCode, semester)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateEnrollment
	}

	// Optimistic seat check; losing the race after this point still ends in
	// a SeatsExhausted rejection from Admit.
	if offering.RemainingSeats <= 0 {
		return nil, apperrors.ErrSeatsExhausted
	}

	load, err := s.enrollments.CreditLoad(ctx, studentID, semester)
	if err != nil {
		return nil, err
	}
	if load+offering.CreditValue >= s.creditCap {
		return nil, apperrors.ErrCreditCapExceeded
	}

	occupied, err := s.enrollments.OccupiedSlots(ctx, studentID, semester)
	if err != nil {
		return nil, err
	}
	if conflicts := schedule.Conflicts(occupied, offering.TimeSlots); len(conflicts) > 0 {
		s.logger.Debug().
			Int64("studentId", studentID).
			Str("subjectCode", subjectCode).
			Strs("conflictingSlots", conflicts).
			Msg("Enrollment rejected on schedule conflict")
		return nil, apperrors.ErrTimeConflict
	}

	if err := s.enrollments.Admit(ctx, studentID, offering, s.creditCap); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("studentId", studentID).
		Str("subjectCode", subjectCode).
		Str("semester", string(semester)).
		Msg("Enrollment admitted")

	// The snapshot predates the commit; account for the seat just claimed.
	offering.RemainingSeats--

	return &models.Enrollment{
		StudentID:   studentID,
		SubjectCode: subjectCode,
		Semester:    semester,
		EnrolledAt:  time.Now(),
		Offering:    offering,
	}, nil
}

// Withdraw removes the student's enrollment and returns the seat. A missing
// enrollment is an expected NotEnrolled rejection; a corrupted seat counter
// is a consistency fault and is logged before surfacing.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) error {
	if err := validateEnrollmentKey(subjectCode, semester); err != nil {
		return err
	}

	if err := s.enrollments.Withdraw(ctx, studentID, subjectCode, semester); err != nil {
		if errors.Is(err, apperrors.ErrSeatInconsistency) {
			s.logger.Error().
				Int64("studentId", studentID).
				Str("subjectCode", subjectCode).
				Str("semester", string(semester)).
				Msg("Seat counter inconsistency detected on withdrawal")
		}
		return err
	}

	s.logger.Info().
		Int64("studentId", studentID).
		Str("subjectCode", subjectCode).
		Str("semester", string(semester)).
		Msg("Enrollment withdrawn")

	return nil
}

// ListEnrollments returns the student's enrollments for a semester along
// with the committed credit total.
func (s *EnrollmentService) ListEnrollments(ctx context.Context, studentID int64, semester models.Semester) ([]*models.Enrollment, int, error) {
	if !semester.IsValid() {
		return nil, 0, apperrors.NewCustomError(apperrors.ErrValidationFailed, "invalid semester")
	}

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID, semester)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing enrollments: %w", err)
	}

	totalCredits := 0
	for _, enrollment := range enrollments {
		if enrollment.Offering != nil {
			totalCredits += enrollment.Offering.CreditValue
		}
	}

	return enrollments, totalCredits, nil
}
