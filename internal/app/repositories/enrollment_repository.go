package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/db"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/dberrors"
	"github.com/oguzd/campusreg/internal/pkg/schedule"
)

// EnrollmentRepository handles database operations for enrollments. Together
// with the service layer it is the only writer of the enrollment set; seat
// counter writes are delegated to the offering repository.
type EnrollmentRepository struct {
	db        *db.PostgresDB
	offerings *OfferingRepository
	sb        squirrel.StatementBuilderType
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(database *db.PostgresDB, offerings *OfferingRepository) *EnrollmentRepository {
	return &EnrollmentRepository{
		db:        database,
		offerings: offerings,
		sb:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Exists checks whether the student already holds an enrollment for the
// (subject, semester) pair.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) (bool, error) {
	return r.exists(ctx, r.db.Pool, studentID, subjectCode, semester)
}

func (r *EnrollmentRepository) exists(ctx context.Context, q Querier, studentID int64, subjectCode string, semester models.Semester) (bool, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "subject_code": subjectCode, "semester": semester}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment existence query: %w", err)
	}

	var count int
	if err := q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error checking enrollment existence: %w", err)
	}
	return count > 0, nil
}

// CreditLoad sums the credit value of every offering the student is
// enrolled in for the semester.
func (r *EnrollmentRepository) CreditLoad(ctx context.Context, studentID int64, semester models.Semester) (int, error) {
	return r.creditLoad(ctx, r.db.Pool, studentID, semester)
}

func (r *EnrollmentRepository) creditLoad(ctx context.Context, q Querier, studentID int64, semester models.Semester) (int, error) {
	sql, args, err := r.sb.Select("COALESCE(SUM(o.credit_value), 0)").
		From("enrollments e").
		Join("offerings o ON o.subject_code = e.subject_code AND o.semester = e.semester").
		Where(squirrel.Eq{"e.student_id": studentID, "e.semester": semester}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build credit load query: %w", err)
	}

	var load int
	if err := q.QueryRow(ctx, sql, args...).Scan(&load); err != nil {
		return 0, fmt.Errorf("error computing credit load: %w", err)
	}
	return load, nil
}

// OccupiedSlots returns the union of time slots across the student's
// enrollments for the semester.
func (r *EnrollmentRepository) OccupiedSlots(ctx context.Context, studentID int64, semester models.Semester) ([]string, error) {
	return r.occupiedSlots(ctx, r.db.Pool, studentID, semester)
}

func (r *EnrollmentRepository) occupiedSlots(ctx context.Context, q Querier, studentID int64, semester models.Semester) ([]string, error) {
	sql, args, err := r.sb.Select("o.time_slots").
		From("enrollments e").
		Join("offerings o ON o.subject_code = e.subject_code AND o.semester = e.semester").
		Where(squirrel.Eq{"e.student_id": studentID, "e.semester": semester}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build occupied slots query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving occupied slots: %w", err)
	}
	defer rows.Close()

	var occupied []string
	for rows.Next() {
		var slots []string
		if err := rows.Scan(&slots); err != nil {
			return nil, err
		}
		occupied = append(occupied, slots...)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return occupied, nil
}

// ListByStudent retrieves the student's enrollments for a semester with the
// offering details populated.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64, semester models.Semester) ([]*models.Enrollment, error) {
	sql, args, err := r.sb.Select(
		"e.student_id", "e.subject_code", "e.semester", "e.grade", "e.enrolled_at",
		"o.title", "o.professor", "o.classification", "o.credit_value",
		"o.total_seats", "o.remaining_seats", "o.time_slots", "o.created_at").
		From("enrollments e").
		Join("offerings o ON o.subject_code = e.subject_code AND o.semester = e.semester").
		Where(squirrel.Eq{"e.student_id": studentID, "e.semester": semester}).
		OrderBy("e.enrolled_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		var enrollment models.Enrollment
		var offering models.Offering
		if err := rows.Scan(
			&enrollment.StudentID,
			&enrollment.SubjectCode,
			&enrollment.Semester,
			&enrollment.Grade,
			&enrollment.EnrolledAt,
			&offering.Title,
			&offering.Professor,
			&offering.Classification,
			&offering.CreditValue,
			&offering.TotalSeats,
			&offering.RemainingSeats,
			&offering.TimeSlots,
			&offering.CreatedAt,
		); err != nil {
			return nil, err
		}
		offering.SubjectCode = enrollment.SubjectCode
		offering.Semester = enrollment.Semester
		enrollment.Offering = &offering
		enrollments = append(enrollments, &enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return enrollments, nil
}

// lockStudentSemester serializes admits and withdrawals for one student in
// one semester for the duration of the transaction. Without it, two
// concurrent requests for the same student could each validate against a
// snapshot that the other is about to invalidate.
func lockStudentSemester(ctx context.Context, tx pgx.Tx, studentID int64, semester models.Semester) error {
	key := fmt.Sprintf("%d:%s", studentID, semester)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return fmt.Errorf("error acquiring student lock: %w", err)
	}
	return nil
}

// Admit commits an admitted enrollment: inside one transaction it
// re-validates the duplicate, credit-cap, and time-conflict checks under a
// per-(student, semester) advisory lock, claims a seat through the seat
// ledger's conditional update, and inserts the enrollment row. Any failure
// rolls the whole transaction back, so a claimed seat is never left without
// its enrollment row.
func (r *EnrollmentRepository) Admit(ctx context.Context, studentID int64, offering *models.Offering, creditCap int) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockStudentSemester(ctx, tx, studentID, offering.Semester); err != nil {
			return err
		}

		exists, err := r.exists(ctx, tx, studentID, offering.SubjectCode, offering.Semester)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateEnrollment
		}

		load, err := r.creditLoad(ctx, tx, studentID, offering.Semester)
		if err != nil {
			return err
		}
		if load+offering.CreditValue >= creditCap {
			return apperrors.ErrCreditCapExceeded
		}

		occupied, err := r.occupiedSlots(ctx, tx, studentID, offering.Semester)
		if err != nil {
			return err
		}
		if schedule.HasConflict(occupied, offering.TimeSlots) {
			return apperrors.ErrTimeConflict
		}

		reserved, err := r.offerings.TryReserve(ctx, tx, offering.SubjectCode, offering.Semester)
		if err != nil {
			return err
		}
		if !reserved {
			// Lost the seat race since the optimistic read.
			return apperrors.ErrSeatsExhausted
		}

		sql, args, err := r.sb.Insert("enrollments").
			Columns("student_id", "subject_code", "semester").
			Values(studentID, offering.SubjectCode, offering.Semester).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert enrollment query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrDuplicateEnrollment
			}
			return fmt.Errorf("error inserting enrollment: %w", err)
		}

		return nil
	})
}

// Withdraw removes an enrollment and returns its seat in one transaction.
// The delete runs first; the seat is released only once the row is
// confirmed gone. A clamped release aborts the transaction so the delete is
// undone and the fault surfaces instead of leaking a phantom seat.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, studentID int64, subjectCode string, semester models.Semester) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockStudentSemester(ctx, tx, studentID, semester); err != nil {
			return err
		}

		sql, args, err := r.sb.Delete("enrollments").
			Where(squirrel.Eq{"student_id": studentID, "subject_code": subjectCode, "semester": semester}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build delete enrollment query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error deleting enrollment: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotEnrolled
		}

		if err := r.offerings.Release(ctx, tx, subjectCode, semester); err != nil {
			if errors.Is(err, apperrors.ErrOfferingNotFound) {
				// Enrollment rows are FK-bound to offerings; reaching this
				// means the schema contract was violated elsewhere.
				return apperrors.ErrSeatInconsistency
			}
			return err
		}

		return nil
	})
}
