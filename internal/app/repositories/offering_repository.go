package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/dberrors"
)

// OfferingRepository handles database operations for offerings. It is the
// seat ledger: the only code in the application that writes
// offerings.remaining_seats.
type OfferingRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var offeringColumns = []string{
	"subject_code", "semester", "title", "professor", "classification",
	"credit_value", "total_seats", "remaining_seats", "time_slots", "created_at",
}

// Create creates a new offering with a full complement of seats
func (r *OfferingRepository) Create(ctx context.Context, offering *models.Offering) error {
	sql, args, err := r.sb.Insert("offerings").
		Columns("subject_code", "semester", "title", "professor", "classification",
			"credit_value", "total_seats", "remaining_seats", "time_slots").
		Values(offering.SubjectCode, offering.Semester, offering.Title, offering.Professor,
			offering.Classification, offering.CreditValue, offering.TotalSeats,
			offering.TotalSeats, offering.TimeSlots).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create offering query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&offering.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrOfferingAlreadyExists
		}
		return fmt.Errorf("error creating offering: %w", err)
	}

	offering.RemainingSeats = offering.TotalSeats
	return nil
}

func scanOffering(row pgx.Row) (*models.Offering, error) {
	var offering models.Offering
	err := row.Scan(
		&offering.SubjectCode,
		&offering.Semester,
		&offering.Title,
		&offering.Professor,
		&offering.Classification,
		&offering.CreditValue,
		&offering.TotalSeats,
		&offering.RemainingSeats,
		&offering.TimeSlots,
		&offering.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

// GetBySubjectSemester retrieves an offering by its natural key
func (r *OfferingRepository) GetBySubjectSemester(ctx context.Context, subjectCode string, semester models.Semester) (*models.Offering, error) {
	sql, args, err := r.sb.Select(offeringColumns...).
		From("offerings").
		Where(squirrel.Eq{"subject_code": subjectCode, "semester": semester}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get offering query: %w", err)
	}

	offering, err := scanOffering(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, fmt.Errorf("error retrieving offering: %w", err)
	}

	return offering, nil
}

// OfferingFilter narrows the offering listing
type OfferingFilter struct {
	Semester       models.Semester
	Classification models.Classification
	Offset         uint64
	Limit          int
}

func (f OfferingFilter) conditions() []squirrel.Sqlizer {
	var conditions []squirrel.Sqlizer
	if f.Semester != "" {
		conditions = append(conditions, squirrel.Eq{"semester": f.Semester})
	}
	if f.Classification != "" {
		conditions = append(conditions, squirrel.Eq{"classification": f.Classification})
	}
	return conditions
}

// List retrieves offerings matching the filter, newest first, along with the
// total match count for pagination.
func (r *OfferingRepository) List(ctx context.Context, filter OfferingFilter) ([]*models.Offering, int64, error) {
	conditions := filter.conditions()

	countQuery := r.sb.Select("COUNT(*)").From("offerings")
	for _, condition := range conditions {
		countQuery = countQuery.Where(condition)
	}

	sql, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count offerings query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting offerings: %w", err)
	}

	query := r.sb.Select(offeringColumns...).
		From("offerings").
		OrderBy("created_at DESC", "subject_code").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset)
	for _, condition := range conditions {
		query = query.Where(condition)
	}

	sql, args, err = query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list offerings query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing offerings: %w", err)
	}
	defer rows.Close()

	var offerings []*models.Offering
	for rows.Next() {
		offering, err := scanOffering(rows)
		if err != nil {
			return nil, 0, err
		}
		offerings = append(offerings, offering)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return offerings, total, nil
}

// Delete deletes an offering. Offerings that still have enrollments cannot
// be deleted; the enrollments FK turns such a delete into a constraint
// violation, so the check and the delete are a single atomic statement.
func (r *OfferingRepository) Delete(ctx context.Context, subjectCode string, semester models.Semester) error {
	sql, args, err := r.sb.Delete("offerings").
		Where(squirrel.Eq{"subject_code": subjectCode, "semester": semester}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete offering query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrOfferingHasEnrollments
		}
		return fmt.Errorf("error deleting offering: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}

	return nil
}

// TryReserve atomically claims one seat: the check and the decrement are a
// single conditional update, so concurrent reservations on the same offering
// can never drive the counter negative. Returns false without mutation when
// no seats remain.
func (r *OfferingRepository) TryReserve(ctx context.Context, q Querier, subjectCode string, semester models.Semester) (bool, error) {
	sql, args, err := r.sb.Update("offerings").
		Set("remaining_seats", squirrel.Expr("remaining_seats - 1")).
		Where(squirrel.Eq{"subject_code": subjectCode, "semester": semester}).
		Where("remaining_seats > 0").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build reserve seat query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error reserving seat: %w", err)
	}

	return cmdTag.RowsAffected() == 1, nil
}

// Release atomically returns one seat, clamped at total_seats. A release
// that would push the counter past capacity means the counter and the
// enrollment set disagree; that is surfaced as a consistency fault, never
// papered over by unclamped growth.
func (r *OfferingRepository) Release(ctx context.Context, q Querier, subjectCode string, semester models.Semester) error {
	sql, args, err := r.sb.Update("offerings").
		Set("remaining_seats", squirrel.Expr("remaining_seats + 1")).
		Where(squirrel.Eq{"subject_code": subjectCode, "semester": semester}).
		Where("remaining_seats < total_seats").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build release seat query: %w", err)
	}

	cmdTag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error releasing seat: %w", err)
	}

	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	sql, args, err = r.sb.Select("1").
		From("offerings").
		Where(squirrel.Eq{"subject_code": subjectCode, "semester": semester}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build offering existence query: %w", err)
	}

	var one int
	if err := q.QueryRow(ctx, sql, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrOfferingNotFound
		}
		return fmt.Errorf("error checking offering existence: %w", err)
	}

	return apperrors.ErrSeatInconsistency
}
