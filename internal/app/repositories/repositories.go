package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oguzd/campusreg/internal/db"
)

// Querier is the subset of pgx operations shared by the connection pool and
// open transactions. Seat ledger operations take a Querier so the same
// conditional update runs standalone or inside an admit transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	OfferingRepository   *OfferingRepository
	EnrollmentRepository *EnrollmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	offeringRepo := NewOfferingRepository(database.Pool)
	return &Repositories{
		OfferingRepository:   offeringRepo,
		EnrollmentRepository: NewEnrollmentRepository(database, offeringRepo),
	}
}
