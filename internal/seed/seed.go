package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/oguzd/campusreg/internal/app/models"
	appRepos "github.com/oguzd/campusreg/internal/app/repositories"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
)

// CreateDefaultData publishes a small demo catalog if the offerings are not
// there yet. Seed errors are collected and reported, never fatal.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	offeringRepo := appRepos.NewOfferingRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (Offerings)...")
	var finalErr error

	offerings := []*appModels.Offering{
		{
			SubjectCode:    "CS101",
			Semester:       "2026-1",
			Title:          "Introduction to Programming",
			Professor:      "G. Aksoy",
			Classification: appModels.ClassificationMandatory,
			CreditValue:    6,
			TotalSeats:     120,
			TimeSlots:      []string{"Mon-1", "Wed-2"},
		},
		{
			SubjectCode:    "CS201",
			Semester:       "2026-1",
			Title:          "Data Structures",
			Professor:      "E. Demirel",
			Classification: appModels.ClassificationMandatory,
			CreditValue:    6,
			TotalSeats:     80,
			TimeSlots:      []string{"Tue-3", "Thu-3"},
		},
		{
			SubjectCode:    "MATH120",
			Semester:       "2026-1",
			Title:          "Linear Algebra",
			Professor:      "B. Kaplan",
			Classification: appModels.ClassificationMandatory,
			CreditValue:    4,
			TotalSeats:     150,
			TimeSlots:      []string{"Mon-4", "Fri-1"},
		},
		{
			SubjectCode:    "ART105",
			Semester:       "2026-1",
			Title:          "History of Modern Art",
			Professor:      "S. Yalman",
			Classification: appModels.ClassificationElective,
			CreditValue:    3,
			TotalSeats:     40,
			TimeSlots:      []string{"Wed-5"},
		},
		{
			SubjectCode:    "PHYS110",
			Semester:       "2026-1",
			Title:          "Mechanics",
			Professor:      "O. Tuncer",
			Classification: appModels.ClassificationMandatory,
			CreditValue:    5,
			TotalSeats:     100,
			TimeSlots:      []string{"Tue-1", "Thu-2"},
		},
	}

	for _, offering := range offerings {
		err := offeringRepo.Create(ctx, offering)
		if err != nil && !errors.Is(err, apperrors.ErrOfferingAlreadyExists) {
			lgr.Error().Err(err).
				Str("subjectCode", offering.SubjectCode).
				Str("semester", string(offering.Semester)).
				Msg("Error creating seed offering")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check complete.")
	return finalErr
}
