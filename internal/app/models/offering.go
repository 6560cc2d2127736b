package models

import "time"

// Offering represents a subject taught in a specific semester with a bounded
// seat capacity and a fixed weekly schedule. RemainingSeats is owned by the
// seat ledger in OfferingRepository; no other code writes it.
type Offering struct {
	SubjectCode    string         `json:"subjectCode" db:"subject_code" example:"CS101"`
	Semester       Semester       `json:"semester" db:"semester" example:"2024-1"`
	Title          string         `json:"title" db:"title" example:"Introduction to Programming"`
	Professor      string         `json:"professor" db:"professor" example:"Dr. Ayse Demir"`
	Classification Classification `json:"classification" db:"classification" example:"MANDATORY"`
	CreditValue    int            `json:"creditValue" db:"credit_value" example:"3"`
	TotalSeats     int            `json:"totalSeats" db:"total_seats" example:"40"`
	RemainingSeats int            `json:"remainingSeats" db:"remaining_seats" example:"12"`
	TimeSlots      []string       `json:"timeSlots" db:"time_slots" example:"Mon-1,Mon-2"` // ordered slot tokens
	CreatedAt      time.Time      `json:"createdAt" db:"created_at"`
}
