package models

import "time"

// Enrollment links one student to one offering. The (student, subject,
// semester) triple is unique; the row is created only by an admitted
// enrollment request and removed only by a withdrawal.
type Enrollment struct {
	StudentID   int64     `json:"studentId" db:"student_id" example:"42"`
	SubjectCode string    `json:"subjectCode" db:"subject_code" example:"CS101"`
	Semester    Semester  `json:"semester" db:"semester" example:"2024-1"`
	Grade       *string   `json:"grade,omitempty" db:"grade"` // set later by the grading subsystem
	EnrolledAt  time.Time `json:"enrolledAt" db:"enrolled_at"`

	// Relation (populated when needed)
	Offering *Offering `json:"offering,omitempty"`
}
