package models

import "regexp"

// RoleType defines the role carried in the caller's token
type RoleType string

const (
	RoleStudent    RoleType = "STUDENT"
	RoleInstructor RoleType = "INSTRUCTOR"
)

// Semester identifies a registration term, e.g. "2024-1" or "2024-2".
type Semester string

var semesterPattern = regexp.MustCompile(`^\d{4}-[12]$`)

// IsValid checks that the semester token has the "YYYY-N" form.
func (s Semester) IsValid() bool {
	return semesterPattern.MatchString(string(s))
}

// Classification tags an offering within the curriculum
type Classification string

const (
	ClassificationMandatory Classification = "MANDATORY"
	ClassificationElective  Classification = "ELECTIVE"
)

// IsValid reports whether the classification is a known tag.
func (c Classification) IsValid() bool {
	return c == ClassificationMandatory || c == ClassificationElective
}
