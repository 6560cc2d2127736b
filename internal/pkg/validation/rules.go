package validation

import (
	"regexp"
)

// Validation rule patterns
var (
	// Subject code pattern - 2 to 4 uppercase letters followed by 3 digits, e.g. CS101
	SubjectCodePattern = `^[A-Z]{2,4}\d{3}$`

	// Semester pattern - year and term, e.g. 2024-1
	SemesterPattern = `^\d{4}-[12]$`

	// Time slot pattern - three-letter day and period number, e.g. Mon-1
	TimeSlotPattern = `^(Mon|Tue|Wed|Thu|Fri|Sat|Sun)-[1-9]$`

	// Title validation min/max length
	TitleMinLength = 2
	TitleMaxLength = 255
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	SubjectCode *regexp.Regexp
	Semester    *regexp.Regexp
	TimeSlot    *regexp.Regexp
}{
	SubjectCode: regexp.MustCompile(SubjectCodePattern),
	Semester:    regexp.MustCompile(SemesterPattern),
	TimeSlot:    regexp.MustCompile(TimeSlotPattern),
}

// IsValidSubjectCode reports whether the subject code matches the expected form.
func IsValidSubjectCode(code string) bool {
	return CompiledPatterns.SubjectCode.MatchString(code)
}

// IsValidSemester reports whether the semester token matches the expected form.
func IsValidSemester(semester string) bool {
	return CompiledPatterns.Semester.MatchString(semester)
}

// IsValidTimeSlot reports whether a single slot token matches the expected form.
func IsValidTimeSlot(slot string) bool {
	return CompiledPatterns.TimeSlot.MatchString(slot)
}

// ValidTimeSlots checks every slot token and reports the first invalid one.
func ValidTimeSlots(slots []string) (string, bool) {
	for _, slot := range slots {
		if !IsValidTimeSlot(slot) {
			return slot, false
		}
	}
	return "", true
}
