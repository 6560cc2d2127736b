package validation

import "testing"

func TestIsValidSubjectCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"CS101", true},
		{"MATH201", true},
		{"EE305", true},
		{"cs101", false},
		{"C101", false},
		{"CS1", false},
		{"CS10100", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidSubjectCode(tt.code); got != tt.want {
			t.Errorf("IsValidSubjectCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsValidSemester(t *testing.T) {
	tests := []struct {
		semester string
		want     bool
	}{
		{"2024-1", true},
		{"2024-2", true},
		{"2024-3", false},
		{"24-1", false},
		{"2024", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidSemester(tt.semester); got != tt.want {
			t.Errorf("IsValidSemester(%q) = %v, want %v", tt.semester, got, tt.want)
		}
	}
}

func TestValidTimeSlots(t *testing.T) {
	if bad, ok := ValidTimeSlots([]string{"Mon-1", "Fri-9"}); !ok {
		t.Errorf("expected valid slots, got invalid %q", bad)
	}

	bad, ok := ValidTimeSlots([]string{"Mon-1", "Monday-1"})
	if ok {
		t.Fatal("expected invalid slot to be reported")
	}
	if bad != "Monday-1" {
		t.Errorf("expected offending slot Monday-1, got %q", bad)
	}

	if _, ok := ValidTimeSlots(nil); !ok {
		t.Error("empty slot list should be valid")
	}
}
