package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oguzd/campusreg/internal/app/models"
	"github.com/oguzd/campusreg/internal/pkg/apperrors"
	"github.com/oguzd/campusreg/internal/pkg/schedule"
)

var errInsertFailed = errors.New("simulated insert failure")

// fakeStore is an in-memory implementation of OfferingReader and
// EnrollmentStore. Seat counters live behind per-offering mutexes and
// student-scoped checks run under a per-(student, semester) mutex, matching
// the locking granularity of the real storage layer.
type fakeStore struct {
	mu         sync.Mutex
	offerings  map[string]*fakeOffering
	records    map[string]bool
	studentMus map[string]*sync.Mutex
	failInsert bool
}

type fakeOffering struct {
	mu       sync.Mutex
	offering models.Offering
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		offerings:  make(map[string]*fakeOffering),
		records:    make(map[string]bool),
		studentMus: make(map[string]*sync.Mutex),
	}
}

func offeringKey(subjectCode string, semester models.Semester) string {
	return subjectCode + "|" + string(semester)
}

func recordKey(studentID int64, subjectCode string, semester models.Semester) string {
	return fmt.Sprintf("%d|%s|%s", studentID, subjectCode, semester)
}

func (f *fakeStore) addOffering(offering models.Offering) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offerings[offeringKey(offering.SubjectCode, offering.Semester)] = &fakeOffering{offering: offering}
}

// enrollDirect seeds an enrollment without seat accounting, for test setup.
func (f *fakeStore) enrollDirect(studentID int64, subjectCode string, semester models.Semester) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[recordKey(studentID, subjectCode, semester)] = true
}

func (f *fakeStore) remainingSeats(t *testing.T, subjectCode string, semester models.Semester) int {
	t.Helper()
	f.mu.Lock()
	state, ok := f.offerings[offeringKey(subjectCode, semester)]
	f.mu.Unlock()
	if !ok {
		t.Fatalf("offering %s %s not found", subjectCode, semester)
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.offering.RemainingSeats
}

func (f *fakeStore) studentMu(studentID int64, semester models.Semester) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d|%s", studentID, semester)
	mu, ok := f.studentMus[key]
	if !ok {
		mu = &sync.Mutex{}
		f.studentMus[key] = mu
	}
	return mu
}

func (f *fakeStore) GetBySubjectSemester(_ context.Context, subjectCode string, semester models.Semester) (*models.Offering, error) {
	f.mu.Lock()
	state, ok := f.offerings[offeringKey(subjectCode, semester)]
	f.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrOfferingNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	snapshot := state.offering
	return &snapshot, nil
}

func (f *fakeStore) Exists(_ context.Context, studentID int64, subjectCode string, semester models.Semester) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[recordKey(studentID, subjectCode, semester)], nil
}

func (f *fakeStore) CreditLoad(_ context.Context, studentID int64, semester models.Semester) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creditLoadLocked(studentID, semester), nil
}

func (f *fakeStore) creditLoadLocked(studentID int64, semester models.Semester) int {
	load := 0
	for _, state := range f.offerings {
		if f.records[recordKey(studentID, state.offering.SubjectCode, semester)] && state.offering.Semester == semester {
			load += state.offering.CreditValue
		}
	}
	return load
}

func (f *fakeStore) OccupiedSlots(_ context.Context, studentID int64, semester models.Semester) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.occupiedSlotsLocked(studentID, semester), nil
}

func (f *fakeStore) occupiedSlotsLocked(studentID int64, semester models.Semester) []string {
	var occupied []string
	for _, state := range f.offerings {
		if f.records[recordKey(studentID, state.offering.SubjectCode, semester)] && state.offering.Semester == semester {
			occupied = append(occupied, state.offering.TimeSlots...)
		}
	}
	return occupied
}

func (f *fakeStore) ListByStudent(_ context.Context, studentID int64, semester models.Semester) ([]*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var enrollments []*models.Enrollment
	for _, state := range f.offerings {
		if f.records[recordKey(studentID, state.offering.SubjectCode, semester)] && state.offering.Semester == semester {
			offering := state.offering
			enrollments = append(enrollments, &models.Enrollment{
				StudentID:   studentID,
				SubjectCode: offering.SubjectCode,
				Semester:    semester,
				Offering:    &offering,
			})
		}
	}
	return enrollments, nil
}

func (f *fakeStore) Admit(_ context.Context, studentID int64, offering *models.Offering, creditCap int) error {
	studentMu := f.studentMu(studentID, offering.Semester)
	studentMu.Lock()
	defer studentMu.Unlock()

	f.mu.Lock()
	if f.records[recordKey(studentID, offering.SubjectCode, offering.Semester)] {
		f.mu.Unlock()
		return apperrors.ErrDuplicateEnrollment
	}
	load := f.creditLoadLocked(studentID, offering.Semester)
	occupied := f.occupiedSlotsLocked(studentID, offering.Semester)
	state, ok := f.offerings[offeringKey(offering.SubjectCode, offering.Semester)]
	f.mu.Unlock()

	if !ok {
		return apperrors.ErrOfferingNotFound
	}
	if load+offering.CreditValue >= creditCap {
		return apperrors.ErrCreditCapExceeded
	}
	if schedule.HasConflict(occupied, offering.TimeSlots) {
		return apperrors.ErrTimeConflict
	}

	// Conditional seat decrement under the offering's own lock.
	state.mu.Lock()
	if state.offering.RemainingSeats <= 0 {
		state.mu.Unlock()
		return apperrors.ErrSeatsExhausted
	}
	state.offering.RemainingSeats--
	state.mu.Unlock()

	if f.failInsert {
		// Record insert failed: the reservation must not survive.
		state.mu.Lock()
		state.offering.RemainingSeats++
		state.mu.Unlock()
		return errInsertFailed
	}

	f.mu.Lock()
	f.records[recordKey(studentID, offering.SubjectCode, offering.Semester)] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Withdraw(_ context.Context, studentID int64, subjectCode string, semester models.Semester) error {
	studentMu := f.studentMu(studentID, semester)
	studentMu.Lock()
	defer studentMu.Unlock()

	key := recordKey(studentID, subjectCode, semester)
	f.mu.Lock()
	if !f.records[key] {
		f.mu.Unlock()
		return apperrors.ErrNotEnrolled
	}
	delete(f.records, key)
	state, ok := f.offerings[offeringKey(subjectCode, semester)]
	f.mu.Unlock()

	if !ok {
		return apperrors.ErrSeatInconsistency
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.offering.RemainingSeats >= state.offering.TotalSeats {
		return apperrors.ErrSeatInconsistency
	}
	state.offering.RemainingSeats++
	return nil
}

func newTestService(store *fakeStore, creditCap int) *EnrollmentService {
	return NewEnrollmentService(store, store, creditCap, zerolog.Nop())
}

func offeringFixture(subjectCode string, credits, total, remaining int, slots ...string) models.Offering {
	return models.Offering{
		SubjectCode:    subjectCode,
		Semester:       "2024-1",
		Title:          subjectCode + " title",
		Classification: models.ClassificationElective,
		CreditValue:    credits,
		TotalSeats:     total,
		RemainingSeats: remaining,
		TimeSlots:      slots,
	}
}

func TestEnrollAdmitted(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1", "Mon-2"))
	svc := newTestService(store, 18)

	enrollment, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if enrollment.SubjectCode != "CS101" || enrollment.StudentID != 1 {
		t.Errorf("unexpected enrollment %+v", enrollment)
	}
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 39 {
		t.Errorf("remaining seats = %d, want 39", got)
	}
	// The response must reflect the committed state, not the pre-admit
	// snapshot.
	if enrollment.Offering == nil || enrollment.Offering.RemainingSeats != 39 {
		t.Errorf("response offering = %+v, want 39 remaining seats", enrollment.Offering)
	}
	if enrollment.EnrolledAt.IsZero() {
		t.Error("response enrolledAt is the zero time")
	}
}

func TestEnrollDuplicateDoesNotMutateSeats(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	svc := newTestService(store, 18)

	if _, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatalf("first Enroll returned error: %v", err)
	}

	_, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, apperrors.ErrDuplicateEnrollment) {
		t.Fatalf("expected ErrDuplicateEnrollment, got %v", err)
	}
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 39 {
		t.Errorf("duplicate request mutated seats: remaining = %d, want 39", got)
	}
}

func TestEnrollSeatsExhausted(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 0, "Mon-1"))
	svc := newTestService(store, 18)

	_, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, apperrors.ErrSeatsExhausted) {
		t.Fatalf("expected ErrSeatsExhausted, got %v", err)
	}
}

func TestEnrollCreditCapBoundary(t *testing.T) {
	// The cap comparison is "would reach or exceed": a student at 15 credits
	// cannot take a 3-credit course under an 18-credit cap, a student at 14
	// can.
	tests := []struct {
		name         string
		existingLoad int
		wantAdmit    bool
	}{
		{name: "load 15 plus 3 reaches cap and is rejected", existingLoad: 15, wantAdmit: false},
		{name: "load 14 plus 3 stays under cap and is admitted", existingLoad: 14, wantAdmit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
			store.addOffering(offeringFixture("FIL400", tt.existingLoad, 40, 39, "Fri-5"))
			store.enrollDirect(1, "FIL400", "2024-1")
			svc := newTestService(store, 18)

			_, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
			if tt.wantAdmit {
				if err != nil {
					t.Fatalf("expected admit, got %v", err)
				}
				load, lerr := store.CreditLoad(context.Background(), 1, "2024-1")
				if lerr != nil {
					t.Fatal(lerr)
				}
				if load != tt.existingLoad+3 {
					t.Errorf("credit load = %d, want %d", load, tt.existingLoad+3)
				}
			} else if !errors.Is(err, apperrors.ErrCreditCapExceeded) {
				t.Fatalf("expected ErrCreditCapExceeded, got %v", err)
			}
		})
	}
}

func TestEnrollTimeConflict(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 39, "Mon-1"))
	store.addOffering(offeringFixture("EE201", 3, 40, 40, "Mon-1", "Tue-2"))
	store.addOffering(offeringFixture("ME301", 3, 40, 40, "Wed-3"))
	store.enrollDirect(1, "CS101", "2024-1")
	svc := newTestService(store, 18)

	// One shared slot is enough to reject even if the others differ.
	_, err := svc.Enroll(context.Background(), 1, "EE201", "2024-1")
	if !errors.Is(err, apperrors.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}

	// Disjoint schedules pass this check.
	if _, err := svc.Enroll(context.Background(), 1, "ME301", "2024-1"); err != nil {
		t.Fatalf("disjoint offering rejected: %v", err)
	}
}

func TestEnrollOfferingNotFound(t *testing.T) {
	svc := newTestService(newFakeStore(), 18)

	_, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, apperrors.ErrOfferingNotFound) {
		t.Fatalf("expected ErrOfferingNotFound, got %v", err)
	}
}

func TestEnrollInvalidRequest(t *testing.T) {
	svc := newTestService(newFakeStore(), 18)

	if _, err := svc.Enroll(context.Background(), 1, "bogus", "2024-1"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for subject code, got %v", err)
	}
	if _, err := svc.Enroll(context.Background(), 1, "CS101", "fall"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for semester, got %v", err)
	}
}

func TestConcurrentEnrollmentForScarceSeats(t *testing.T) {
	const (
		seats    = 3
		students = 10
	)

	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, seats, seats, "Mon-1"))
	svc := newTestService(store, 18)

	var wg sync.WaitGroup
	results := make([]error, students)
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Enroll(context.Background(), int64(i+1), "CS101", "2024-1")
		}(i)
	}
	wg.Wait()

	admitted, exhausted := 0, 0
	for i, err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, apperrors.ErrSeatsExhausted):
			exhausted++
		default:
			t.Errorf("student %d got unexpected error: %v", i+1, err)
		}
	}

	if admitted != seats {
		t.Errorf("admitted = %d, want %d", admitted, seats)
	}
	if exhausted != students-seats {
		t.Errorf("exhausted = %d, want %d", exhausted, students-seats)
	}
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 0 {
		t.Errorf("remaining seats = %d, want 0", got)
	}
}

func TestWithdrawIdempotence(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	svc := newTestService(store, 18)

	if _, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}

	if err := svc.Withdraw(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatalf("first Withdraw returned error: %v", err)
	}

	err := svc.Withdraw(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, apperrors.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled on second withdrawal, got %v", err)
	}

	// The seat came back exactly once.
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 40 {
		t.Errorf("remaining seats = %d, want 40", got)
	}
}

func TestWithdrawNotEnrolled(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	svc := newTestService(store, 18)

	err := svc.Withdraw(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, apperrors.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestEnrollWithdrawRoundTrip(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	svc := newTestService(store, 18)

	if _, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if err := svc.Withdraw(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 40 {
		t.Errorf("remaining seats = %d, want 40 after round trip", got)
	}
	exists, err := store.Exists(context.Background(), 1, "CS101", "2024-1")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("enrollment record still present after round trip")
	}
}

func TestAdmitInsertFailureReleasesSeat(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	store.failInsert = true
	svc := newTestService(store, 18)

	_, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1")
	if !errors.Is(err, errInsertFailed) {
		t.Fatalf("expected insert failure to surface, got %v", err)
	}
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 40 {
		t.Errorf("reserved seat leaked on failed insert: remaining = %d, want 40", got)
	}
}

func TestSeatAccountingInvariant(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 5, 5, "Mon-1"))
	svc := newTestService(store, 18)

	for i := int64(1); i <= 4; i++ {
		if _, err := svc.Enroll(context.Background(), i, "CS101", "2024-1"); err != nil {
			t.Fatalf("Enroll student %d returned error: %v", i, err)
		}
	}
	if err := svc.Withdraw(context.Background(), 2, "CS101", "2024-1"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if err := svc.Withdraw(context.Background(), 3, "CS101", "2024-1"); err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}

	// remaining = total - committed enrollments
	enrolled := 0
	for i := int64(1); i <= 4; i++ {
		exists, err := store.Exists(context.Background(), i, "CS101", "2024-1")
		if err != nil {
			t.Fatal(err)
		}
		if exists {
			enrolled++
		}
	}
	if got := store.remainingSeats(t, "CS101", "2024-1"); got != 5-enrolled {
		t.Errorf("remaining seats = %d, want %d", got, 5-enrolled)
	}
}

func TestListEnrollmentsTotalCredits(t *testing.T) {
	store := newFakeStore()
	store.addOffering(offeringFixture("CS101", 3, 40, 40, "Mon-1"))
	store.addOffering(offeringFixture("EE201", 4, 40, 40, "Tue-2"))
	svc := newTestService(store, 18)

	if _, err := svc.Enroll(context.Background(), 1, "CS101", "2024-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Enroll(context.Background(), 1, "EE201", "2024-1"); err != nil {
		t.Fatal(err)
	}

	enrollments, totalCredits, err := svc.ListEnrollments(context.Background(), 1, "2024-1")
	if err != nil {
		t.Fatalf("ListEnrollments returned error: %v", err)
	}
	if len(enrollments) != 2 {
		t.Errorf("len(enrollments) = %d, want 2", len(enrollments))
	}
	if totalCredits != 7 {
		t.Errorf("totalCredits = %d, want 7", totalCredits)
	}
}
