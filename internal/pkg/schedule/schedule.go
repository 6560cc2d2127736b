// Package schedule decides whether two weekly schedules overlap. Slots are
// opaque tokens ("Mon-1", "Tue-3"); two schedules conflict iff they share at
// least one token. The package is pure and performs no I/O.
package schedule

// HasConflict reports whether any candidate slot is already occupied.
// An empty candidate set never conflicts.
func HasConflict(occupied, candidate []string) bool {
	return len(Conflicts(occupied, candidate)) > 0
}

// Conflicts returns every candidate slot that is already occupied, in
// candidate order. All candidate slots are checked; a partial non-overlap
// never short-circuits the scan.
func Conflicts(occupied, candidate []string) []string {
	if len(occupied) == 0 || len(candidate) == 0 {
		return nil
	}

	taken := make(map[string]struct{}, len(occupied))
	for _, slot := range occupied {
		taken[slot] = struct{}{}
	}

	var overlapping []string
	seen := make(map[string]struct{}, len(candidate))
	for _, slot := range candidate {
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		if _, ok := taken[slot]; ok {
			overlapping = append(overlapping, slot)
		}
	}

	return overlapping
}
