package linkcheck

// Partition splits records into the canonical set to probe and the duplicate
// set to archive. Records are grouped by exact URL string; within a group the
// earliest record in input order is canonical and the rest are duplicates.
// Records without a URL are excluded from grouping and pass through as
// canonical. The union of both outputs is the input, each record exactly once.
func Partition(records []LinkRecord) (canonical, duplicates []LinkRecord) {
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			canonical = append(canonical, rec)
			continue
		}
		if _, ok := seen[rec.URL]; ok {
			duplicates = append(duplicates, rec)
			continue
		}
		seen[rec.URL] = struct{}{}
		canonical = append(canonical, rec)
	}
	return canonical, duplicates
}
