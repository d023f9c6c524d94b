package eventlog

// matchesSource decides whether a raw entry belongs to this receiver's
// configured scope. A blank filter matches everything; a non-blank filter
// requires exact, case-sensitive equality. No wildcards or patterns.
func matchesSource(source, filter string) bool {
	return filter == "" || source == filter
}
