package engine

// Stats are per-engine counters for observing resolution behavior.
type Stats struct {
	Fetches            int64 `json:"fetches"`
	StrictMisses       int64 `json:"strict_misses"`
	MergesSuppressed   int64 `json:"merges_suppressed"`
	AssignmentsDropped int64 `json:"assignments_dropped"`
}

func (e *Engine) Stats() Stats {
	e.statsMu.RLock()
	defer e.statsMu.RUnlock()
	return e.stats
}

func (e *Engine) bump(f func(*Stats)) {
	e.statsMu.Lock()
	f(&e.stats)
	e.statsMu.Unlock()
}
