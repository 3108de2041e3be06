package dissociate

// ModelStats holds aggregated statistics for a Model.
type ModelStats struct {
	Fragments       int // The number of distinct fragments, the sentinel included.
	StartCandidates int // The number of fragments that have begun a sentence.
	NextLinks       int // The total number of recorded forward neighbors.
	PrevLinks       int // The total number of recorded backward neighbors.
	MaxPosition     int // The highest sentence index any fragment occupied, -1 when empty.
}

// Stats returns a snapshot of statistics for the model.
func (m *Model) Stats() ModelStats {
	stats := ModelStats{
		Fragments:       len(m.fragments),
		StartCandidates: len(m.starters),
		MaxPosition:     -1,
	}
	for _, f := range m.fragments {
		stats.NextLinks += len(f.next)
		stats.PrevLinks += len(f.prev)
		for position := range f.positions {
			stats.MaxPosition = max(stats.MaxPosition, position)
		}
	}
	return stats
}
