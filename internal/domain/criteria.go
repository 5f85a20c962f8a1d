package domain

// Criteria is the search specification a cycle filters against. It is
// snapshotted once per cycle so a config change mid-run cannot produce
// mixed results.
type Criteria struct {
	YearMin   int
	YearMax   int
	Make      string
	Models    []string // empty = any model
	Locations []string // empty list matches nothing
}
