package domain

// Listing is one vehicle offer as reported by a salvage yard.
type Listing struct {
	Source      string // registered adapter name, e.g. "picknpull"
	ExternalID  string // yard stock number when the site exposes one
	Title       string
	Year        int // 0 = unknown
	Make        string
	Model       string
	Location    string
	URL         string
	Price       string
	ArrivalDate string
	RawExcerpt  string // raw source fragment, kept for debugging only
}
