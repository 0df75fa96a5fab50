package model

// Stats is the dashboard aggregate. It is derived from a full scan of the
// issues collection and never persisted.
type Stats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
}

// Bucketed returns the number of issues counted in one of the three status
// buckets. It equals Total only when every status is canonical.
func (s Stats) Bucketed() int {
	return s.Open + s.InProgress + s.Resolved
}
