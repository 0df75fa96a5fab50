package model

// ExportData is the top-level structure for a full tracker export.
type ExportData struct {
	Version    int        `json:"version"`
	ExportedAt string     `json:"exported_at"`
	Issues     []*Issue   `json:"issues"`
	Comments   []*Comment `json:"comments"`
}
