package model

// PullRequest is a GitHub pull request.
type PullRequest struct {
	Record
}

// TableName specifies the table name for GORM.
func (PullRequest) TableName() string {
	return "pull_requests"
}

// LeadTimeHours returns hours from creation to close, or false while open.
func (p PullRequest) LeadTimeHours() (float64, bool) {
	if p.Open || p.ClosedAt == nil {
		return 0, false
	}
	return p.ClosedAt.Sub(p.CreatedAt).Hours(), true
}
