package model

// Issue is a GitHub issue.
type Issue struct {
	Record
	// Label is the grouping label of the issue, nil when unlabelled.
	Label *string `gorm:"column:label;type:varchar(255)" json:"label"`
}

// TableName specifies the table name for GORM.
func (Issue) TableName() string {
	return "issues"
}

// LabelName returns the label or an empty string.
func (i Issue) LabelName() string {
	if i.Label == nil {
		return ""
	}
	return *i.Label
}

// Normalize normalizes the common fields and drops an empty label.
func (i *Issue) Normalize() {
	i.Record.Normalize()
	if i.Label != nil && *i.Label == "" {
		i.Label = nil
	}
}
