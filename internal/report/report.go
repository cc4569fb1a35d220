// Package report handles user-submitted abuse reports: intake, storage,
// and the auto-resolution path that feeds confirmed spam reports back into
// the reputation ledger. Reports are lifecycle-managed independently of
// the inline moderation path.
package report

import "time"

// Report statuses. A report is created pending; spam-category reports may
// be resolved automatically, everything else waits for manual disposition.
const (
	StatusPending   = "pending"
	StatusReviewed  = "reviewed"
	StatusResolved  = "resolved"
	StatusDismissed = "dismissed"
)

// Report categories.
const (
	CategorySpam          = "spam"
	CategoryHarassment    = "harassment"
	CategoryInappropriate = "inappropriate"
	CategoryOther         = "other"
)

// validCategories is the set of allowed category values, matching the
// CHECK constraint on the moderation_reports table.
var validCategories = map[string]bool{
	CategorySpam:          true,
	CategoryHarassment:    true,
	CategoryInappropriate: true,
	CategoryOther:         true,
}

// Report is one user-submitted abuse report.
type Report struct {
	ID             string     `json:"id"`
	MessageID      string     `json:"message_id"`
	ReporterID     string     `json:"reporter_id"`
	ReportedUserID string     `json:"reported_user_id"`
	Reason         string     `json:"reason"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
}
