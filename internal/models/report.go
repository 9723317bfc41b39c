package models

import "time"

// Report statuses as stored by the server.
const (
	ReportPending  = "PENDING"
	ReportApproved = "APPROVED"
	ReportRejected = "REJECTED"
)

// Decision values accepted by the report resolution endpoint.
const (
	DecisionDismiss        = "dismiss"
	DecisionWarn           = "warn"
	DecisionBlockTemporary = "block_temporary"
	DecisionBlockPermanent = "block_permanent"
)

// Report is a user-submitted flag on a message, resolved by an admin.
type Report struct {
	ID            int       `json:"id"`
	MessageID     int       `json:"messageId"`
	ReporterID    int       `json:"reporterId"`
	ReporterName  string    `json:"reporterName"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	AdminDecision string    `json:"adminDecision,omitempty"`
	Message       *Message  `json:"message,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsPending reports whether the report still awaits a decision. Only pending
// reports expose the resolve action.
func (r *Report) IsPending() bool {
	return r.Status == ReportPending
}

// IsResolved reports whether an admin has already decided the report.
func (r *Report) IsResolved() bool {
	return r.Status == ReportApproved || r.Status == ReportRejected
}

// StatusDisplay returns the badge text for the report status.
func (r *Report) StatusDisplay() string {
	switch r.Status {
	case ReportPending:
		return "Pending review"
	case ReportApproved:
		return "Approved"
	case ReportRejected:
		return "Rejected"
	default:
		return r.Status
	}
}
