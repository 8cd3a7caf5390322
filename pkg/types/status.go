package types

type ComplaintStatus string

const (
	StatusPending     ComplaintStatus = "pending"
	StatusApproved    ComplaintStatus = "approved"
	StatusRejected    ComplaintStatus = "rejected"
	StatusConflicting ComplaintStatus = "conflicting"
)

// StatusOf derives the case status from the two independent flags. Both flags
// set is permitted by the schema but is not a valid decision.
func StatusOf(approved, rejected bool) ComplaintStatus {
	switch {
	case approved && rejected:
		return StatusConflicting
	case approved:
		return StatusApproved
	case rejected:
		return StatusRejected
	default:
		return StatusPending
	}
}

// Label is the Romanian wording used on forms and reports.
func (s ComplaintStatus) Label() string {
	switch s {
	case StatusApproved:
		return "Admisă"
	case StatusRejected:
		return "Respinsă"
	case StatusConflicting:
		return "Admisă și respinsă"
	default:
		return "În așteptare"
	}
}
