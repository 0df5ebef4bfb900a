package event

// Status is the publication decision assigned by the classifier.
type Status string

const (
	StatusApproved Status = "Approved"
	StatusPending  Status = "Pending"
	StatusRejected Status = "Rejected"
)

// Valid reports whether s is one of the three publication statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusPending, StatusRejected:
		return true
	}
	return false
}
