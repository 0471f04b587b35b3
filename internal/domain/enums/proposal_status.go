package enums

type ProposalStatus string

const (
	ProposalStatusSent      ProposalStatus = "SENT"
	ProposalStatusAccepted  ProposalStatus = "ACCEPTED"
	ProposalStatusRejected  ProposalStatus = "REJECTED"
	ProposalStatusWithdrawn ProposalStatus = "WITHDRAWN"
)

// Terminal reports whether no further transitions are allowed from s.
func (s ProposalStatus) Terminal() bool {
	switch s {
	case ProposalStatusAccepted, ProposalStatusRejected, ProposalStatusWithdrawn:
		return true
	default:
		return false
	}
}
