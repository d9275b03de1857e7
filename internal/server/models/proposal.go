package models

import "time"

// Proposal statuses. Closed is derived lazily from the voting period; the
// stored column only ever holds "active" unless an operator closes it.
const (
	ProposalStatusActive = "active"
	ProposalStatusClosed = "closed"
)

type Proposal struct {
	ID                string
	Title             string
	Description       string
	CreatorID         string
	VotingPeriodHours int
	CreatedAt         time.Time
	Status            string
}

// EffectiveStatus derives the status at the given instant: a proposal whose
// voting period has elapsed reads as closed even if the stored status says
// active.
func (p *Proposal) EffectiveStatus(now time.Time) string {
	if p.Status == ProposalStatusClosed {
		return ProposalStatusClosed
	}
	deadline := p.CreatedAt.Add(time.Duration(p.VotingPeriodHours) * time.Hour)
	if now.After(deadline) {
		return ProposalStatusClosed
	}
	return ProposalStatusActive
}

// Vote is one user's weighted choice on a proposal. Unique per
// (ProposalID, UserID); a later vote overwrites, never duplicates.
type Vote struct {
	ProposalID string
	UserID     string
	Vote       bool
	Weight     int64
}
