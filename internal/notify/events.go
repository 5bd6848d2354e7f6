package notify

// CollaboratorAddedEvent is sent when an owner grants someone access to an
// idea.
type CollaboratorAddedEvent struct {
	IdeaID    string
	IdeaTitle string
	OwnerID   string
	UserID    string
	UserEmail string
	Role      string
}

// ProposalSubmittedEvent is sent when a collaborator submits a change
// proposal for review.
type ProposalSubmittedEvent struct {
	ProposalID  string
	IdeaID      string
	IdeaTitle   string
	OwnerID     string
	AuthorID    string
	AuthorEmail string
	Fields      []string
}

// ProposalReviewedEvent is sent when the owner approves or rejects a
// proposal.
type ProposalReviewedEvent struct {
	ProposalID string
	IdeaID     string
	IdeaTitle  string
	AuthorID   string
	ReviewerID string
	Status     string
}

// DeepDiveCompletedEvent is sent when an idea's analysis finishes, including
// degraded error reports.
type DeepDiveCompletedEvent struct {
	IdeaID    string
	IdeaTitle string
	OwnerID   string
	Failed    bool
}
