package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collaborator roles on an idea.
const (
	CollabRoleEditor = "editor"
	CollabRoleViewer = "viewer"
)

// Change proposal statuses.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// Collaborator grants a user a role on someone else's idea. One row per
// (idea, user); re-granting replaces the role.
type Collaborator struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_idea_user" json:"idea_id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_idea_user;index:idx_collab_user" json:"user_id"`
	Role      string    `gorm:"type:varchar(10);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Collaborator) TableName() string { return "idea_collaborators" }

func (c *Collaborator) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ChangeProposal is a suggested edit to an idea, pending the owner's review.
// Changes holds field name to proposed value.
type ChangeProposal struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID     string     `gorm:"type:varchar(36);not null;index:idx_proposal_idea" json:"idea_id"`
	UserID     string     `gorm:"type:varchar(36);not null;index:idx_proposal_user" json:"user_id"`
	Changes    JSONMap    `gorm:"type:json" json:"changes"`
	Rationale  string     `gorm:"type:text" json:"rationale"`
	Status     string     `gorm:"type:varchar(10);default:pending;index:idx_proposal_status" json:"status"`
	ReviewerID *string    `gorm:"type:varchar(36)" json:"reviewer_id"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Idea *Idea `gorm:"foreignKey:IdeaID" json:"idea,omitempty"`
}

func (ChangeProposal) TableName() string { return "change_proposals" }

func (p *ChangeProposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Comment is a discussion note on an idea.
type Comment struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string         `gorm:"type:varchar(36);not null;index:idx_comment_idea" json:"idea_id"`
	UserID    string         `gorm:"type:varchar(36);not null" json:"user_id"`
	ParentID  *string        `gorm:"type:varchar(36)" json:"parent_id"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string { return "idea_comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
