package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(128);not null" json:"name"`
	OwnerID   string         `gorm:"type:varchar(36);not null;index:idx_team_owner" json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}

func (Team) TableName() string { return "teams" }

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Invite is a pending team invitation, redeemed by code at registration or
// from an existing account.
type Invite struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	TeamID     string     `gorm:"type:varchar(36);not null;index:idx_invite_team" json:"team_id"`
	Email      string     `gorm:"type:varchar(128);not null;index:idx_invite_email" json:"email"`
	Code       string     `gorm:"type:varchar(36);not null;uniqueIndex:uk_invite_code" json:"code"`
	InviterID  string     `gorm:"type:varchar(36);not null" json:"inviter_id"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

func (Invite) TableName() string { return "team_invites" }

func (i *Invite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Code == "" {
		i.Code = uuid.NewString()
	}
	return nil
}
