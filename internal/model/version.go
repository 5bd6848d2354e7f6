package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdeaVersion is an append-only snapshot of an idea's editable fields.
// Version numbers start at 1 and are assigned per idea; rows are never
// updated or deleted, restore writes the snapshot back onto the live idea.
type IdeaVersion struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID        string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_idea_version" json:"idea_id"`
	VersionNumber int       `gorm:"not null;uniqueIndex:uk_idea_version" json:"version_number"`
	Fields        JSONMap   `gorm:"type:json" json:"fields"`
	LLMRaw        string    `gorm:"type:longtext" json:"-"`
	CreatedBy     *string   `gorm:"type:varchar(36)" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func (IdeaVersion) TableName() string { return "idea_versions" }

func (v *IdeaVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
