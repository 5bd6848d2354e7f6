package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
)

// Completer is the slice of the LLM client the services need.
type Completer interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

func getIdea(db *gorm.DB, id string) (*model.Idea, error) {
	var idea model.Idea
	if err := db.First(&idea, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:idea not found")
		}
		return nil, err
	}
	return &idea, nil
}

func isIdeaOwner(idea *model.Idea, userID string) bool {
	return idea.UserID != nil && *idea.UserID == userID
}

// collabRole returns the user's granted role on the idea, or "".
func collabRole(db *gorm.DB, ideaID, userID string) string {
	var collab model.Collaborator
	if err := db.Where("idea_id = ? AND user_id = ?", ideaID, userID).First(&collab).Error; err != nil {
		return ""
	}
	return collab.Role
}

// canEditIdea: the owner or an editor collaborator. Everything else is
// denied, including unknown roles.
func canEditIdea(db *gorm.DB, idea *model.Idea, userID string) bool {
	if isIdeaOwner(idea, userID) {
		return true
	}
	return collabRole(db, idea.ID, userID) == model.CollabRoleEditor
}

// canViewIdea: the owner or any collaborator. System ideas with no owner are
// visible to everyone.
func canViewIdea(db *gorm.DB, idea *model.Idea, userID string) bool {
	if idea.UserID == nil {
		return true
	}
	if isIdeaOwner(idea, userID) {
		return true
	}
	switch collabRole(db, idea.ID, userID) {
	case model.CollabRoleEditor, model.CollabRoleViewer:
		return true
	}
	return false
}
