package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/notify"
)

// proposableFields are the only fields a change proposal may target.
// Ownership, status, and generated content are off limits no matter what
// the payload claims.
var proposableFields = map[string]bool{
	"title":          true,
	"hook":           true,
	"value":          true,
	"evidence":       true,
	"differentiator": true,
	"call_to_action": true,
	"score":          true,
	"mvp_effort":     true,
	"type":           true,
}

var collabRoles = map[string]bool{
	model.CollabRoleEditor: true,
	model.CollabRoleViewer: true,
}

type CollabService struct {
	db       *gorm.DB
	notifier notify.Notifier
	log      *logger.Logger
}

func NewCollabService(db *gorm.DB, notifier notify.Notifier, log *logger.Logger) *CollabService {
	return &CollabService{db: db, notifier: notifier, log: log}
}

// AddCollaborator grants a user a role on the idea. Owner only. Granting a
// role to an existing collaborator replaces their role.
func (s *CollabService) AddCollaborator(ctx context.Context, ownerID, ideaID, userID, role string) (*model.Collaborator, error) {
	if !collabRoles[role] {
		return nil, fmt.Errorf("40001:unknown role %q", role)
	}
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !isIdeaOwner(idea, ownerID) {
		return nil, fmt.Errorf("40301:only the owner can manage collaborators")
	}
	if userID == ownerID {
		return nil, fmt.Errorf("40001:the owner is already a collaborator")
	}

	var user model.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:user not found")
		}
		return nil, err
	}

	var collab model.Collaborator
	err = s.db.Where("idea_id = ? AND user_id = ?", ideaID, userID).First(&collab).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		collab = model.Collaborator{IdeaID: ideaID, UserID: userID, Role: role}
		if cerr := s.db.Create(&collab).Error; cerr != nil {
			return nil, cerr
		}
	case err != nil:
		return nil, err
	default:
		if uerr := s.db.Model(&collab).Update("role", role).Error; uerr != nil {
			return nil, uerr
		}
		collab.Role = role
	}

	if nerr := s.notifier.NotifyCollaboratorAdded(ctx, notify.CollaboratorAddedEvent{
		IdeaID:    ideaID,
		IdeaTitle: idea.Title,
		OwnerID:   ownerID,
		UserID:    userID,
		UserEmail: user.Email,
		Role:      role,
	}); nerr != nil {
		s.log.Warn("collaborator notification failed", "idea_id", ideaID, "error", nerr.Error())
	}
	return &collab, nil
}

func (s *CollabService) RemoveCollaborator(ownerID, ideaID, userID string) error {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return err
	}
	if !isIdeaOwner(idea, ownerID) {
		return fmt.Errorf("40301:only the owner can manage collaborators")
	}
	res := s.db.Where("idea_id = ? AND user_id = ?", ideaID, userID).Delete(&model.Collaborator{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("40401:user is not a collaborator on this idea")
	}
	return nil
}

func (s *CollabService) ListCollaborators(userID, ideaID string) ([]model.Collaborator, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}

	var collabs []model.Collaborator
	if err := s.db.Preload("User").Where("idea_id = ?", ideaID).
		Order("created_at asc").Find(&collabs).Error; err != nil {
		return nil, err
	}
	return collabs, nil
}

// SubmitProposal files a change proposal for the owner to review. Editors
// and the owner may submit; viewers may not. Every targeted field must be
// on the allow list.
func (s *CollabService) SubmitProposal(ctx context.Context, userID, ideaID string, changes map[string]interface{}, rationale string) (*model.ChangeProposal, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canEditIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no edit access to this idea")
	}
	if err := validateProposedChanges(changes); err != nil {
		return nil, err
	}

	proposal := &model.ChangeProposal{
		IdeaID:    ideaID,
		UserID:    userID,
		Changes:   model.JSONMap(changes),
		Rationale: rationale,
		Status:    model.ProposalStatusPending,
	}
	if err := s.db.Create(proposal).Error; err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	var author model.User
	s.db.First(&author, "id = ?", userID)
	ownerID := ""
	if idea.UserID != nil {
		ownerID = *idea.UserID
	}
	if nerr := s.notifier.NotifyProposalSubmitted(ctx, notify.ProposalSubmittedEvent{
		ProposalID:  proposal.ID,
		IdeaID:      ideaID,
		IdeaTitle:   idea.Title,
		OwnerID:     ownerID,
		AuthorID:    userID,
		AuthorEmail: author.Email,
		Fields:      fields,
	}); nerr != nil {
		s.log.Warn("proposal notification failed", "proposal_id", proposal.ID, "error", nerr.Error())
	}
	return proposal, nil
}

func (s *CollabService) ListProposals(userID, ideaID, status string) ([]model.ChangeProposal, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}

	query := s.db.Preload("User").Where("idea_id = ?", ideaID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var proposals []model.ChangeProposal
	if err := query.Order("created_at desc").Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

// ApproveProposal applies the proposed changes to the idea and closes the
// proposal, atomically. Only the idea's owner may approve. The changes are
// re-validated at approval time in case the allow list tightened since
// submission.
func (s *CollabService) ApproveProposal(ctx context.Context, ownerID, proposalID string) (*model.ChangeProposal, error) {
	proposal, idea, err := s.openProposal(ownerID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := validateProposedChanges(map[string]interface{}(proposal.Changes)); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Idea{}).Where("id = ?", idea.ID).
			Updates(map[string]interface{}(proposal.Changes)).Error; err != nil {
			return err
		}
		return tx.Model(proposal).Updates(map[string]interface{}{
			"status":      model.ProposalStatusApproved,
			"reviewer_id": ownerID,
			"reviewed_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(ctx, proposal, idea, ownerID, model.ProposalStatusApproved)
	return proposal, nil
}

// RejectProposal closes the proposal without touching the idea. Terminal:
// a rejected proposal cannot be reopened.
func (s *CollabService) RejectProposal(ctx context.Context, ownerID, proposalID string) (*model.ChangeProposal, error) {
	proposal, idea, err := s.openProposal(ownerID, proposalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(proposal).Updates(map[string]interface{}{
		"status":      model.ProposalStatusRejected,
		"reviewer_id": ownerID,
		"reviewed_at": now,
	}).Error; err != nil {
		return nil, err
	}

	s.notifyReviewed(ctx, proposal, idea, ownerID, model.ProposalStatusRejected)
	return proposal, nil
}

// openProposal loads a proposal still open for review and checks that the
// caller owns the underlying idea.
func (s *CollabService) openProposal(ownerID, proposalID string) (*model.ChangeProposal, *model.Idea, error) {
	var proposal model.ChangeProposal
	if err := s.db.First(&proposal, "id = ?", proposalID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, fmt.Errorf("40401:proposal not found")
		}
		return nil, nil, err
	}

	idea, err := getIdea(s.db, proposal.IdeaID)
	if err != nil {
		return nil, nil, err
	}
	if !isIdeaOwner(idea, ownerID) {
		return nil, nil, fmt.Errorf("40301:only the idea owner can review proposals")
	}
	if proposal.Status != model.ProposalStatusPending {
		return nil, nil, fmt.Errorf("40003:proposal is already %s", proposal.Status)
	}
	return &proposal, idea, nil
}

func (s *CollabService) notifyReviewed(ctx context.Context, proposal *model.ChangeProposal, idea *model.Idea, reviewerID, status string) {
	if nerr := s.notifier.NotifyProposalReviewed(ctx, notify.ProposalReviewedEvent{
		ProposalID: proposal.ID,
		IdeaID:     idea.ID,
		IdeaTitle:  idea.Title,
		AuthorID:   proposal.UserID,
		ReviewerID: reviewerID,
		Status:     status,
	}); nerr != nil {
		s.log.Warn("review notification failed", "proposal_id", proposal.ID, "error", nerr.Error())
	}
}

// AddComment posts a discussion note. Any collaborator, including viewers,
// may comment.
func (s *CollabService) AddComment(userID, ideaID, body string, parentID *string) (*model.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("40001:comment body is required")
	}
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}
	if parentID != nil {
		var parent model.Comment
		if err := s.db.Where("id = ? AND idea_id = ?", *parentID, ideaID).First(&parent).Error; err != nil {
			return nil, fmt.Errorf("40401:parent comment not found")
		}
	}

	comment := &model.Comment{IdeaID: ideaID, UserID: userID, ParentID: parentID, Body: body}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentNode is a comment with its replies nested under it.
type CommentNode struct {
	model.Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree nests a flat, chronologically ordered comment list by
// parent. A comment whose parent is missing is promoted to the top level.
func BuildCommentTree(comments []model.Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i], Replies: []*CommentNode{}}
	}

	roots := []*CommentNode{}
	for i := range comments {
		node := nodes[comments[i].ID]
		if pid := comments[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func (s *CollabService) ListComments(userID, ideaID string) ([]model.Comment, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}

	var comments []model.Comment
	if err := s.db.Preload("User").Where("idea_id = ?", ideaID).
		Order("created_at asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func validateProposedChanges(changes map[string]interface{}) error {
	if len(changes) == 0 {
		return fmt.Errorf("40001:a proposal must change at least one field")
	}
	for field := range changes {
		if !proposableFields[field] {
			return fmt.Errorf("40001:field %q cannot be proposed", field)
		}
	}
	return validateTitleChange(changes)
}
