package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/llm"
	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/notify"
	"github.com/id8-org/id8-recovery/internal/tiers"
	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

// NoIdeasError reports that model output yielded nothing usable. Raw carries
// the original response so handlers can surface it.
type NoIdeasError struct {
	Raw string
}

func (e *NoIdeasError) Error() string {
	return "40002:no ideas could be parsed from the model output"
}

var ideaStatuses = map[string]bool{
	model.IdeaStatusSuggested:   true,
	model.IdeaStatusDeepDive:    true,
	model.IdeaStatusIterating:   true,
	model.IdeaStatusConsidering: true,
	model.IdeaStatusClosed:      true,
}

type IdeaService struct {
	db            *gorm.DB
	llm           Completer
	profiles      *ProfileService
	versions      *VersionService
	notifier      notify.Notifier
	deepDiveModel string
	log           *logger.Logger
}

func NewIdeaService(db *gorm.DB, completer Completer, profiles *ProfileService, versions *VersionService, notifier notify.Notifier, deepDiveModel string, log *logger.Logger) *IdeaService {
	return &IdeaService{db: db, llm: completer, profiles: profiles, versions: versions, notifier: notifier, deepDiveModel: deepDiveModel, log: log}
}

// Create stores a manually entered idea, subject to the tier quota.
func (s *IdeaService) Create(user *model.User, idea *model.Idea) (*model.Idea, error) {
	if idea.Title == "" {
		return nil, fmt.Errorf("40001:title is required")
	}
	if err := s.checkQuota(user, 1); err != nil {
		return nil, err
	}
	idea.UserID = &user.ID
	if idea.Status == "" {
		idea.Status = model.IdeaStatusSuggested
	}
	if !ideaStatuses[idea.Status] {
		return nil, fmt.Errorf("40001:unknown status %q", idea.Status)
	}
	if err := s.db.Create(idea).Error; err != nil {
		return nil, err
	}
	return idea, nil
}

// List returns the user's ideas plus unowned system ideas, newest first.
func (s *IdeaService) List(userID, status string, page, pageSize int) ([]model.Idea, int64, error) {
	query := s.db.Model(&model.Idea{}).Where("user_id = ? OR user_id IS NULL", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var ideas []model.Idea
	if err := query.Preload("Repo").Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&ideas).Error; err != nil {
		return nil, 0, err
	}
	return ideas, total, nil
}

// Get loads an idea the user is allowed to see.
func (s *IdeaService) Get(userID, ideaID string) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}
	s.db.Preload("Repo").Preload("User").First(idea, "id = ?", ideaID)
	return idea, nil
}

// Update applies direct edits. Only the owner may edit this way; editors go
// through change proposals.
func (s *IdeaService) Update(userID, ideaID string, updates map[string]interface{}) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !isIdeaOwner(idea, userID) {
		return nil, fmt.Errorf("40301:only the owner can edit an idea directly")
	}
	if err := validateIdeaChanges(updates); err != nil {
		return nil, err
	}
	if err := s.db.Model(idea).Updates(updates).Error; err != nil {
		return nil, err
	}
	return getIdea(s.db, ideaID)
}

// SetStatus moves an idea through its lifecycle.
func (s *IdeaService) SetStatus(userID, ideaID, status string) (*model.Idea, error) {
	if !ideaStatuses[status] {
		return nil, fmt.Errorf("40001:unknown status %q", status)
	}
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !isIdeaOwner(idea, userID) {
		return nil, fmt.Errorf("40301:only the owner can change status")
	}
	if err := s.db.Model(idea).Update("status", status).Error; err != nil {
		return nil, err
	}
	return getIdea(s.db, ideaID)
}

func (s *IdeaService) Delete(userID, ideaID string) error {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return err
	}
	if !isIdeaOwner(idea, userID) {
		return fmt.Errorf("40301:only the owner can delete an idea")
	}
	return s.db.Delete(idea).Error
}

// Adopt copies an unowned system idea into the user's account.
func (s *IdeaService) Adopt(user *model.User, ideaID string) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if idea.UserID != nil {
		return nil, fmt.Errorf("40003:idea is already owned")
	}
	if err := s.checkQuota(user, 1); err != nil {
		return nil, err
	}

	adopted := *idea
	adopted.ID = ""
	adopted.UserID = &user.ID
	if err := s.db.Create(&adopted).Error; err != nil {
		return nil, err
	}
	return &adopted, nil
}

// Generate asks the model for fresh ideas seeded by a repo, personalized
// with the user's profile. Parsed ideas are persisted; unusable output is
// reported with the raw text attached.
func (s *IdeaService) Generate(ctx context.Context, user *model.User, repoID string, count int) ([]model.Idea, error) {
	if count <= 0 {
		count = 3
	}
	if err := s.checkQuota(user, count); err != nil {
		return nil, err
	}

	var repo model.Repo
	if err := s.db.First(&repo, "id = ?", repoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:repo not found")
		}
		return nil, err
	}

	userContext := s.profiles.BuildUserContext(user.ID)
	prompt := llm.IdeaGenerationPrompt(repo.Name, repo.Summary, repo.Language, userContext, count)

	raw, err := s.llm.Complete(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("50201:idea generation failed: %w", err)
	}

	records := llmtext.ParseIdeaList(raw)
	if len(records) == 0 {
		return nil, &NoIdeasError{Raw: raw}
	}

	ideas := make([]model.Idea, 0, len(records))
	for _, rec := range records {
		idea := ideaFromRecord(rec)
		idea.UserID = &user.ID
		idea.RepoID = &repo.ID
		idea.LLMRawResponse = raw
		if err := s.db.Create(&idea).Error; err != nil {
			return nil, err
		}
		ideas = append(ideas, idea)
	}
	s.log.Info("generated ideas", "user_id", user.ID, "repo", repo.Name, "count", len(ideas))
	return ideas, nil
}

// RequestDeepDive runs the full analysis for an idea. Malformed model output
// degrades to an error report that is persisted so a later rerun can replace
// it; the call itself does not fail.
func (s *IdeaService) RequestDeepDive(ctx context.Context, userID, ideaID string) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !isIdeaOwner(idea, userID) {
		return nil, fmt.Errorf("40301:only the owner can request a deep dive")
	}

	prompt := llm.DeepDivePrompt(idea.Title, idea.Hook, idea.Value, s.profiles.BuildUserContext(userID))
	raw, cerr := s.llm.Complete(ctx, prompt, s.deepDiveModel)
	var sections []llmtext.Section
	if cerr != nil {
		s.log.Error("deep dive generation failed", "idea_id", ideaID, "error", cerr.Error())
		sections = []llmtext.Section{{
			Title:   "Error Generating Deep Dive",
			Content: "The analysis could not be generated. Try again later.",
		}}
	} else {
		sections = llmtext.ParseDeepDive(raw)
	}

	updates := map[string]interface{}{
		"deep_dive":              model.SectionList(sections),
		"deep_dive_requested":    true,
		"status":                 model.IdeaStatusDeepDive,
		"deep_dive_raw_response": raw,
	}
	if err := s.db.Model(idea).Updates(updates).Error; err != nil {
		return nil, err
	}

	if _, err := s.versions.Create(ideaID, &userID, raw); err != nil {
		s.log.Warn("snapshot after deep dive failed", "idea_id", ideaID, "error", err.Error())
	}
	if nerr := s.notifier.NotifyDeepDiveCompleted(ctx, notify.DeepDiveCompletedEvent{
		IdeaID:    ideaID,
		IdeaTitle: idea.Title,
		OwnerID:   userID,
		Failed:    cerr != nil,
	}); nerr != nil {
		s.log.Warn("deep dive notification failed", "idea_id", ideaID, "error", nerr.Error())
	}
	return getIdea(s.db, ideaID)
}

// Validate ingests the user's own idea, runs the full analysis on it, and
// parks it as considering. The usual quota applies.
func (s *IdeaService) Validate(ctx context.Context, user *model.User, idea *model.Idea) (*model.Idea, error) {
	created, err := s.Create(user, idea)
	if err != nil {
		return nil, err
	}
	if _, err := s.RequestDeepDive(ctx, user.ID, created.ID); err != nil {
		return nil, err
	}
	return s.SetStatus(user.ID, created.ID, model.IdeaStatusConsidering)
}

// Rerun applies the caller's edits and regenerates the analysis from the
// updated fields, snapshotting the result as a new version.
func (s *IdeaService) Rerun(ctx context.Context, userID, ideaID string, editedFields map[string]interface{}) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canEditIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no edit access to this idea")
	}
	if len(editedFields) > 0 {
		if err := validateIdeaChanges(editedFields); err != nil {
			return nil, err
		}
		if err := s.db.Model(idea).Updates(editedFields).Error; err != nil {
			return nil, err
		}
		if idea, err = getIdea(s.db, ideaID); err != nil {
			return nil, err
		}
	}

	prompt := llm.DeepDivePrompt(idea.Title, idea.Hook, idea.Value, s.profiles.BuildUserContext(userID))
	raw, cerr := s.llm.Complete(ctx, prompt, s.deepDiveModel)
	if cerr != nil {
		return nil, fmt.Errorf("50201:regeneration failed: %w", cerr)
	}

	sections := llmtext.ParseDeepDive(raw)
	updates := map[string]interface{}{
		"deep_dive":              model.SectionList(sections),
		"deep_dive_raw_response": raw,
	}
	if err := s.db.Model(idea).Updates(updates).Error; err != nil {
		return nil, err
	}
	if _, err := s.versions.Create(ideaID, &userID, raw); err != nil {
		s.log.Warn("snapshot after rerun failed", "idea_id", ideaID, "error", err.Error())
	}
	return getIdea(s.db, ideaID)
}

// Iterate regenerates the analysis with the user's feedback folded in and
// snapshots the result as a new version.
func (s *IdeaService) Iterate(ctx context.Context, userID, ideaID, feedback string) (*model.Idea, error) {
	if feedback == "" {
		return nil, fmt.Errorf("40001:feedback is required")
	}
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canEditIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no edit access to this idea")
	}

	current := llmtext.ExtractSection([]llmtext.Section(idea.DeepDive), "summary")
	prompt := llm.IterationPrompt(idea.Title, current, feedback)
	raw, cerr := s.llm.Complete(ctx, prompt, s.deepDiveModel)
	if cerr != nil {
		return nil, fmt.Errorf("50201:iteration failed: %w", cerr)
	}

	sections := llmtext.ParseDeepDive(raw)
	updates := map[string]interface{}{
		"deep_dive":              model.SectionList(sections),
		"status":                 model.IdeaStatusIterating,
		"deep_dive_raw_response": raw,
	}
	if err := s.db.Model(idea).Updates(updates).Error; err != nil {
		return nil, err
	}
	if _, err := s.versions.Create(ideaID, &userID, raw); err != nil {
		s.log.Warn("snapshot after iteration failed", "idea_id", ideaID, "error", err.Error())
	}
	return getIdea(s.db, ideaID)
}

// AddToShortlist is idempotent.
func (s *IdeaService) AddToShortlist(userID, ideaID string) error {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return err
	}
	if !canViewIdea(s.db, idea, userID) {
		return fmt.Errorf("40301:no access to this idea")
	}

	var count int64
	s.db.Model(&model.Shortlist{}).Where("user_id = ? AND idea_id = ?", userID, ideaID).Count(&count)
	if count > 0 {
		return nil
	}
	return s.db.Create(&model.Shortlist{UserID: userID, IdeaID: ideaID}).Error
}

func (s *IdeaService) RemoveFromShortlist(userID, ideaID string) error {
	return s.db.Where("user_id = ? AND idea_id = ?", userID, ideaID).
		Delete(&model.Shortlist{}).Error
}

func (s *IdeaService) ListShortlist(userID string) ([]model.Shortlist, error) {
	var items []model.Shortlist
	if err := s.db.Preload("Idea").Where("user_id = ?", userID).
		Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *IdeaService) checkQuota(user *model.User, adding int) error {
	if tiers.HasFeature(user, tiers.FeatureUnlimitedIdeas) {
		return nil
	}
	max := tiers.MaxIdeas(user)
	var count int64
	s.db.Model(&model.Idea{}).Where("user_id = ?", user.ID).Count(&count)
	if int(count)+adding > max {
		return fmt.Errorf("40302:idea limit reached for your plan (%d)", max)
	}
	return nil
}

func ideaFromRecord(rec llmtext.IdeaRecord) model.Idea {
	return model.Idea{
		Title:          rec.Title,
		Hook:           rec.Hook,
		Value:          rec.Value,
		Evidence:       rec.Evidence,
		Differentiator: rec.Differentiator,
		CallToAction:   rec.CallToAction,
		Score:          rec.Score,
		MVPEffort:      rec.MVPEffort,
		Type:           rec.Type,
		Status:         model.IdeaStatusSuggested,
	}
}

// validateIdeaChanges restricts updates to the editable pitch fields.
// Ownership, status transitions, and generated content have their own
// entry points and can never be written through a field map.
func validateIdeaChanges(changes map[string]interface{}) error {
	if len(changes) == 0 {
		return fmt.Errorf("40001:no changes supplied")
	}
	for field := range changes {
		if !editableIdeaFields[field] {
			return fmt.Errorf("40001:field %q cannot be changed", field)
		}
	}
	return validateTitleChange(changes)
}

// validateTitleChange rejects a field map that would blank the title. An
// idea's title is never empty once persisted.
func validateTitleChange(changes map[string]interface{}) error {
	v, ok := changes["title"]
	if !ok {
		return nil
	}
	title, _ := v.(string)
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("40001:title cannot be empty")
	}
	return nil
}

var editableIdeaFields = map[string]bool{
	"title":          true,
	"hook":           true,
	"value":          true,
	"evidence":       true,
	"differentiator": true,
	"call_to_action": true,
	"score":          true,
	"mvp_effort":     true,
	"type":           true,
	"business_model": true,
	"positioning":    true,
}
