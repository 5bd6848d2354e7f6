package service

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
)

type VersionService struct {
	db *gorm.DB
}

func NewVersionService(db *gorm.DB) *VersionService {
	return &VersionService{db: db}
}

// snapshotFields captures the editable state of an idea for a version row.
func snapshotFields(idea *model.Idea) model.JSONMap {
	return model.JSONMap{
		"title":          idea.Title,
		"hook":           idea.Hook,
		"value":          idea.Value,
		"evidence":       idea.Evidence,
		"differentiator": idea.Differentiator,
		"call_to_action": idea.CallToAction,
		"score":          idea.Score,
		"mvp_effort":     idea.MVPEffort,
		"type":           idea.Type,
		"deep_dive":      idea.DeepDive,
	}
}

// remarshal converts between JSON-shaped values via an encode/decode round
// trip. Version snapshots come back from the JSON column as generic maps.
func remarshal(src, dst interface{}) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// Create appends a snapshot of the idea's current state. The version number
// is assigned inside the transaction so concurrent snapshots of the same
// idea never collide; numbering starts at 1.
func (s *VersionService) Create(ideaID string, createdBy *string, llmRaw string) (*model.IdeaVersion, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}

	version := &model.IdeaVersion{
		IdeaID:    ideaID,
		Fields:    snapshotFields(idea),
		LLMRaw:    llmRaw,
		CreatedBy: createdBy,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var maxNum int
		row := tx.Model(&model.IdeaVersion{}).
			Where("idea_id = ?", ideaID).
			Select("COALESCE(MAX(version_number), 0)").Row()
		if err := row.Scan(&maxNum); err != nil {
			return err
		}
		version.VersionNumber = maxNum + 1
		return tx.Create(version).Error
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *VersionService) List(userID, ideaID string) ([]model.IdeaVersion, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}

	var versions []model.IdeaVersion
	if err := s.db.Where("idea_id = ?", ideaID).
		Order("version_number desc").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *VersionService) Get(userID, ideaID string, number int) (*model.IdeaVersion, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}

	var version model.IdeaVersion
	if err := s.db.Where("idea_id = ? AND version_number = ?", ideaID, number).
		First(&version).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:version %d not found", number)
		}
		return nil, err
	}
	return &version, nil
}

// Restore writes a version's snapshot back onto the live idea. The version
// history itself is never modified; restoring an old version and then
// snapshotting produces a new, higher-numbered version.
func (s *VersionService) Restore(userID, ideaID string, number int) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !isIdeaOwner(idea, userID) {
		return nil, fmt.Errorf("40301:only the owner can restore a version")
	}

	var version model.IdeaVersion
	if err := s.db.Where("idea_id = ? AND version_number = ?", ideaID, number).
		First(&version).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:version %d not found", number)
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	for _, field := range []string{"title", "hook", "value", "evidence", "differentiator", "call_to_action", "type"} {
		if v, ok := version.Fields[field]; ok {
			updates[field] = v
		}
	}
	for _, field := range []string{"score", "mvp_effort"} {
		if v, ok := version.Fields[field]; ok {
			updates[field] = v
		}
	}
	if v, ok := version.Fields["deep_dive"]; ok {
		var sections model.SectionList
		if merr := remarshal(v, &sections); merr == nil {
			updates["deep_dive"] = sections
		}
	}
	if err := validateTitleChange(updates); err != nil {
		return nil, err
	}

	if err := s.db.Model(idea).Updates(updates).Error; err != nil {
		return nil, err
	}
	return getIdea(s.db, ideaID)
}
