package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/llm"
	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

var insightLenses = map[string]bool{
	"founder":  true,
	"investor": true,
	"customer": true,
}

// InsightService generates and stores the premium per-idea analyses.
type InsightService struct {
	db  *gorm.DB
	llm Completer
	log *logger.Logger
}

func NewInsightService(db *gorm.DB, completer Completer, log *logger.Logger) *InsightService {
	return &InsightService{db: db, llm: completer, log: log}
}

func (s *InsightService) ownedIdea(userID, ideaID string) (*model.Idea, error) {
	idea, err := getIdea(s.db, ideaID)
	if err != nil {
		return nil, err
	}
	if !canViewIdea(s.db, idea, userID) {
		return nil, fmt.Errorf("40301:no access to this idea")
	}
	return idea, nil
}

func (s *InsightService) GenerateCaseStudy(ctx context.Context, userID, ideaID, company string) (*model.CaseStudy, error) {
	idea, err := s.ownedIdea(userID, ideaID)
	if err != nil {
		return nil, err
	}

	raw, cerr := s.llm.Complete(ctx, llm.CaseStudyPrompt(idea.Title, idea.Hook, company), "")
	if cerr != nil {
		return nil, fmt.Errorf("50201:case study generation failed: %w", cerr)
	}
	rec := llmtext.ParseRecord(raw)

	study := &model.CaseStudy{
		IdeaID:  ideaID,
		Company: stringField(rec, "company", company),
		Fields:  model.JSONMap(rec),
		LLMRaw:  raw,
	}
	if err := s.db.Create(study).Error; err != nil {
		return nil, err
	}
	return study, nil
}

func (s *InsightService) GenerateMarketSnapshot(ctx context.Context, userID, ideaID string) (*model.MarketSnapshot, error) {
	idea, err := s.ownedIdea(userID, ideaID)
	if err != nil {
		return nil, err
	}

	raw, cerr := s.llm.Complete(ctx, llm.MarketSnapshotPrompt(idea.Title, idea.Hook), "")
	if cerr != nil {
		return nil, fmt.Errorf("50201:market snapshot generation failed: %w", cerr)
	}

	snapshot := &model.MarketSnapshot{
		IdeaID: ideaID,
		Fields: model.JSONMap(llmtext.ParseRecord(raw)),
		LLMRaw: raw,
	}
	if err := s.db.Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *InsightService) GenerateLensInsight(ctx context.Context, userID, ideaID, lens string) (*model.LensInsight, error) {
	if !insightLenses[lens] {
		return nil, fmt.Errorf("40001:unknown lens %q", lens)
	}
	idea, err := s.ownedIdea(userID, ideaID)
	if err != nil {
		return nil, err
	}

	raw, cerr := s.llm.Complete(ctx, llm.LensInsightPrompt(idea.Title, idea.Hook, lens), "")
	if cerr != nil {
		return nil, fmt.Errorf("50201:lens insight generation failed: %w", cerr)
	}

	insight := &model.LensInsight{
		IdeaID: ideaID,
		Lens:   lens,
		Fields: model.JSONMap(llmtext.ParseLensInsight(raw)),
		LLMRaw: raw,
	}
	if err := s.db.Create(insight).Error; err != nil {
		return nil, err
	}
	return insight, nil
}

func (s *InsightService) GenerateVCThesis(ctx context.Context, userID, ideaID, firm string) (*model.VCThesis, error) {
	idea, err := s.ownedIdea(userID, ideaID)
	if err != nil {
		return nil, err
	}

	raw, cerr := s.llm.Complete(ctx, llm.VCThesisPrompt(idea.Title, idea.Hook, firm), "")
	if cerr != nil {
		return nil, fmt.Errorf("50201:thesis comparison failed: %w", cerr)
	}
	rec := llmtext.ParseRecord(raw)

	thesis := &model.VCThesis{
		IdeaID: ideaID,
		Firm:   stringField(rec, "firm", firm),
		Fields: model.JSONMap(rec),
		LLMRaw: raw,
	}
	if err := s.db.Create(thesis).Error; err != nil {
		return nil, err
	}
	return thesis, nil
}

func (s *InsightService) GenerateInvestorDeck(ctx context.Context, userID, ideaID string) (*model.InvestorDeck, error) {
	idea, err := s.ownedIdea(userID, ideaID)
	if err != nil {
		return nil, err
	}

	raw, cerr := s.llm.Complete(ctx, llm.InvestorDeckPrompt(idea.Title, idea.Hook, idea.Value), "")
	if cerr != nil {
		return nil, fmt.Errorf("50201:deck generation failed: %w", cerr)
	}
	parsed := llmtext.ParseInvestorDeck(raw)

	deck := &model.InvestorDeck{
		IdeaID: ideaID,
		Title:  parsed.Title,
		Slides: model.SlideList(parsed.Slides),
		LLMRaw: raw,
	}
	if err := s.db.Create(deck).Error; err != nil {
		return nil, err
	}
	return deck, nil
}

// ListForIdea gathers every stored insight for an idea in one call.
type IdeaInsights struct {
	CaseStudies     []model.CaseStudy      `json:"case_studies"`
	MarketSnapshots []model.MarketSnapshot `json:"market_snapshots"`
	LensInsights    []model.LensInsight    `json:"lens_insights"`
	VCTheses        []model.VCThesis       `json:"vc_theses"`
	InvestorDecks   []model.InvestorDeck   `json:"investor_decks"`
}

func (s *InsightService) ListForIdea(userID, ideaID string) (*IdeaInsights, error) {
	if _, err := s.ownedIdea(userID, ideaID); err != nil {
		return nil, err
	}

	var out IdeaInsights
	if err := s.db.Where("idea_id = ?", ideaID).Order("created_at desc").Find(&out.CaseStudies).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("idea_id = ?", ideaID).Order("created_at desc").Find(&out.MarketSnapshots).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("idea_id = ?", ideaID).Order("created_at desc").Find(&out.LensInsights).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("idea_id = ?", ideaID).Order("created_at desc").Find(&out.VCTheses).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("idea_id = ?", ideaID).Order("created_at desc").Find(&out.InvestorDecks).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func stringField(rec llmtext.Record, key, fallback string) string {
	if v, ok := rec[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
