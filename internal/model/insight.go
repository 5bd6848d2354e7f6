package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

// CaseStudy compares an idea against a real company's trajectory.
type CaseStudy struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;index:idx_case_idea" json:"idea_id"`
	Company   string    `gorm:"type:varchar(128)" json:"company"`
	Fields    JSONMap   `gorm:"type:json" json:"fields"`
	LLMRaw    string    `gorm:"type:longtext" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (CaseStudy) TableName() string { return "case_studies" }

func (c *CaseStudy) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// MarketSnapshot is a point-in-time market sizing for an idea.
type MarketSnapshot struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;index:idx_market_idea" json:"idea_id"`
	Fields    JSONMap   `gorm:"type:json" json:"fields"`
	LLMRaw    string    `gorm:"type:longtext" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (MarketSnapshot) TableName() string { return "market_snapshots" }

func (m *MarketSnapshot) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// LensInsight analyzes an idea through a named lens (founder, investor,
// customer).
type LensInsight struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;index:idx_lens_idea" json:"idea_id"`
	Lens      string    `gorm:"type:varchar(20);not null" json:"lens"`
	Fields    JSONMap   `gorm:"type:json" json:"fields"`
	LLMRaw    string    `gorm:"type:longtext" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (LensInsight) TableName() string { return "lens_insights" }

func (l *LensInsight) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// VCThesis compares an idea against a venture firm's published thesis.
type VCThesis struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;index:idx_thesis_idea" json:"idea_id"`
	Firm      string    `gorm:"type:varchar(128)" json:"firm"`
	Fields    JSONMap   `gorm:"type:json" json:"fields"`
	LLMRaw    string    `gorm:"type:longtext" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (VCThesis) TableName() string { return "vc_theses" }

func (v *VCThesis) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// SlideList is a JSON column of deck slides.
type SlideList []llmtext.Slide

func (s SlideList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *SlideList) Scan(value interface{}) error {
	if value == nil {
		*s = SlideList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return json.Unmarshal(bytes, s)
}

// InvestorDeck is a generated pitch deck for an idea.
type InvestorDeck struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;index:idx_deck_idea" json:"idea_id"`
	Title     string    `gorm:"type:varchar(256)" json:"title"`
	Slides    SlideList `gorm:"type:json" json:"slides"`
	LLMRaw    string    `gorm:"type:longtext" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (InvestorDeck) TableName() string { return "investor_decks" }

func (d *InvestorDeck) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
