package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

// Idea lifecycle statuses.
const (
	IdeaStatusSuggested   = "suggested"
	IdeaStatusDeepDive    = "deep_dive"
	IdeaStatusIterating   = "iterating"
	IdeaStatusConsidering = "considering"
	IdeaStatusClosed      = "closed"

	IdeaTypeSideHustle = "side_hustle"
	IdeaTypeFullScale  = "full_scale"
)

// SectionList is a JSON column of titled report sections. The serialized
// form is always the wrapped document {"sections":[...]}, in the column and
// in API responses alike.
type SectionList []llmtext.Section

type sectionsDoc struct {
	Sections []llmtext.Section `json:"sections"`
}

func (s SectionList) MarshalJSON() ([]byte, error) {
	doc := sectionsDoc{Sections: s}
	if doc.Sections == nil {
		doc.Sections = []llmtext.Section{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON accepts the wrapped document and, for rows written before
// the wrapper existed, a bare section array.
func (s *SectionList) UnmarshalJSON(data []byte) error {
	var doc sectionsDoc
	if err := json.Unmarshal(data, &doc); err == nil {
		*s = doc.Sections
		return nil
	}
	var arr []llmtext.Section
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*s = arr
	return nil
}

func (s SectionList) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *SectionList) Scan(value interface{}) error {
	if value == nil {
		*s = SectionList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return s.UnmarshalJSON(bytes)
}

// Idea is a generated startup pitch. System ideas produced by the nightly
// pipeline carry a nil UserID until a user adopts them.
type Idea struct {
	ID                string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID            *string        `gorm:"type:varchar(36);index:idx_idea_user" json:"user_id"`
	RepoID            *string        `gorm:"type:varchar(36);index:idx_idea_repo" json:"repo_id"`
	Title             string         `gorm:"type:varchar(256);not null" json:"title"`
	Hook              string         `gorm:"type:text" json:"hook"`
	Value             string         `gorm:"type:text" json:"value"`
	Evidence          string         `gorm:"type:text" json:"evidence"`
	Differentiator    string         `gorm:"type:text" json:"differentiator"`
	CallToAction      string         `gorm:"type:text" json:"call_to_action"`
	Score             int            `gorm:"default:5" json:"score"`
	MVPEffort         int            `gorm:"default:5" json:"mvp_effort"`
	Type              string         `gorm:"type:varchar(20)" json:"type"`
	Status            string         `gorm:"type:varchar(20);default:suggested;index:idx_idea_status" json:"status"`
	BusinessModel     string         `gorm:"type:text" json:"business_model"`
	Positioning       string         `gorm:"type:text" json:"positioning"`
	DeepDive          SectionList    `gorm:"type:json" json:"deep_dive"`
	DeepDiveRequested bool           `gorm:"default:false" json:"deep_dive_requested"`
	LLMRawResponse    string         `gorm:"type:longtext" json:"-"`
	DeepDiveRaw       string         `gorm:"column:deep_dive_raw_response;type:longtext" json:"-"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Repo *Repo `gorm:"foreignKey:RepoID" json:"repo,omitempty"`
}

func (Idea) TableName() string { return "ideas" }

func (i *Idea) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Shortlist marks an idea a user wants to keep an eye on.
type Shortlist struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_shortlist" json:"user_id"`
	IdeaID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_shortlist" json:"idea_id"`
	CreatedAt time.Time `json:"created_at"`

	Idea *Idea `gorm:"foreignKey:IdeaID" json:"idea,omitempty"`
}

func (Shortlist) TableName() string { return "shortlists" }

func (s *Shortlist) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
