package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repo is a trending open-source repository used as a seed for idea
// generation.
type Repo struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(256);not null;uniqueIndex:uk_repo_name" json:"name"`
	URL            string         `gorm:"type:varchar(512);not null" json:"url"`
	Summary        string         `gorm:"type:text" json:"summary"`
	Language       string         `gorm:"type:varchar(64);index:idx_repo_language" json:"language"`
	TrendingPeriod string         `gorm:"type:varchar(20);default:daily" json:"trending_period"`
	Stargazers     int            `gorm:"default:0" json:"stargazers"`
	Forks          int            `gorm:"default:0" json:"forks"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Repo) TableName() string { return "repos" }

func (r *Repo) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
