package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TierFree    = "free"
	TierPremium = "premium"

	AccountSolo = "solo"
	AccountTeam = "team"
)

type User struct {
	ID             string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email          string         `gorm:"type:varchar(128);uniqueIndex:idx_email;not null" json:"email"`
	HashedPassword string         `gorm:"type:varchar(128)" json:"-"`
	GoogleID       string         `gorm:"type:varchar(128);index:idx_google_id" json:"-"`
	FirstName      string         `gorm:"type:varchar(64)" json:"first_name"`
	LastName       string         `gorm:"type:varchar(64)" json:"last_name"`
	Avatar         string         `gorm:"type:varchar(512)" json:"avatar"`
	Tier           string         `gorm:"type:varchar(10);not null;default:free;index:idx_tier" json:"tier"`
	AccountType    string         `gorm:"type:varchar(10);not null;default:solo" json:"account_type"`
	TeamID         *string        `gorm:"type:varchar(36);index:idx_team_id" json:"team_id"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	OnboardingDone bool           `gorm:"default:false" json:"onboarding_done"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Team    *Team    `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type UserBrief struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Tier      string `json:"tier"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Tier:      u.Tier,
	}
}

// Profile holds the onboarding answers and resume text used to personalize
// idea generation.
type Profile struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID           string         `gorm:"type:varchar(36);not null;uniqueIndex:uk_profile_user" json:"user_id"`
	Background       string         `gorm:"type:text" json:"background"`
	SkillTags        StringList     `gorm:"type:json" json:"skill_tags"`
	Interests        StringList     `gorm:"type:json" json:"interests"`
	Goals            string         `gorm:"type:text" json:"goals"`
	PreferredVert    string         `gorm:"type:varchar(64)" json:"preferred_vertical"`
	HoursPerWeek     int            `gorm:"default:0" json:"hours_per_week"`
	ResumeText       string         `gorm:"type:longtext" json:"-"`
	ResumeFilename   string         `gorm:"type:varchar(256)" json:"resume_filename"`
	ResumeUploadedAt *time.Time     `json:"resume_uploaded_at"`
	ExtractedSkills  StringList     `gorm:"type:json" json:"extracted_skills"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string { return "user_profiles" }

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
