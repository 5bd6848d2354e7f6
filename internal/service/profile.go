package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/pkg/encrypt"
)

const maxResumeBytes = 2 << 20 // 2 MiB of plain text

type ProfileService struct {
	db     *gorm.DB
	aesKey string
}

// NewProfileService creates the service. Resume text is encrypted at rest
// when aesKey is non-empty.
func NewProfileService(db *gorm.DB, aesKey string) *ProfileService {
	return &ProfileService{db: db, aesKey: aesKey}
}

func (s *ProfileService) Get(userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

// Update upserts the user's profile and marks onboarding complete.
func (s *ProfileService) Update(userID string, updates map[string]interface{}) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = model.Profile{UserID: userID}
		if cerr := s.db.Create(&profile).Error; cerr != nil {
			return nil, cerr
		}
	} else if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(&profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	s.db.Model(&model.User{}).Where("id = ?", userID).Update("onboarding_done", true)

	return s.Get(userID)
}

// SaveResume stores extracted resume text. Only plain text is accepted;
// binary uploads must be converted before this call.
func (s *ProfileService) SaveResume(userID, filename, text string) (*model.Profile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("40001:resume text is empty")
	}
	if len(text) > maxResumeBytes {
		return nil, fmt.Errorf("40001:resume too large")
	}
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("40001:resume must be plain text")
	}

	skills := extractSkills(text)

	if s.aesKey != "" {
		enc, err := encrypt.AESEncrypt(s.aesKey, text)
		if err != nil {
			return nil, fmt.Errorf("encrypt resume: %w", err)
		}
		text = enc
	}

	now := time.Now()
	return s.Update(userID, map[string]interface{}{
		"resume_text":        text,
		"resume_filename":    filename,
		"resume_uploaded_at": now,
		"extracted_skills":   model.StringList(skills),
	})
}

// skillVocabulary is the fixed set of skills recognized in resume text.
var skillVocabulary = []string{
	"python", "go", "javascript", "typescript", "java", "rust", "sql",
	"react", "node", "kubernetes", "docker", "aws", "gcp", "terraform",
	"machine learning", "data science", "product management", "design",
	"marketing", "sales", "fundraising",
}

// extractSkills matches resume text against the skill vocabulary.
func extractSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range skillVocabulary {
		if strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// BuildUserContext renders the profile into prompt text for personalized
// generation. A missing profile yields "".
func (s *ProfileService) BuildUserContext(userID string) string {
	profile, err := s.Get(userID)
	if err != nil {
		return ""
	}

	var b strings.Builder
	if profile.Background != "" {
		fmt.Fprintf(&b, "Background: %s\n", profile.Background)
	}
	if len(profile.SkillTags) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(profile.SkillTags, ", "))
	}
	if len(profile.ExtractedSkills) > 0 {
		fmt.Fprintf(&b, "Resume skills: %s\n", strings.Join(profile.ExtractedSkills, ", "))
	}
	if len(profile.Interests) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(profile.Interests, ", "))
	}
	if profile.Goals != "" {
		fmt.Fprintf(&b, "Goals: %s\n", profile.Goals)
	}
	if profile.PreferredVert != "" {
		fmt.Fprintf(&b, "Preferred vertical: %s\n", profile.PreferredVert)
	}
	if profile.HoursPerWeek > 0 {
		fmt.Fprintf(&b, "Available hours per week: %d\n", profile.HoursPerWeek)
	}
	if resume := s.resumeText(profile); resume != "" {
		if len(resume) > 4000 {
			resume = resume[:4000]
		}
		fmt.Fprintf(&b, "Resume:\n%s\n", resume)
	}
	return b.String()
}

// resumeText returns the stored resume in the clear. Text written before
// encryption was enabled is returned as is.
func (s *ProfileService) resumeText(profile *model.Profile) string {
	if profile.ResumeText == "" || s.aesKey == "" {
		return profile.ResumeText
	}
	plain, err := encrypt.AESDecrypt(s.aesKey, profile.ResumeText)
	if err != nil {
		return profile.ResumeText
	}
	return plain
}
