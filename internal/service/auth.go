package service

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/config"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/pkg/googleauth"
	"github.com/id8-org/id8-recovery/pkg/jwt"
)

const seedIdeasOnRegister = 2

type AuthService struct {
	db  *gorm.DB
	cfg config.JWTConfig
}

func NewAuthService(db *gorm.DB, cfg config.JWTConfig) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Register creates an email/password account and seeds it with the current
// top system ideas so the first screen is never empty.
func (s *AuthService) Register(email, password, firstName, lastName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("40001:a valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("40001:password must be at least 8 characters")
	}

	var count int64
	s.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40005:an account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		HashedPassword: string(hashed),
		FirstName:      firstName,
		LastName:       lastName,
		Tier:           model.TierFree,
		AccountType:    model.AccountSolo,
		IsActive:       true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	s.seedIdeas(user)

	return s.issue(user)
}

// Login authenticates email/password credentials.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("40102:invalid email or password")
	}
	if user.HashedPassword == "" {
		return nil, fmt.Errorf("40102:this account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("40102:invalid email or password")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("40104:account disabled")
	}

	return s.issue(&user)
}

// GoogleLogin signs a user in from a verified Google profile, creating the
// account on first sight. An existing email account gets its Google identity
// linked instead of a duplicate row.
func (s *AuthService) GoogleLogin(info *googleauth.UserInfo) (*AuthResult, error) {
	if info.Email == "" {
		return nil, fmt.Errorf("40001:google profile has no email")
	}
	email := strings.ToLower(info.Email)

	var user model.User
	err := s.db.Where("google_id = ?", info.Sub).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		err = s.db.Where("email = ?", email).First(&user).Error
		if err == nil {
			// Link the Google identity to the existing email account.
			updates := map[string]interface{}{"google_id": info.Sub}
			if user.Avatar == "" && info.Picture != "" {
				updates["avatar"] = info.Picture
			}
			if uerr := s.db.Model(&user).Updates(updates).Error; uerr != nil {
				return nil, uerr
			}
		}
	}
	if err == gorm.ErrRecordNotFound {
		user = model.User{
			Email:       email,
			GoogleID:    info.Sub,
			FirstName:   info.GivenName,
			LastName:    info.FamilyName,
			Avatar:      info.Picture,
			Tier:        model.TierFree,
			AccountType: model.AccountSolo,
			IsActive:    true,
		}
		if cerr := s.db.Create(&user).Error; cerr != nil {
			return nil, cerr
		}
		s.seedIdeas(&user)
	} else if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("40104:account disabled")
	}
	return s.issue(&user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	now := time.Now()
	s.db.Model(user).Update("last_login_at", now)
	user.LastLoginAt = &now

	token, expiresAt, err := jwt.GenerateToken(s.cfg.Secret, user.ID, user.Email, user.Tier, s.cfg.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// seedIdeas copies the highest-signal system ideas to the new account.
// Failures here never block registration.
func (s *AuthService) seedIdeas(user *model.User) {
	var system []model.Idea
	if err := s.db.Where("user_id IS NULL AND status = ?", model.IdeaStatusSuggested).
		Order("score desc, mvp_effort asc").Limit(seedIdeasOnRegister).
		Find(&system).Error; err != nil {
		return
	}
	for _, src := range system {
		copyIdea := src
		copyIdea.ID = ""
		copyIdea.UserID = &user.ID
		copyIdea.DeepDive = nil
		copyIdea.DeepDiveRequested = false
		s.db.Create(&copyIdea)
	}
}
