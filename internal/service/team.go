package service

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
)

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// Create starts a team owned by the user and flips their account to the
// team type.
func (s *TeamService) Create(userID, name string) (*model.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("40001:team name is required")
	}

	var user model.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if user.TeamID != nil {
		return nil, fmt.Errorf("40003:you already belong to a team")
	}

	team := &model.Team{Name: strings.TrimSpace(name), OwnerID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"team_id":      team.ID,
			"account_type": model.AccountTeam,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// Invite issues an invitation code for an email address. Owner only.
func (s *TeamService) Invite(inviterID, teamID, email string) (*model.Invite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("40001:a valid email is required")
	}

	var team model.Team
	if err := s.db.First(&team, "id = ?", teamID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:team not found")
		}
		return nil, err
	}
	if team.OwnerID != inviterID {
		return nil, fmt.Errorf("40301:only the team owner can invite members")
	}

	invite := &model.Invite{TeamID: teamID, Email: email, InviterID: inviterID}
	if err := s.db.Create(invite).Error; err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInvite redeems a code for the signed-in user. The invite must match
// the user's email and not already be used.
func (s *TeamService) AcceptInvite(userID, code string) (*model.Team, error) {
	var invite model.Invite
	if err := s.db.Where("code = ?", code).First(&invite).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:invite not found")
		}
		return nil, err
	}
	if invite.AcceptedAt != nil {
		return nil, fmt.Errorf("40003:invite has already been used")
	}

	var user model.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, invite.Email) {
		return nil, fmt.Errorf("40301:this invite was issued for a different email")
	}
	if user.TeamID != nil {
		return nil, fmt.Errorf("40003:you already belong to a team")
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invite).Update("accepted_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"team_id":      invite.TeamID,
			"account_type": model.AccountTeam,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	var team model.Team
	if err := s.db.Preload("Members").First(&team, "id = ?", invite.TeamID).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) Get(userID, teamID string) (*model.Team, error) {
	var team model.Team
	if err := s.db.Preload("Members").First(&team, "id = ?", teamID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("40401:team not found")
		}
		return nil, err
	}

	member := team.OwnerID == userID
	for _, m := range team.Members {
		if m.ID == userID {
			member = true
			break
		}
	}
	if !member {
		return nil, fmt.Errorf("40301:not a member of this team")
	}
	return &team, nil
}
