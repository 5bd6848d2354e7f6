package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/logger"
	"github.com/id8-org/id8-recovery/internal/model"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Team{},
		&model.Invite{},
		&model.Repo{},
		&model.Idea{},
		&model.Shortlist{},
		&model.IdeaVersion{},
		&model.Collaborator{},
		&model.ChangeProposal{},
		&model.Comment{},
		&model.CaseStudy{},
		&model.MarketSnapshot{},
		&model.LensInsight{},
		&model.VCThesis{},
		&model.InvestorDeck{},
	))
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	lg, err := logger.New("")
	require.NoError(t, err)
	return lg
}

func createUser(t *testing.T, db *gorm.DB, email, tier, accountType string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Tier: tier, AccountType: accountType, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createIdea(t *testing.T, db *gorm.DB, owner *model.User, title string) *model.Idea {
	t.Helper()
	idea := &model.Idea{
		Title:     title,
		Hook:      "a hook",
		Value:     "a value",
		Score:     8,
		MVPEffort: 3,
		Status:    model.IdeaStatusSuggested,
	}
	if owner != nil {
		idea.UserID = &owner.ID
	}
	require.NoError(t, db.Create(idea).Error)
	return idea
}

func grantRole(t *testing.T, db *gorm.DB, idea *model.Idea, user *model.User, role string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Collaborator{
		IdeaID: idea.ID,
		UserID: user.ID,
		Role:   role,
	}).Error)
}

// fakeCompleter stands in for the chat completion client.
type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, model string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}
