package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/config"
	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/pkg/googleauth"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(db, config.JWTConfig{Secret: "test-secret", ExpireHours: 24})
}

func TestRegister_CreatesAccountAndToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	res, err := svc.Register("New@Example.COM", "longenough", "Ada", "Lovelace")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, model.TierFree, res.User.Tier)
	assert.Equal(t, model.AccountSolo, res.User.AccountType)
}

func TestRegister_RejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("not-an-email", "longenough", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	_, err = svc.Register("ok@example.com", "short", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("dup@example.com", "longenough", "", "")
	require.NoError(t, err)

	_, err = svc.Register("DUP@example.com", "longenough", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40005")
}

func TestRegister_SeedsTopSystemIdeas(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	for _, seed := range []struct {
		title string
		score int
	}{
		{"Strong", 9},
		{"Stronger", 10},
		{"Weak", 3},
	} {
		idea := &model.Idea{Title: seed.title, Score: seed.score, MVPEffort: 3, Status: model.IdeaStatusSuggested}
		require.NoError(t, db.Create(idea).Error)
	}

	res, err := svc.Register("seeded@example.com", "longenough", "", "")
	require.NoError(t, err)

	var mine []model.Idea
	require.NoError(t, db.Where("user_id = ?", res.User.ID).Order("score desc").Find(&mine).Error)
	require.Len(t, mine, 2)
	assert.Equal(t, "Stronger", mine[0].Title)
	assert.Equal(t, "Strong", mine[1].Title)

	// The system copies stay unowned.
	var system int64
	db.Model(&model.Idea{}).Where("user_id IS NULL").Count(&system)
	assert.Equal(t, int64(3), system)
}

func TestLogin_WrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("u@example.com", "rightpassword", "", "")
	require.NoError(t, err)

	_, err = svc.Login("u@example.com", "wrongpassword")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40102")

	res, err := svc.Login("U@example.com", "rightpassword")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.NotNil(t, res.User.LastLoginAt)
}

func TestLogin_GoogleOnlyAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.GoogleLogin(&googleauth.UserInfo{Sub: "g-123", Email: "g@example.com"})
	require.NoError(t, err)

	_, err = svc.Login("g@example.com", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40102")
}

func TestLogin_DisabledAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	res, err := svc.Register("off@example.com", "longenough", "", "")
	require.NoError(t, err)
	require.NoError(t, db.Model(res.User).Update("is_active", false).Error)

	_, err = svc.Login("off@example.com", "longenough")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40104")
}

func TestGoogleLogin_LinksExistingEmailAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	first, err := svc.Register("link@example.com", "longenough", "", "")
	require.NoError(t, err)

	res, err := svc.GoogleLogin(&googleauth.UserInfo{
		Sub:     "g-456",
		Email:   "Link@example.com",
		Picture: "https://example.com/pic.png",
	})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, res.User.ID)

	var user model.User
	require.NoError(t, db.First(&user, "id = ?", first.User.ID).Error)
	assert.Equal(t, "g-456", user.GoogleID)
	assert.Equal(t, "https://example.com/pic.png", user.Avatar)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGoogleLogin_CreatesAccountOnFirstSight(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	res, err := svc.GoogleLogin(&googleauth.UserInfo{
		Sub:        "g-789",
		Email:      "fresh@example.com",
		GivenName:  "Fresh",
		FamilyName: "User",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", res.User.Email)
	assert.Equal(t, "Fresh", res.User.FirstName)
	assert.NotEmpty(t, res.Token)
}
