package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/id8-org/id8-recovery/internal/model"
)

const testAESKey = "0123456789abcdef" // 16 bytes

func TestUpdate_UpsertsAndMarksOnboardingDone(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, "")
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	profile, err := svc.Update(user.ID, map[string]interface{}{
		"background": "ten years of plumbing",
		"goals":      "own my own shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "ten years of plumbing", profile.Background)

	var u model.User
	require.NoError(t, db.First(&u, "id = ?", user.ID).Error)
	assert.True(t, u.OnboardingDone)

	// A second update touches the same row.
	_, err = svc.Update(user.ID, map[string]interface{}{"goals": "franchise"})
	require.NoError(t, err)
	var count int64
	db.Model(&model.Profile{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveResume_ValidatesInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, "")
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	_, err := svc.SaveResume(user.ID, "r.txt", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	_, err = svc.SaveResume(user.ID, "r.txt", string([]byte{0xff, 0xfe}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	_, err = svc.SaveResume(user.ID, "r.txt", strings.Repeat("x", maxResumeBytes+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestSaveResume_EncryptedAtRest(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, testAESKey)
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	_, err := svc.SaveResume(user.ID, "resume.txt", "Built data pipelines at Acme.")
	require.NoError(t, err)

	var stored model.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.NotContains(t, stored.ResumeText, "Acme")

	ctx := svc.BuildUserContext(user.ID)
	assert.Contains(t, ctx, "Built data pipelines at Acme.")
}

func TestBuildUserContext_RendersProfileFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, "")
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	assert.Equal(t, "", svc.BuildUserContext(user.ID))

	_, err := svc.Update(user.ID, map[string]interface{}{
		"background":     "ex firefighter",
		"skill_tags":     model.StringList{"ops", "logistics"},
		"hours_per_week": 12,
	})
	require.NoError(t, err)

	ctx := svc.BuildUserContext(user.ID)
	assert.Contains(t, ctx, "Background: ex firefighter")
	assert.Contains(t, ctx, "Skills: ops, logistics")
	assert.Contains(t, ctx, "Available hours per week: 12")
}

func TestSaveResume_ExtractsSkills(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, "")
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	profile, err := svc.SaveResume(user.ID, "resume.txt",
		"Senior engineer. Shipped Go and Python services on Kubernetes, led fundraising prep.")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"python", "go", "kubernetes", "fundraising"}, []string(profile.ExtractedSkills))
}

func TestSaveResume_SkillsSurviveEncryption(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db, testAESKey)
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	profile, err := svc.SaveResume(user.ID, "resume.txt", "Ten years of React and TypeScript at Acme.")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"react", "typescript"}, []string(profile.ExtractedSkills))

	ctx := svc.BuildUserContext(user.ID)
	assert.Contains(t, ctx, "Resume skills: typescript, react")
}
