package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/id8-org/id8-recovery/internal/model"
	"github.com/id8-org/id8-recovery/internal/notify"
)

func newIdeaService(t *testing.T, db *gorm.DB, completer Completer) *IdeaService {
	t.Helper()
	return NewIdeaService(db, completer, NewProfileService(db, ""), NewVersionService(db), notify.NoopNotifier{}, "deep-model", newTestLogger(t))
}

func createRepo(t *testing.T, db *gorm.DB, name string) *model.Repo {
	t.Helper()
	repo := &model.Repo{
		Name:     name,
		URL:      "https://github.com/" + name,
		Summary:  "a trending project",
		Language: "Go",
	}
	require.NoError(t, db.Create(repo).Error)
	return repo
}

func TestCreateIdea_RequiresTitle(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	_, err := svc.Create(user, &model.Idea{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestCreateIdea_FreeTierQuota(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	for i := 0; i < 10; i++ {
		_, err := svc.Create(user, &model.Idea{Title: "idea"})
		require.NoError(t, err)
	}
	_, err := svc.Create(user, &model.Idea{Title: "one too many"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40302")
}

func TestCreateIdea_PremiumIsUnlimited(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)

	for i := 0; i < 12; i++ {
		_, err := svc.Create(user, &model.Idea{Title: "idea"})
		require.NoError(t, err)
	}
}

func TestList_IncludesUnownedSystemIdeas(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	other := createUser(t, db, "other@example.com", model.TierFree, model.AccountSolo)
	createIdea(t, db, user, "Mine")
	createIdea(t, db, nil, "System")
	createIdea(t, db, other, "Someone else's")

	ideas, total, err := svc.List(user.ID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	titles := []string{ideas[0].Title, ideas[1].Title}
	assert.ElementsMatch(t, []string{"Mine", "System"}, titles)
}

func TestAdopt_CopiesSystemIdea(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	system := createIdea(t, db, nil, "System idea")

	adopted, err := svc.Adopt(user, system.ID)
	require.NoError(t, err)
	assert.NotEqual(t, system.ID, adopted.ID)
	require.NotNil(t, adopted.UserID)
	assert.Equal(t, user.ID, *adopted.UserID)

	// The original stays unowned.
	var original model.Idea
	require.NoError(t, db.First(&original, "id = ?", system.ID).Error)
	assert.Nil(t, original.UserID)
}

func TestAdopt_OwnedIdeaRefused(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	other := createUser(t, db, "other@example.com", model.TierFree, model.AccountSolo)
	owned := createIdea(t, db, other, "Taken")

	_, err := svc.Adopt(user, owned.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40003")
}

func TestUpdate_RejectsProtectedFields(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	idea := createIdea(t, db, user, "Idea")

	_, err := svc.Update(user.ID, idea.ID, map[string]interface{}{"user_id": "someone-else"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	updated, err := svc.Update(user.ID, idea.ID, map[string]interface{}{"title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestGenerate_PersistsParsedIdeas(t *testing.T) {
	db := newTestDB(t)
	completer := &fakeCompleter{response: "```json\n[" +
		`{"title":"Idea One","hook":"h1","value":"v1","score":9,"mvp_effort":2,"type":"side_hustle"},` +
		`{"title":"Idea Two","hook":"h2","value":"v2","score":8,"mvp_effort":4,"type":"full_scale"},` +
		`{"title":"Weak Idea","hook":"h3","value":"v3","score":5,"mvp_effort":5}` +
		"]\n```"}
	svc := newIdeaService(t, db, completer)
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	repo := createRepo(t, db, "acme/widget")

	ideas, err := svc.Generate(context.Background(), user, repo.ID, 3)
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Idea One", ideas[0].Title)
	require.NotNil(t, ideas[0].RepoID)
	assert.Equal(t, repo.ID, *ideas[0].RepoID)
	require.NotNil(t, ideas[0].UserID)
	assert.Equal(t, user.ID, *ideas[0].UserID)

	var count int64
	db.Model(&model.Idea{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestGenerate_UnusableOutputReturnsRaw(t *testing.T) {
	db := newTestDB(t)
	completer := &fakeCompleter{response: "I'm sorry, I cannot help with that."}
	svc := newIdeaService(t, db, completer)
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	repo := createRepo(t, db, "acme/widget")

	_, err := svc.Generate(context.Background(), user, repo.ID, 3)
	require.Error(t, err)
	var noIdeas *NoIdeasError
	require.True(t, errors.As(err, &noIdeas))
	assert.Equal(t, completer.response, noIdeas.Raw)
}

func TestGenerate_MissingRepo(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: "[]"})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)

	_, err := svc.Generate(context.Background(), user, "nope", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40401")
}

func TestDeepDive_ParsesAndSnapshots(t *testing.T) {
	db := newTestDB(t)
	completer := &fakeCompleter{response: `{"Product":"solid","Summary":"go for it"}`}
	svc := newIdeaService(t, db, completer)
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, user, "Deep idea")

	result, err := svc.RequestDeepDive(context.Background(), user.ID, idea.ID)
	require.NoError(t, err)
	assert.True(t, result.DeepDiveRequested)
	assert.Equal(t, model.IdeaStatusDeepDive, result.Status)
	require.Len(t, result.DeepDive, 8)
	assert.Equal(t, "Product", result.DeepDive[0].Title)
	assert.Equal(t, "solid", result.DeepDive[0].Content)

	var versions []model.IdeaVersion
	require.NoError(t, db.Where("idea_id = ?", idea.ID).Find(&versions).Error)
	assert.Len(t, versions, 1)
}

func TestDeepDive_ModelFailureDegradesToErrorSection(t *testing.T) {
	db := newTestDB(t)
	completer := &fakeCompleter{err: errors.New("upstream down")}
	svc := newIdeaService(t, db, completer)
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, user, "Deep idea")

	result, err := svc.RequestDeepDive(context.Background(), user.ID, idea.ID)
	require.NoError(t, err)
	assert.True(t, result.DeepDiveRequested)
	require.Len(t, result.DeepDive, 1)
	assert.Equal(t, "Error Generating Deep Dive", result.DeepDive[0].Title)
}

func TestDeepDive_OwnerOnly(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	owner := createUser(t, db, "owner@example.com", model.TierPremium, model.AccountTeam)
	editor := createUser(t, db, "editor@example.com", model.TierPremium, model.AccountTeam)
	idea := createIdea(t, db, owner, "Deep idea")
	grantRole(t, db, idea, editor, model.CollabRoleEditor)

	_, err := svc.RequestDeepDive(context.Background(), editor.ID, idea.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")
}

func TestIterate_EditorsAllowedFeedbackRequired(t *testing.T) {
	db := newTestDB(t)
	completer := &fakeCompleter{response: `{"Summary":"revised"}`}
	svc := newIdeaService(t, db, completer)
	owner := createUser(t, db, "owner@example.com", model.TierPremium, model.AccountTeam)
	editor := createUser(t, db, "editor@example.com", model.TierPremium, model.AccountTeam)
	idea := createIdea(t, db, owner, "Iterate me")
	grantRole(t, db, idea, editor, model.CollabRoleEditor)

	_, err := svc.Iterate(context.Background(), editor.ID, idea.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	result, err := svc.Iterate(context.Background(), editor.ID, idea.ID, "make it sharper")
	require.NoError(t, err)
	assert.Equal(t, model.IdeaStatusIterating, result.Status)
}

func TestShortlist_AddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	idea := createIdea(t, db, user, "Keeper")

	require.NoError(t, svc.AddToShortlist(user.ID, idea.ID))
	require.NoError(t, svc.AddToShortlist(user.ID, idea.ID))

	items, err := svc.ListShortlist(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, idea.ID, items[0].IdeaID)

	require.NoError(t, svc.RemoveFromShortlist(user.ID, idea.ID))
	items, err = svc.ListShortlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 0)
}

func TestValidate_DeepDivesAndParksConsidering(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Product":"solid","Summary":"go for it"}`})
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)

	idea, err := svc.Validate(context.Background(), user, &model.Idea{Title: "My own idea", Hook: "a hook"})
	require.NoError(t, err)
	assert.Equal(t, model.IdeaStatusConsidering, idea.Status)
	assert.True(t, idea.DeepDiveRequested)
	assert.NotEmpty(t, idea.DeepDive)

	var versions int64
	db.Model(&model.IdeaVersion{}).Where("idea_id = ?", idea.ID).Count(&versions)
	assert.Equal(t, int64(1), versions)
}

func TestValidate_QuotaStillApplies(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Summary":"x"}`})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	for i := 0; i < 10; i++ {
		createIdea(t, db, user, "filler")
	}

	_, err := svc.Validate(context.Background(), user, &model.Idea{Title: "Over quota"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40302")
}

func TestRerun_AppliesEditsAndRegenerates(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Product":"updated take","Summary":"fresh"}`})
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, user, "Before rename")

	updated, err := svc.Rerun(context.Background(), user.ID, idea.ID, map[string]interface{}{"title": "After rename"})
	require.NoError(t, err)
	assert.Equal(t, "After rename", updated.Title)
	assert.NotEmpty(t, updated.DeepDive)

	var versions int64
	db.Model(&model.IdeaVersion{}).Where("idea_id = ?", idea.ID).Count(&versions)
	assert.Equal(t, int64(1), versions)
}

func TestRerun_RejectsProtectedFields(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Summary":"x"}`})
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, user, "Mine")

	_, err := svc.Rerun(context.Background(), user.ID, idea.ID, map[string]interface{}{"user_id": "someone-else"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestRerun_StrangerDenied(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Summary":"x"}`})
	owner := createUser(t, db, "owner@example.com", model.TierPremium, model.AccountSolo)
	stranger := createUser(t, db, "stranger@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, owner, "Private")

	_, err := svc.Rerun(context.Background(), stranger.ID, idea.ID, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40301")
}

func TestSetStatus_UnknownRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	idea := createIdea(t, db, user, "Mine")

	_, err := svc.SetStatus(user.ID, idea.ID, "on_fire")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")
}

func TestUpdate_EmptyTitleRejected(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	idea := createIdea(t, db, user, "Keep this title")

	_, err := svc.Update(user.ID, idea.ID, map[string]interface{}{"title": "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "40001")

	got, err := svc.Get(user.ID, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keep this title", got.Title)
}

func TestDeepDive_PreservesGenerationRaw(t *testing.T) {
	db := newTestDB(t)
	svc := newIdeaService(t, db, &fakeCompleter{response: `{"Product":"solid","Summary":"go"}`})
	user := createUser(t, db, "u@example.com", model.TierPremium, model.AccountSolo)
	idea := createIdea(t, db, user, "Audited")
	require.NoError(t, db.Model(idea).Update("llm_raw_response", "original pitch raw").Error)

	got, err := svc.RequestDeepDive(context.Background(), user.ID, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "original pitch raw", got.LLMRawResponse)
	assert.Equal(t, `{"Product":"solid","Summary":"go"}`, got.DeepDiveRaw)
}

func TestUpdate_ConcurrentNonConflictingFieldsBothSurvive(t *testing.T) {
	db := newTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc := newIdeaService(t, db, &fakeCompleter{})
	user := createUser(t, db, "u@example.com", model.TierFree, model.AccountSolo)
	idea := createIdea(t, db, user, "Contended")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, uerr := svc.Update(user.ID, idea.ID, map[string]interface{}{"hook": "new hook"})
		assert.NoError(t, uerr)
	}()
	go func() {
		defer wg.Done()
		_, uerr := svc.Update(user.ID, idea.ID, map[string]interface{}{"value": "new value"})
		assert.NoError(t, uerr)
	}()
	wg.Wait()

	got, err := svc.Get(user.ID, idea.ID)
	require.NoError(t, err)
	assert.Equal(t, "new hook", got.Hook)
	assert.Equal(t, "new value", got.Value)
}
