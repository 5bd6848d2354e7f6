package tiers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/id8-org/id8-recovery/internal/model"
)

func TestHasFeature(t *testing.T) {
	freeSolo := &model.User{Tier: model.TierFree, AccountType: model.AccountSolo}
	freeTeam := &model.User{Tier: model.TierFree, AccountType: model.AccountTeam}
	premiumSolo := &model.User{Tier: model.TierPremium, AccountType: model.AccountSolo}

	assert.True(t, HasFeature(freeSolo, FeatureBasicIdeas))
	assert.False(t, HasFeature(freeSolo, FeatureDeepDive))
	assert.False(t, HasFeature(freeSolo, FeatureCollaboration))

	assert.True(t, HasFeature(freeTeam, FeatureCollaboration), "collaboration follows account type")
	assert.False(t, HasFeature(freeTeam, FeatureDeepDive))

	assert.True(t, HasFeature(premiumSolo, FeatureDeepDive))
	assert.True(t, HasFeature(premiumSolo, FeatureAdvancedInsights))
	assert.False(t, HasFeature(premiumSolo, FeatureCollaboration))
}

func TestHasFeature_UnknownTier(t *testing.T) {
	u := &model.User{Tier: "enterprise", AccountType: model.AccountSolo}
	assert.False(t, HasFeature(u, FeatureBasicIdeas))
}

func TestMaxIdeas(t *testing.T) {
	assert.Equal(t, 10, MaxIdeas(&model.User{Tier: model.TierFree}))
	assert.Equal(t, 100, MaxIdeas(&model.User{Tier: model.TierPremium}))
	assert.Equal(t, 0, MaxIdeas(&model.User{Tier: "unknown"}))
}

func TestFeatures_Deduplicated(t *testing.T) {
	u := &model.User{Tier: model.TierPremium, AccountType: model.AccountTeam}
	feats := Features(u)

	seen := make(map[string]int)
	for _, f := range feats {
		seen[f]++
	}
	for f, n := range seen {
		assert.Equal(t, 1, n, "feature %s listed more than once", f)
	}
	assert.Contains(t, feats, FeatureCollaboration)
	assert.Contains(t, feats, FeatureDeepDive)
}
