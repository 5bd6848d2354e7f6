// Package tiers maps subscription tiers and account types to feature
// entitlements and quotas.
package tiers

import "github.com/id8-org/id8-recovery/internal/model"

// Feature names checked by handlers and middleware.
const (
	FeatureBasicIdeas       = "basic_ideas"
	FeatureDeepDive         = "deep_dive"
	FeatureIteration        = "iteration"
	FeatureAdvancedInsights = "advanced_insights"
	FeatureCollaboration    = "collaboration"
	FeatureUnlimitedIdeas   = "unlimited_ideas"
)

var tierFeatures = map[string][]string{
	model.TierFree: {
		FeatureBasicIdeas,
	},
	model.TierPremium: {
		FeatureBasicIdeas,
		FeatureDeepDive,
		FeatureIteration,
		FeatureAdvancedInsights,
		FeatureUnlimitedIdeas,
	},
}

// Collaboration rides on the account type, not the tier: team accounts of
// any tier can share ideas.
var accountFeatures = map[string][]string{
	model.AccountSolo: {},
	model.AccountTeam: {FeatureCollaboration},
}

var tierMaxIdeas = map[string]int{
	model.TierFree:    10,
	model.TierPremium: 100,
}

// HasFeature reports whether the user's tier or account type grants the
// feature. Unknown tiers grant nothing.
func HasFeature(user *model.User, feature string) bool {
	for _, f := range tierFeatures[user.Tier] {
		if f == feature {
			return true
		}
	}
	for _, f := range accountFeatures[user.AccountType] {
		if f == feature {
			return true
		}
	}
	return false
}

// MaxIdeas returns the idea quota for the user's tier. Zero means the tier
// is unknown and nothing may be created.
func MaxIdeas(user *model.User) int {
	return tierMaxIdeas[user.Tier]
}

// Features lists everything the user is entitled to.
func Features(user *model.User) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range tierFeatures[user.Tier] {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range accountFeatures[user.AccountType] {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
