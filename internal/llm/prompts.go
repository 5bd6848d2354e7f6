package llm

import (
	"fmt"
	"strings"
)

const ideaListFormat = `Return a JSON array. Each element must be an object with these keys:
title, hook, value, evidence, differentiator, call_to_action, score (1-10), mvp_effort (1-10), type ("side_hustle" or "full_scale").
Only include ideas you would score 8 or higher with an MVP effort of 4 or lower.`

const deepDiveFormat = `Return a JSON object with exactly these keys:
"Product", "Timing", "Market", "Moat", "Funding", "Signal Score", "GoNoGo", "Summary".
Each value should be a thorough prose section. "Signal Score" may be an object of named sub-scores.`

// IdeaGenerationPrompt asks for startup ideas seeded by a trending
// repository. userContext is optional personalization built from the
// requesting user's profile.
func IdeaGenerationPrompt(repoName, repoSummary, language, userContext string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a startup analyst. Generate %d startup ideas inspired by the open-source project %q", count, repoName)
	if language != "" {
		fmt.Fprintf(&b, " (%s)", language)
	}
	b.WriteString(".\n\n")
	if repoSummary != "" {
		fmt.Fprintf(&b, "Project summary:\n%s\n\n", repoSummary)
	}
	if userContext != "" {
		fmt.Fprintf(&b, "Tailor the ideas to this founder:\n%s\n\n", userContext)
	}
	b.WriteString(ideaListFormat)
	return b.String()
}

// DeepDivePrompt asks for the full eight-section analysis of one idea.
// userContext is optional personalization from the requesting user's profile.
func DeepDivePrompt(title, hook, value, userContext string) string {
	var b strings.Builder
	b.WriteString("You are a startup analyst. Produce a rigorous deep-dive analysis of this idea.\n\n")
	fmt.Fprintf(&b, "Idea: %s\n", title)
	if hook != "" {
		fmt.Fprintf(&b, "Hook: %s\n", hook)
	}
	if value != "" {
		fmt.Fprintf(&b, "Value: %s\n", value)
	}
	b.WriteString("\n")
	if userContext != "" {
		fmt.Fprintf(&b, "Tailor the analysis to this founder:\n%s\n\n", userContext)
	}
	b.WriteString(deepDiveFormat)
	return b.String()
}

// IterationPrompt asks for a revised deep dive incorporating the user's
// feedback on the current analysis.
func IterationPrompt(title, currentAnalysis, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are refining the analysis of the startup idea %q.\n\n", title)
	if currentAnalysis != "" {
		fmt.Fprintf(&b, "Current analysis:\n%s\n\n", currentAnalysis)
	}
	fmt.Fprintf(&b, "Incorporate this feedback and regenerate the complete analysis:\n%s\n\n", feedback)
	b.WriteString(deepDiveFormat)
	return b.String()
}

// CaseStudyPrompt asks for a comparison against a real company.
func CaseStudyPrompt(title, hook, company string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare the startup idea %q", title)
	if hook != "" {
		fmt.Fprintf(&b, " (%s)", hook)
	}
	if company != "" {
		fmt.Fprintf(&b, " against the trajectory of %s", company)
	} else {
		b.WriteString(" against the most relevant real company you can identify")
	}
	b.WriteString(`.

Return a JSON object with keys: company, what_they_did, what_worked, what_failed, lessons, applicability.`)
	return b.String()
}

// MarketSnapshotPrompt asks for a current market sizing.
func MarketSnapshotPrompt(title, hook string) string {
	return fmt.Sprintf(`Produce a market snapshot for the startup idea %q. %s

Return a JSON object with keys: market_size, growth_rate, key_players, customer_segments, channels, pricing_benchmarks.`, title, hook)
}

// LensInsightPrompt asks for an analysis through one named lens.
func LensInsightPrompt(title, hook, lens string) string {
	return fmt.Sprintf(`Analyze the startup idea %q (%s) from the perspective of a %s.

Return a JSON object with keys: summary, opportunities, risks, recommendations.`, title, hook, lens)
}

// VCThesisPrompt asks how the idea matches a venture firm's thesis.
func VCThesisPrompt(title, hook, firm string) string {
	target := "a leading venture firm whose published thesis best matches"
	if firm != "" {
		target = fmt.Sprintf("the venture firm %s and its published thesis regarding", firm)
	}
	return fmt.Sprintf(`Evaluate the startup idea %q (%s) against %s this space.

Return a JSON object with keys: firm, thesis_summary, alignment, gaps, pitch_angle.`, title, hook, target)
}

// InvestorDeckPrompt asks for a complete pitch deck.
func InvestorDeckPrompt(title, hook, value string) string {
	return fmt.Sprintf(`Create an investor pitch deck for the startup idea %q.
Hook: %s
Value: %s

Return a JSON object with keys: title and slides, where slides is an array of {"title", "content"} objects covering problem, solution, market, product, traction, business model, competition, team, and the ask.`, title, hook, value)
}
