package llmtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdeaList_FencedJSONArray(t *testing.T) {
	text := "Here are your ideas:\n```json\n[\n" +
		`{"title":"Churn Radar","hook":"Know who leaves before they do","value":"Saves revenue","evidence":"SaaS churn benchmarks","differentiator":"Realtime","call_to_action":"Start free","score":9,"mvp_effort":3,"type":"side_hustle"},` + "\n" +
		`{"title":"Meeting Miner","hook":"Mine your meetings","value":"Time back","score":8,"mvp_effort":4,"type":"full_scale"}` +
		"\n]\n```"

	ideas := ParseIdeaList(text)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Churn Radar", ideas[0].Title)
	assert.Equal(t, 9, ideas[0].Score)
	assert.Equal(t, 3, ideas[0].MVPEffort)
	assert.Equal(t, "side_hustle", ideas[0].Type)
	assert.Equal(t, "Meeting Miner", ideas[1].Title)
}

func TestParseIdeaList_QualityFilterAppliesToValidJSON(t *testing.T) {
	text := `[
		{"title":"Strong","hook":"h","value":"v","score":8,"mvp_effort":4},
		{"title":"Weak Score","hook":"h","value":"v","score":7,"mvp_effort":2},
		{"title":"Heavy Build","hook":"h","value":"v","score":10,"mvp_effort":5}
	]`

	ideas := ParseIdeaList(text)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Strong", ideas[0].Title)
}

func TestParseIdeaList_ObjectsBuriedInProse(t *testing.T) {
	text := `Sure! Based on the repository, here are two ideas.

First: {"title":"Log Lens","hook":"See your logs","value":"Debug faster","score":9,"mvp_effort":2}

And another one that might interest you:
{"title":"Deploy Diary","hook":"Track every deploy","value":"Audit trail","score":8,"mvp_effort":3}

Let me know if you want more detail.`

	ideas := ParseIdeaList(text)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Log Lens", ideas[0].Title)
	assert.Equal(t, "Deploy Diary", ideas[1].Title)
}

func TestParseIdeaList_HeadingSplitFreeText(t *testing.T) {
	text := `**Idea 1**
Inbox Zero Coach
Hook: An assistant that triages your inbox overnight
Value: Wake up to an empty inbox
Evidence: Email overload studies
Score: 9/10
MVP Effort: 3/10
Type: side_hustle

**Idea 2**
Enterprise Data Mesh Platform
Hook: Federate all the data
Score: 9/10
MVP Effort: 8/10`

	ideas := ParseIdeaList(text)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Inbox Zero Coach", ideas[0].Title)
	assert.Equal(t, "An assistant that triages your inbox overnight", ideas[0].Hook)
	assert.Equal(t, 9, ideas[0].Score)
	assert.Equal(t, 3, ideas[0].MVPEffort)
}

func TestParseIdeaList_NothingUsable(t *testing.T) {
	assert.Nil(t, ParseIdeaList("I'm sorry, I can't help with that."))
	assert.Nil(t, ParseIdeaList(""))
}

func TestParseIdeaList_HookStandsInForMissingTitle(t *testing.T) {
	text := `[{"hook":"Great hook sentence. More detail follows.","score":9,"mvp_effort":1},{"title":"Named","score":9,"mvp_effort":1}]`

	ideas := ParseIdeaList(text)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Great hook sentence", ideas[0].Title)
	assert.Equal(t, "Named", ideas[1].Title)
}

func TestParseIdeaList_NoTitleOrHookDropped(t *testing.T) {
	text := `[{"value":"just a value","score":9,"mvp_effort":1}]`

	assert.Empty(t, ParseIdeaList(text))
}

func TestParseSingleIdea_JSONWins(t *testing.T) {
	text := "```json\n" + `{"title":"Focus Timer","hook":"h","value":"v","score":"8","mvp_effort":2}` + "\n```"

	idea := ParseSingleIdea(text)
	require.NotNil(t, idea)
	assert.Equal(t, "Focus Timer", idea.Title)
	assert.Equal(t, 8, idea.Score, "string scores are coerced")
}

func TestParseSingleIdea_FreeText(t *testing.T) {
	text := `Smart Standup Bot
Hook: Your standup runs itself
Value: Async updates without meetings
Evidence: Remote work surveys
Differentiator: Learns each team's cadence
Call to Action: Install in one click
Score: 8/10
MVP Effort: 3/10
Type: side_hustle`

	idea := ParseSingleIdea(text)
	require.NotNil(t, idea)
	assert.Equal(t, "Smart Standup Bot", idea.Title)
	assert.Equal(t, "Your standup runs itself", idea.Hook)
	assert.Equal(t, "Async updates without meetings", idea.Value)
	assert.Equal(t, "Learns each team's cadence", idea.Differentiator)
	assert.Equal(t, "Install in one click", idea.CallToAction)
	assert.Equal(t, 8, idea.Score)
	assert.Equal(t, 3, idea.MVPEffort)
	assert.Equal(t, "side_hustle", idea.Type)
}

func TestParseSingleIdea_TitleFromHook(t *testing.T) {
	text := `Hook: Turn every support ticket into a knowledge base article. It happens automatically.
Value: Docs write themselves`

	idea := ParseSingleIdea(text)
	require.NotNil(t, idea)
	assert.Equal(t, "Turn every support ticket into a knowledge base article", idea.Title)
}

func TestParseSingleIdea_DefaultsWhenUnscored(t *testing.T) {
	idea := ParseSingleIdea("A perfectly reasonable product headline")
	require.NotNil(t, idea)
	assert.Equal(t, defaultScore, idea.Score)
	assert.Equal(t, defaultMVPEffort, idea.MVPEffort)
}

func TestParseSingleIdea_NoTitle(t *testing.T) {
	assert.Nil(t, ParseSingleIdea(""))
	assert.Nil(t, ParseSingleIdea("ok"))
}
