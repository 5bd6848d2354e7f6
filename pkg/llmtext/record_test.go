package llmtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord_WholeJSON(t *testing.T) {
	rec := ParseRecord("```json\n" + `{"summary":"s","verdict":"go"}` + "\n```")

	assert.Equal(t, "s", rec["summary"])
	assert.Equal(t, "go", rec["verdict"])
}

func TestParseRecord_ArrayCollapsesToFirstElement(t *testing.T) {
	rec := ParseRecord(`[{"summary":"first"},{"summary":"second"}]`)

	assert.Equal(t, "first", rec["summary"])
}

func TestParseRecord_EmbeddedObject(t *testing.T) {
	rec := ParseRecord(`Here is the analysis you asked for: {"summary":"s","score":7} hope it helps`)

	assert.Equal(t, "s", rec["summary"])
	assert.Equal(t, float64(7), rec["score"])
}

func TestParseRecord_HeaderSplitToSnakeCase(t *testing.T) {
	rec := ParseRecord(`# Market Snapshot
growing fast

# Key Risks
competition`)

	assert.Equal(t, "growing fast", rec["market_snapshot"])
	assert.Equal(t, "competition", rec["key_risks"])
}

func TestParseRecord_RawFallback(t *testing.T) {
	rec := ParseRecord("nothing structured here")

	require.Len(t, rec, 1)
	assert.Equal(t, "nothing structured here", rec["raw_analysis"])
}

func TestParseLensInsight_FlattensLists(t *testing.T) {
	rec := ParseLensInsight(`{"summary":"s","opportunities":["enter EU","bundle pricing"],"risks":"churn"}`)

	assert.Equal(t, "• enter EU\n• bundle pricing", rec["opportunities"])
	assert.Equal(t, "churn", rec["risks"], "scalar fields pass through")
}

func TestParseInvestorDeck_SlidesList(t *testing.T) {
	deck := ParseInvestorDeck(`{"title":"Churn Radar Deck","slides":[
		{"title":"Problem","content":"churn hurts"},
		{"content":"untitled"},
		"bare string slide"
	]}`)

	assert.Equal(t, "Churn Radar Deck", deck.Title)
	require.Len(t, deck.Slides, 3)
	assert.Equal(t, "Problem", deck.Slides[0].Title)
	assert.Equal(t, "Slide 2", deck.Slides[1].Title)
	assert.Equal(t, "untitled", deck.Slides[1].Content)
	assert.Equal(t, "Slide 3", deck.Slides[2].Title)
	assert.Equal(t, "bare string slide", deck.Slides[2].Content)
}

func TestParseInvestorDeck_FlatObjectSynthesizesSlides(t *testing.T) {
	deck := ParseInvestorDeck(`{"problem":"churn hurts","solution":"predict it","the_ask":"500k"}`)

	assert.Equal(t, "Investor Deck", deck.Title)
	require.Len(t, deck.Slides, 3)
	assert.Equal(t, "Problem", deck.Slides[0].Title)
	assert.Equal(t, "churn hurts", deck.Slides[0].Content)
	assert.Equal(t, "Solution", deck.Slides[1].Title)
	assert.Equal(t, "The Ask", deck.Slides[2].Title)
}

func TestParseInvestorDeck_RawFallbackSlide(t *testing.T) {
	deck := ParseInvestorDeck("free form pitch narrative")

	require.Len(t, deck.Slides, 1)
	assert.Equal(t, "Raw Output", deck.Slides[0].Title)
	assert.Equal(t, "free form pitch narrative", deck.Slides[0].Content)
}
