package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/id8-org/id8-recovery/pkg/llmtext"
)

func TestSectionList_ColumnCarriesSectionsWrapper(t *testing.T) {
	v, err := SectionList{{Title: "Product", Content: "x"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":[{"title":"Product","content":"x"}]}`, v.(string))
}

func TestSectionList_EmptyColumnStillWrapped(t *testing.T) {
	v, err := SectionList(nil).Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"sections":[]}`, v.(string))
}

func TestSectionList_APIJSONCarriesSectionsWrapper(t *testing.T) {
	idea := Idea{DeepDive: SectionList{{Title: "Summary", Content: "go"}}}
	b, err := json.Marshal(idea)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &out))
	assert.JSONEq(t, `{"sections":[{"title":"Summary","content":"go"}]}`, string(out["deep_dive"]))
}

func TestSectionList_ScanRoundTrip(t *testing.T) {
	v, err := SectionList{{Title: "Market", Content: "large"}}.Value()
	require.NoError(t, err)

	var got SectionList
	require.NoError(t, got.Scan(v))
	require.Len(t, got, 1)
	assert.Equal(t, llmtext.Section{Title: "Market", Content: "large"}, got[0])
}

func TestSectionList_ScanAcceptsBareArrayRows(t *testing.T) {
	var got SectionList
	require.NoError(t, got.Scan(`[{"title":"Old row","content":"pre-wrapper"}]`))
	require.Len(t, got, 1)
	assert.Equal(t, "Old row", got[0].Title)
}
