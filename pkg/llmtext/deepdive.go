package llmtext

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// deepDiveSections is the canonical report layout, in presentation order.
// Each entry maps the section title to the JSON key a well-behaved model
// responds with.
var deepDiveSections = []struct {
	Title string
	Key   string
}{
	{"Product", "Product"},
	{"Timing / Why Now", "Timing"},
	{"Market Opportunity", "Market"},
	{"Strategic Moat / IP / Differentiator", "Moat"},
	{"Business & Funding Snapshot", "Funding"},
	{"Signal Score", "Signal Score"},
	{"Go / No-Go", "GoNoGo"},
	{"Summary", "Summary"},
}

const errorSectionTitle = "Error Generating Deep Dive"

// ParseDeepDive normalizes model output into the canonical deep-dive report.
// Strategies run in order and the first that yields sections wins:
//
//  1. canonical JSON object keyed by the known section names
//  2. legacy {"sections": [...]} shape
//  3. header-based splitting
//  4. numbered or bulleted splitting
//  5. the raw text as a single section
//
// The result is never empty.
func ParseDeepDive(text string) []Section {
	cleaned := StripFences(text)

	if sections := parseDeepDiveJSON(cleaned); sections != nil {
		return sections
	}
	if sections := splitByHeaders(cleaned); len(sections) > 0 {
		return sections
	}
	if sections := splitByNumbering(cleaned); len(sections) > 0 {
		return sections
	}
	return []Section{{Title: "Raw Analysis", Content: cleaned}}
}

func parseDeepDiveJSON(text string) []Section {
	candidate := text
	if !json.Valid([]byte(candidate)) {
		candidate = ExtractJSONObject(text)
		if candidate == "" {
			return nil
		}
	}

	// A JSON array where an object was asked for is a malformed response,
	// not a report. The error section is persisted so a rerun can replace it.
	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &arr); err == nil {
		return []Section{{Title: errorSectionTitle, Content: "The model returned an unexpected response shape."}}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil
	}

	if sections := canonicalSections(obj); sections != nil {
		return sections
	}
	return legacySections(obj)
}

// canonicalSections builds the fixed eight-section report. It requires at
// least one canonical key so that other JSON shapes fall through to the
// legacy and text strategies instead of producing an all-empty report.
func canonicalSections(obj map[string]json.RawMessage) []Section {
	found := false
	for _, s := range deepDiveSections {
		if _, ok := obj[s.Key]; ok {
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	sections := make([]Section, 0, len(deepDiveSections))
	for _, s := range deepDiveSections {
		sections = append(sections, Section{Title: s.Title, Content: sectionContent(obj[s.Key])})
	}
	return sections
}

// sectionContent renders a JSON value for display. Strings are unwrapped,
// structured values are indented as-is so the model's key order survives.
func sectionContent(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func legacySections(obj map[string]json.RawMessage) []Section {
	raw, ok := obj["sections"]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var sections []Section
	for i, item := range items {
		var entry struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(item, &entry); err != nil || (entry.Title == "" && entry.Content == "") {
			entry.Title = ""
			entry.Content = sectionContent(item)
		}
		if entry.Title == "" {
			entry.Title = "Section " + strconv.Itoa(i+1)
		}
		sections = append(sections, Section{Title: entry.Title, Content: entry.Content})
	}
	return sections
}

// ExtractSection returns the content of the section whose title contains
// name, matched case-insensitively. Missing sections yield "".
func ExtractSection(sections []Section, name string) string {
	needle := strings.ToLower(name)
	for _, s := range sections {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return s.Content
		}
	}
	return ""
}
