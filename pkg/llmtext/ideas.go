package llmtext

import (
	"encoding/json"
	"regexp"
	"strings"
)

// IdeaRecord is a normalized startup-idea pitch pulled out of model output.
type IdeaRecord struct {
	Title          string `json:"title"`
	Hook           string `json:"hook"`
	Value          string `json:"value"`
	Evidence       string `json:"evidence"`
	Differentiator string `json:"differentiator"`
	CallToAction   string `json:"call_to_action"`
	Score          int    `json:"score"`
	MVPEffort      int    `json:"mvp_effort"`
	Type           string `json:"type"`
}

const (
	defaultScore     = 5
	defaultMVPEffort = 5

	minKeepScore     = 8
	maxKeepMVPEffort = 4
)

var (
	ideaHeadingRe = regexp.MustCompile(`(?m)^(?:\*\*Idea\s+\d+\*\*|Idea\s+\d+|\d+\.)\s*`)
	scoreOf10Re   = regexp.MustCompile(`(\d+)/10`)
	ideaTypeRe    = regexp.MustCompile(`side_hustle|full_scale`)
	labelLineRe   = regexp.MustCompile(`(?i)^(hook|value|evidence|differentiator|call to action|type|score|mvp|complexity)\b`)
	bulletLineRe  = regexp.MustCompile(`^[-*•\d]`)
)

// keeps reports whether a record clears the quality bar. The bar applies to
// every parsing tier equally: well-formed JSON does not exempt a weak pitch.
func (r *IdeaRecord) keeps() bool {
	return r.Score >= minKeepScore && r.MVPEffort <= maxKeepMVPEffort
}

// ParseIdeaList normalizes model output expected to contain several idea
// pitches. It tries, in order: the whole text as a JSON array, every JSON
// object substring, then heading-based free-text extraction. A record needs
// a title, or a hook whose first sentence can stand in for one; anything
// else is discarded, as are records below the quality bar. A nil result
// means nothing usable survived.
func ParseIdeaList(text string) []IdeaRecord {
	cleaned := StripFences(text)

	if ideas := parseIdeaArray(cleaned); ideas != nil {
		return ideas
	}
	if ideas := parseIdeaObjects(cleaned); ideas != nil {
		return ideas
	}
	return parseIdeaHeadings(cleaned)
}

func parseIdeaArray(text string) []IdeaRecord {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil
	}
	var out []IdeaRecord
	for _, obj := range raw {
		if idea := ideaFromMap(obj); idea != nil && idea.keeps() {
			out = append(out, *idea)
		}
	}
	return out
}

func parseIdeaObjects(text string) []IdeaRecord {
	var out []IdeaRecord
	for _, m := range jsonObjectRe.FindAllString(text, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err != nil {
			continue
		}
		if idea := ideaFromMap(obj); idea != nil && idea.keeps() {
			out = append(out, *idea)
		}
	}
	return out
}

func parseIdeaHeadings(text string) []IdeaRecord {
	var out []IdeaRecord
	for _, block := range ideaHeadingRe.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if idea := ParseSingleIdea(block); idea != nil && idea.keeps() {
			out = append(out, *idea)
		}
	}
	return out
}

func ideaFromMap(obj map[string]any) *IdeaRecord {
	title := strings.TrimSpace(asString(obj["title"]))
	if title == "" {
		// The first sentence of the hook stands in for a missing title.
		title = firstSentence(asString(obj["hook"]))
	}
	if title == "" {
		return nil
	}
	return &IdeaRecord{
		Title:          title,
		Hook:           asString(obj["hook"]),
		Value:          asString(obj["value"]),
		Evidence:       asString(obj["evidence"]),
		Differentiator: asString(obj["differentiator"]),
		CallToAction:   asString(obj["call_to_action"]),
		Score:          asInt(obj["score"], defaultScore),
		MVPEffort:      asInt(obj["mvp_effort"], defaultMVPEffort),
		Type:           asString(obj["type"]),
	}
}

// ParseSingleIdea normalizes a single pitch. JSON wins when present; otherwise
// the fields are scavenged from labeled free text. Returns nil when no title
// can be established by any means.
func ParseSingleIdea(text string) *IdeaRecord {
	cleaned := StripFences(text)

	if m := ExtractJSONObject(cleaned); m != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			if idea := ideaFromMap(obj); idea != nil {
				return idea
			}
		}
	}
	return ideaFromText(cleaned)
}

func ideaFromText(text string) *IdeaRecord {
	lines := strings.Split(text, "\n")
	idea := &IdeaRecord{Score: defaultScore, MVPEffort: defaultMVPEffort}

	// Title: the first of the opening lines that reads like one. Label lines
	// and bullets are field content, not titles.
	for i, line := range lines {
		if i >= 3 {
			break
		}
		line = strings.TrimSpace(strings.Trim(line, "*# "))
		if len(line) >= 4 && len(line) < 100 && !labelLineRe.MatchString(line) && !bulletLineRe.MatchString(line) {
			idea.Title = line
			break
		}
	}
	if idea.Title == "" {
		for _, line := range lines {
			line = strings.TrimSpace(strings.Trim(line, "*# "))
			if len(line) >= 10 && len(line) <= 150 && !labelLineRe.MatchString(line) {
				idea.Title = line
				break
			}
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "hook"):
			idea.Hook = labelValue(line)
		case strings.HasPrefix(lower, "value"):
			idea.Value = labelValue(line)
		case strings.HasPrefix(lower, "evidence"):
			idea.Evidence = labelValue(line)
		case strings.HasPrefix(lower, "differentiator"):
			idea.Differentiator = labelValue(line)
		case strings.HasPrefix(lower, "call to action"):
			idea.CallToAction = labelValue(line)
		case strings.HasPrefix(lower, "score"):
			if m := scoreOf10Re.FindStringSubmatch(line); m != nil {
				idea.Score = asInt(m[1], defaultScore)
			}
		case strings.HasPrefix(lower, "mvp") || strings.HasPrefix(lower, "complexity"):
			if m := scoreOf10Re.FindStringSubmatch(line); m != nil {
				idea.MVPEffort = asInt(m[1], defaultMVPEffort)
			}
		case strings.HasPrefix(lower, "type"):
			if m := ideaTypeRe.FindString(lower); m != "" {
				idea.Type = m
			}
		}
	}

	if idea.Title == "" {
		idea.Title = firstSentence(idea.Hook)
	}
	if idea.Title == "" {
		idea.Title = firstSentence(idea.Value)
	}
	if idea.Title == "" {
		return nil
	}
	return idea
}

func labelValue(line string) string {
	if i := strings.IndexAny(line, ":-"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if len(s) > 150 {
		s = s[:150]
	}
	return s
}
