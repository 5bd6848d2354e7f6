// Package llmtext normalizes raw language-model output into typed records.
//
// Model output is untrusted: it may be clean JSON, JSON buried in prose or
// markdown fences, an array where an object was asked for, labeled free text,
// or nothing recognizable at all. Every parser in this package degrades
// through an ordered cascade of strategies and never fails — the terminal
// strategy always produces something.
package llmtext

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\\s*```")

	// One nesting level of braces is enough to pull a JSON object out of
	// surrounding prose; deeper structures are caught by the whole-text parse.
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

	headerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^#+\s*(.+)$`),                  // markdown headers
		regexp.MustCompile(`^([A-Z][A-Za-z\s]+):\s*$`),     // Title: format
		regexp.MustCompile(`^([A-Z][A-Za-z\s]+)\s*[-–—]\s*$`), // Title - format
		regexp.MustCompile(`^(\d+\.\s*[A-Z][A-Za-z\s]+)`),  // 1. Title format
	}

	numberedSplitRe = regexp.MustCompile(`\n\s*\d+\.\s*`)
	bulletSplitRe   = regexp.MustCompile(`\n\s*[-*•]\s*`)
	digitsRe        = regexp.MustCompile(`\d+`)
)

// StripFences unwraps the first markdown code fence if the text carries one.
// Text without fences is returned trimmed but otherwise untouched.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.Contains(s, "```") {
		return s
	}
	if m := fenceRe.FindStringSubmatch(s); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ExtractJSONObject locates the first JSON object substring in text and
// returns it, or "" when none parses.
func ExtractJSONObject(text string) string {
	if m := jsonObjectRe.FindString(text); m != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m), &obj); err == nil {
			return m
		}
	}
	return ""
}

// Section is one titled block of a parsed document.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// splitByHeaders carves text into sections at header-looking lines. Content
// before the first header is dropped; sections without content are dropped.
func splitByHeaders(text string) []Section {
	var sections []Section
	var current string
	var content []string

	flush := func() {
		if current != "" && len(content) > 0 {
			sections = append(sections, Section{
				Title:   current,
				Content: strings.TrimSpace(strings.Join(content, "\n")),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		header := ""
		for _, re := range headerPatterns {
			if m := re.FindStringSubmatch(line); m != nil {
				header = strings.TrimSpace(m[1])
				break
			}
		}
		if header != "" {
			flush()
			current = header
			content = nil
			continue
		}
		if current != "" {
			content = append(content, line)
		}
	}
	flush()
	return sections
}

// splitByNumbering carves text at numbered markers ("1. ", "2. " ...), falling
// back to bullet markers when no numbering is present.
func splitByNumbering(text string) []Section {
	var sections []Section

	parts := numberedSplitRe.Split(text, -1)
	if len(parts) > 1 {
		for i, part := range parts[1:] {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lines := strings.SplitN(part, "\n", 2)
			title := strings.TrimSpace(lines[0])
			content := ""
			if len(lines) > 1 {
				content = strings.TrimSpace(lines[1])
			}
			if content == "" {
				content = title
				title = "Section " + strconv.Itoa(i+1)
			}
			sections = append(sections, Section{Title: title, Content: content})
		}
	}
	if len(sections) > 0 {
		return sections
	}

	parts = bulletSplitRe.Split(text, -1)
	if len(parts) > 1 {
		for i, part := range parts[1:] {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			sections = append(sections, Section{Title: "Section " + strconv.Itoa(i+1), Content: part})
		}
	}
	return sections
}

// snakeKey turns a section title into a record field name.
func snakeKey(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "_")
}

// asInt coerces JSON-decoded values (float64, string digits, int) into an
// int, returning def when the value carries no usable number.
func asInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		if m := digitsRe.FindString(n); m != "" {
			if out, err := strconv.Atoi(m); err == nil {
				return out
			}
		}
	}
	return def
}

// asString coerces JSON-decoded values into a display string.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
