package llmtext

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Record is a loosely-typed parse result keyed by field name.
type Record map[string]any

// ParseRecord normalizes model output into a flat record. The cascade: the
// whole text as JSON (arrays collapse to their first element), any JSON
// object substring, header-split sections keyed by snake_cased titles, then
// the raw text under "raw_analysis". The result is never nil.
func ParseRecord(text string) Record {
	cleaned := StripFences(text)

	if rec := recordFromJSON(cleaned); rec != nil {
		return rec
	}
	if m := ExtractJSONObject(cleaned); m != "" {
		if rec := recordFromJSON(m); rec != nil {
			return rec
		}
	}
	if sections := splitByHeaders(cleaned); len(sections) > 0 {
		rec := Record{}
		for _, s := range sections {
			rec[snakeKey(s.Title)] = s.Content
		}
		return rec
	}
	return Record{"raw_analysis": cleaned}
}

func recordFromJSON(text string) Record {
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		return Record(obj)
	}
	var arr []map[string]any
	if err := json.Unmarshal([]byte(text), &arr); err == nil && len(arr) > 0 {
		return Record(arr[0])
	}
	return nil
}

// lensListFields are lens-insight fields the model tends to return as arrays
// even when asked for prose.
var lensListFields = []string{"opportunities", "risks", "recommendations"}

// ParseLensInsight parses a lens analysis, flattening list-valued fields into
// bulleted prose so the record stores uniformly.
func ParseLensInsight(text string) Record {
	rec := ParseRecord(text)
	for _, field := range lensListFields {
		if items, ok := rec[field].([]any); ok {
			var lines []string
			for _, item := range items {
				lines = append(lines, "• "+asString(item))
			}
			rec[field] = strings.Join(lines, "\n")
		}
	}
	return rec
}

// Slide is one slide of an investor deck.
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Deck is a normalized investor deck.
type Deck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// ParseInvestorDeck normalizes model output into a deck. A flat object with
// no slides list is synthesized into one slide per field; unusable output
// becomes a single raw slide.
func ParseInvestorDeck(text string) Deck {
	rec := ParseRecord(text)

	deck := Deck{Title: asString(rec["title"])}
	if deck.Title == "" {
		deck.Title = "Investor Deck"
	}

	if items, ok := rec["slides"].([]any); ok {
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				deck.Slides = append(deck.Slides, Slide{Title: "Slide " + strconv.Itoa(i+1), Content: asString(item)})
				continue
			}
			slide := Slide{Title: asString(obj["title"]), Content: asString(obj["content"])}
			if slide.Title == "" {
				slide.Title = "Slide " + strconv.Itoa(i+1)
			}
			deck.Slides = append(deck.Slides, slide)
		}
	}
	if len(deck.Slides) > 0 {
		return deck
	}

	// Flat object: each field becomes a slide, in stable order.
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k == "title" || k == "slides" || k == "raw_analysis" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		deck.Slides = append(deck.Slides, Slide{Title: titleCase(k), Content: asString(rec[k])})
	}
	if len(deck.Slides) == 0 {
		deck.Slides = append(deck.Slides, Slide{Title: "Raw Output", Content: asString(rec["raw_analysis"])})
	}
	return deck
}

func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
