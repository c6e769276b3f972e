package script

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TopicSuggestion is one brainstormed news idea. ThaiTitle is serialized as
// "vietnameseTitle" because stored ideas from earlier releases use that key.
type TopicSuggestion struct {
	Title     string `json:"title"`
	ThaiTitle string `json:"vietnameseTitle,omitempty"`
	Outline   string `json:"outline"`
}

// VisualPrompt pairs an English video-generation prompt with its Thai
// translation. The Thai text travels under the legacy "vietnamese" key.
type VisualPrompt struct {
	English string `json:"english"`
	Thai    string `json:"vietnamese"`
}

// SectionVisual is one entry of a whole-script visual prompt pass.
type SectionVisual struct {
	Scene   string `json:"scene"`
	English string `json:"english"`
	Thai    string `json:"vietnamese"`
}

// Scene is one 8-second production unit inside a script part.
type Scene struct {
	SceneNumber  int    `json:"sceneNumber"`
	Summary      string `json:"summary"`
	VisualPrompt string `json:"visualPrompt"`
}

// PartSummary groups the scenes of one script section.
type PartSummary struct {
	PartTitle string `json:"partTitle"`
	Scenes    []Scene `json:"scenes"`
}

// Models return JSON wrapped in markdown fences or surrounded by prose often
// enough that every decoder goes through cleanJSON first.

func cleanJSON(text string, wantArray bool) string {
	text = stripMarkdownFences(text)
	open, close := "{", "}"
	if wantArray {
		open, close = "[", "]"
	}
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

func decodeObject(text string, v any) error {
	cleaned := cleanJSON(text, false)
	if cleaned == "" {
		return fmt.Errorf("no JSON content found in response")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("invalid JSON: %w (raw: %s)", err, truncate(cleaned, 300))
	}
	return nil
}

func decodeArray(text string, v any) error {
	cleaned := cleanJSON(text, true)
	if cleaned == "" {
		return fmt.Errorf("no JSON content found in response")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("invalid JSON: %w (raw: %s)", err, truncate(cleaned, 300))
	}
	return nil
}

// ParseTopicSuggestions decodes the {"suggestions": [...]} payload.
func ParseTopicSuggestions(text string) ([]TopicSuggestion, error) {
	var out struct {
		Suggestions []TopicSuggestion `json:"suggestions"`
	}
	if err := decodeObject(text, &out); err != nil {
		return nil, fmt.Errorf("parse topic suggestions: %w", err)
	}
	if len(out.Suggestions) == 0 {
		return nil, fmt.Errorf("parse topic suggestions: empty suggestion list")
	}
	return out.Suggestions, nil
}

// ParseKeywordSuggestions decodes the {"keywords": [...]} payload.
func ParseKeywordSuggestions(text string) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := decodeObject(text, &out); err != nil {
		return nil, fmt.Errorf("parse keyword suggestions: %w", err)
	}
	return out.Keywords, nil
}

// ParseIdeas decodes the bare-array idea extraction payload.
func ParseIdeas(text string) ([]TopicSuggestion, error) {
	var out []TopicSuggestion
	if err := decodeArray(text, &out); err != nil {
		return nil, fmt.Errorf("parse ideas: %w", err)
	}
	return out, nil
}

// ParseVisualPrompt decodes a single english/Thai prompt pair.
func ParseVisualPrompt(text string) (VisualPrompt, error) {
	var out VisualPrompt
	if err := decodeObject(text, &out); err != nil {
		return VisualPrompt{}, fmt.Errorf("parse visual prompt: %w", err)
	}
	if out.English == "" {
		return VisualPrompt{}, fmt.Errorf("parse visual prompt: missing english prompt")
	}
	return out, nil
}

// ParseAllVisualPrompts decodes the per-section prompt array.
func ParseAllVisualPrompts(text string) ([]SectionVisual, error) {
	var out []SectionVisual
	if err := decodeArray(text, &out); err != nil {
		return nil, fmt.Errorf("parse visual prompts: %w", err)
	}
	return out, nil
}

// ParseDialogue decodes the section-title → spoken-text map.
func ParseDialogue(text string) (map[string]string, error) {
	var out map[string]string
	if err := decodeObject(text, &out); err != nil {
		return nil, fmt.Errorf("parse dialogue: %w", err)
	}
	return out, nil
}

// ParseSceneSummary decodes the parts-and-scenes breakdown.
func ParseSceneSummary(text string) ([]PartSummary, error) {
	var out []PartSummary
	if err := decodeArray(text, &out); err != nil {
		return nil, fmt.Errorf("parse scene summary: %w", err)
	}
	return out, nil
}

// SplitOutline breaks a rundown into sequential generation parts on markdown
// section headers (## or ###), after removing the display header if present.
// A rundown with no headers is treated as a single part.
func SplitOutline(outline string) []string {
	outline = strings.TrimPrefix(outline, OutlineHeader)
	lines := strings.Split(outline, "\n")

	var parts []string
	var current []string
	flush := func() {
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		if joined != "" {
			parts = append(parts, joined)
		}
		current = current[:0]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") || strings.HasPrefix(trimmed, "### ") {
			flush()
		}
		current = append(current, line)
	}
	flush()

	if len(parts) == 0 {
		return nil
	}
	return parts
}
