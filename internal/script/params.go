package script

import "fmt"

// Provider identifies which LLM vendor handles a call.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Closed option sets. The values are wire-level identifiers shared with the
// web UI and the saved-state files, so they must not be renamed.
type (
	Tone             string
	Style            string
	Voice            string
	ScriptType       string
	NumberOfSpeakers string
	AudienceAge      string
	ContentFocus     string
)

const (
	ToneFriendlyPiNong     Tone = "Friendly_PiNong"
	ToneProfessional       Tone = "Professional_Neutral"
	ToneAnalytical         Tone = "Analytical"
	ToneCautiousDiplomatic Tone = "Cautious_Diplomatic"

	StyleNewsReport    Style = "News_Report"
	StyleDeepDive      Style = "Deep_Dive"
	StyleWeeklySummary Style = "Weekly_Summary"

	VoiceMaleKrub Voice = "Male_Krub"
	VoiceFemaleKa Voice = "Female_Ka"

	TypeVideo   ScriptType = "Video"
	TypePodcast ScriptType = "Podcast"

	SpeakersAuto  NumberOfSpeakers = "Auto"
	SpeakersTwo   NumberOfSpeakers = "2"
	SpeakersThree NumberOfSpeakers = "3"

	AudienceGenZ        AudienceAge = "GenZ"
	AudienceMillennials AudienceAge = "Millennials"
	Audience30Plus      AudienceAge = "30Plus"

	FocusGeneralNews    ContentFocus = "General_News"
	FocusPoliticsPolicy ContentFocus = "Politics_Policy"
	FocusBorderConflict ContentFocus = "Border_Conflict"
)

// StyleOptions groups the persona knobs.
type StyleOptions struct {
	Tone  Tone  `json:"tone"`
	Style Style `json:"style"`
	Voice Voice `json:"voice"`
}

// FormattingOptions controls which structural sections appear in the script.
type FormattingOptions struct {
	Headings     bool `json:"headings"`
	Bullets      bool `json:"bullets"`
	Bold         bool `json:"bold"`
	IncludeIntro bool `json:"includeIntro"`
	IncludeOutro bool `json:"includeOutro"`
}

// GenerationParams carries the full configuration for one generation call.
// It is treated as an immutable value: builders never modify it.
type GenerationParams struct {
	Title             string            `json:"title"`
	OutlineContent    string            `json:"outlineContent"`
	StyleOptions      StyleOptions      `json:"styleOptions"`
	Keywords          string            `json:"keywords"`
	FormattingOptions FormattingOptions `json:"formattingOptions"`
	WordCount         string            `json:"wordCount"`
	ScriptType        ScriptType        `json:"scriptType"`
	NumberOfSpeakers  NumberOfSpeakers  `json:"numberOfSpeakers"`
	AudienceAge       AudienceAge       `json:"audienceAge"`
	ContentFocus      ContentFocus      `json:"contentFocus"`
}

// DefaultParams returns the configuration the UI starts with.
func DefaultParams() GenerationParams {
	return GenerationParams{
		StyleOptions: StyleOptions{
			Tone:  ToneProfessional,
			Style: StyleNewsReport,
			Voice: VoiceFemaleKa,
		},
		FormattingOptions: FormattingOptions{
			Headings:     true,
			Bold:         true,
			IncludeIntro: true,
			IncludeOutro: true,
		},
		WordCount:        "1500",
		ScriptType:       TypeVideo,
		NumberOfSpeakers: SpeakersAuto,
		AudienceAge:      AudienceMillennials,
		ContentFocus:     FocusGeneralNews,
	}
}

// Validate checks that every enum field holds a known value and that the
// title is present. Generation is refused on an empty title.
func (p GenerationParams) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title is required before generating")
	}
	checks := []struct {
		name  string
		value string
		valid []string
	}{
		{"tone", string(p.StyleOptions.Tone), toneValues()},
		{"style", string(p.StyleOptions.Style), styleValues()},
		{"voice", string(p.StyleOptions.Voice), voiceValues()},
		{"script type", string(p.ScriptType), []string{string(TypeVideo), string(TypePodcast)}},
		{"number of speakers", string(p.NumberOfSpeakers), []string{string(SpeakersAuto), string(SpeakersTwo), string(SpeakersThree)}},
		{"audience age", string(p.AudienceAge), []string{string(AudienceGenZ), string(AudienceMillennials), string(Audience30Plus)}},
		{"content focus", string(p.ContentFocus), []string{string(FocusGeneralNews), string(FocusPoliticsPolicy), string(FocusBorderConflict)}},
	}
	for _, c := range checks {
		found := false
		for _, v := range c.valid {
			if c.value == v {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid %s %q", c.name, c.value)
		}
	}
	return nil
}

func toneValues() []string {
	return []string{
		string(ToneFriendlyPiNong),
		string(ToneProfessional),
		string(ToneAnalytical),
		string(ToneCautiousDiplomatic),
	}
}

func styleValues() []string {
	return []string{string(StyleNewsReport), string(StyleDeepDive), string(StyleWeeklySummary)}
}

func voiceValues() []string {
	return []string{string(VoiceMaleKrub), string(VoiceFemaleKa)}
}

// ToneLabel returns a human-readable label for display in menus.
func ToneLabel(t Tone) string {
	labels := map[Tone]string{
		ToneFriendlyPiNong:     "Friendly (Pi-Nong)",
		ToneProfessional:       "Professional & Neutral",
		ToneAnalytical:         "Analytical",
		ToneCautiousDiplomatic: "Cautious & Diplomatic",
	}
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// StyleLabel returns a human-readable label for display in menus.
func StyleLabel(s Style) string {
	labels := map[Style]string{
		StyleNewsReport:    "Daily News Report",
		StyleDeepDive:      "Deep-Dive Analysis",
		StyleWeeklySummary: "Weekly Summary",
	}
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// FocusLabel returns a human-readable label for display in menus.
func FocusLabel(f ContentFocus) string {
	labels := map[ContentFocus]string{
		FocusGeneralNews:    "Current Affairs & Society",
		FocusPoliticsPolicy: "Politics & Policy",
		FocusBorderConflict: "Thai-Cambodia Relations",
	}
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

// GeminiModels lists the selectable Gemini model IDs, recommended first.
func GeminiModels() []string {
	return []string{"gemini-2.5-flash", "gemini-3-pro-preview", "gemini-2.5-pro"}
}

// OpenAIModels lists the selectable OpenAI model IDs, recommended first.
func OpenAIModels() []string {
	return []string{"gpt-5", "gpt-5-turbo", "gpt-4o"}
}

// DefaultModel returns the recommended model for a provider.
func DefaultModel(p Provider) string {
	if p == ProviderOpenAI {
		return OpenAIModels()[0]
	}
	return GeminiModels()[0]
}
