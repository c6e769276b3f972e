package script

import (
	"fmt"
	"strings"
)

// OutlineHeader is prefixed to a generated rundown before it is shown to the
// user or fed into sequential generation. The header is display chrome, not
// model output, and is stripped again before the outline is split into parts.
const OutlineHeader = "### Dàn Ý Chi Tiết Tin Tức\n\n**Gợi ý:** Đây là khung chương trình tin tức của bạn. Bạn có thể sử dụng nút \"Tạo kịch bản đầy đủ\" để viết chi tiết.\n\n---\n\n"

// Prompt builders are pure functions of their inputs: same params, same
// bytes. Anything time- or environment-dependent stays out of this package.

func roleDefinition(p GenerationParams) string {
	particles := "ค่ะ/ดิฉัน/หนู"
	if p.StyleOptions.Voice == VoiceMaleKrub {
		particles = "ครับ/ผม"
	}
	return fmt.Sprintf(`You are a professional Thai News Anchor and Editor for a YouTube channel targeting %s audiences.
Your Persona:
- **Tone:** %s. Use polite particles (%s) consistently.
- **Style:** %s.
- **Focus:** %s.
- **Language:** Standard Bangkok Thai (ภาษากลาง).`,
		p.AudienceAge,
		p.StyleOptions.Tone, particles,
		p.StyleOptions.Style,
		strings.ReplaceAll(string(p.ContentFocus), "_", " "))
}

func outlineInstruction(p GenerationParams) string {
	if strings.TrimSpace(p.OutlineContent) != "" {
		return fmt.Sprintf("**User's Specific News Details / Outline:** %q. Use this as the core information for the news report.", p.OutlineContent)
	}
	return fmt.Sprintf("**User's Specific News Details:** No specific details provided. Please construct a realistic news report based on the title %q using typical current event structures.", p.Title)
}

// skipMarker flags a structural section the user turned off. The model is
// told to skip rather than the section being removed, so section numbering
// in the template stays stable.
func skipMarker(enabled bool) string {
	if enabled {
		return ""
	}
	return " (Skip if user disabled)"
}

// BuildFullScript produces the single-shot generation prompt. The Podcast
// branch and the Video branch share the persona and guardrail blocks but
// differ in required structure.
func BuildFullScript(p GenerationParams) string {
	if p.ScriptType == TypePodcast {
		speakers := fmt.Sprintf("Create a conversation for exactly %s speakers.", p.NumberOfSpeakers)
		if p.NumberOfSpeakers == SpeakersAuto {
			speakers = "Automatically determine the best number of speakers (2 or 3) for this news discussion."
		}
		return fmt.Sprintf(`%s

%s

**Task:** Create a News Podcast Script in Thai.
**Title:** %q
%s
**Target Length:** Approximately %s words.
**Speakers:** %s

**Structure:**
1. **Intro:** Warm greeting, introduce the hosts (assign Thai nicknames like P'A, Nong B), and the main topic.
2. **Main Discussion:** Discuss the news topic in depth.
   - If discussing politics/border issues, keep it balanced.
   - Share opinions but always respect differing views.
3. **Outro:** Summary and soft Call to Action (subscribe, comment respectfully).

**Constraints:**
- Use sound cues [Sound Effect].
- Keep it natural and conversational ("Pi-Nong" style).
- Strictly follow the Thai Cultural Guardrails.

Please generate the full podcast script now.`,
			roleDefinition(p), thaiGuardrails, p.Title, outlineInstruction(p), p.WordCount, speakers)
	}

	keywords := p.Keywords
	if keywords == "" {
		keywords = "None"
	}
	return fmt.Sprintf(`%s

%s

**Task:** Create a Daily News Video Script in Thai.
**Title:** %q
%s
**Target Length:** Approximately %s words.
**Keywords to Include:** %s

**REQUIRED SCRIPT STRUCTURE (Do not deviate):**

1. **INTRO (30-60s)**%s
   - Greeting (Sawasdee).
   - State the "vibe" of the day and the headline news.
   - Emphasize neutrality and verified info.

2. **SEGMENT A: MAIN NEWS (Domestic/Politics/Society)**
   - Context: Who, When, Where.
   - What happened (The decision/event).
   - Viewpoints from relevant parties (Govt, Opposition, Experts).
   - Impact on the people (Taxes, rights, daily life).
   - *Note: Use neutral phrases like "Some sides view that...", "Another perspective is...".*

3. **SEGMENT B: BORDER/RELATIONS (Thai-Cambodia)**
   - *Only include if the topic implies border issues or if content focus is Border_Conflict. Otherwise, replace with International or Economic news.*
   - Context of relations.
   - Specific event (clash, negotiation, statement).
   - **CRITICAL:** Distinguish between "Govt/Army Policy" and "The People". Do not incite hatred.
   - Ending: Hope for diplomatic solution.

4. **SEGMENT C: OTHER IMPORTANT NEWS**
   - Social, Economic, or Safety news affecting daily life.
   - Keep it concise: What - Where - Impact.

5. **OUTRO (1 min)**%s
   - Summarize 1-2 key points.
   - Remind viewers to comment respectfully (Soft CTA).
   - Closing greeting.

**Output Format:**
Use Markdown headers (##) for each section.
For each part, provide:
- **Timestamp Estimate**
- **Visual/Camera Cues:** (e.g., [Show map of border], [Cut to B-roll of parliament])
- **Script (Lời thoại):** The spoken Thai text.

**Self-Correction Checklist (Internal Monologue - Do not output):**
- Is the tone polite (Pi-Nong)?
- Is it neutral on politics?
- Did I avoid insulting the Royal Family or Religion?
- Did I avoid inciting hatred against neighbors (Cambodia)?
- Is the word count close to target?

Generate the full script now.`,
		roleDefinition(p), thaiGuardrails, p.Title, outlineInstruction(p), p.WordCount, keywords,
		skipMarker(p.FormattingOptions.IncludeIntro), skipMarker(p.FormattingOptions.IncludeOutro))
}

// BuildOutline produces the rundown prompt. Callers prefix the model's
// answer with OutlineHeader before storing it as the interim script.
func BuildOutline(p GenerationParams) string {
	notes := p.OutlineContent
	if notes == "" {
		notes = "None"
	}
	return fmt.Sprintf(`You are a Thai News Editor.
Task: Generate a detailed news rundown/outline for a video.
**Video Title:** %q
**User Notes:** %q
**Language:** Thai

%s

**Instructions:**
- Create a rundown following the Intro -> Segment A -> Segment B -> Segment C -> Outro structure.
- Highlight key talking points for each segment.
- Ensure the flow is logical for a news broadcast.
- Output in Thai.`, p.Title, notes, thaiGuardrails)
}

// BuildRevision asks for a full rewritten script honoring one instruction.
func BuildRevision(originalScript, instruction string, p GenerationParams) string {
	return fmt.Sprintf(`You are a Thai News Editor. Revise this script.

**Original Script:**
"""%s"""

**Revision Request:** %q

**Guardrails:** %s

**Requirements:**
- Maintain strict Thai News persona (%s, %s, %s).
- Keep word count close to %s.
- Output full revised script in Thai.`,
		originalScript, instruction, thaiGuardrails,
		p.StyleOptions.Tone, p.StyleOptions.Style, p.StyleOptions.Voice, p.WordCount)
}

// BuildNextPart writes one outline section in sequence. previousParts is the
// concatenation of everything already generated so the model can transition.
func BuildNextPart(fullOutline, previousParts, currentPart string, p GenerationParams) string {
	return fmt.Sprintf(`You are a Thai News Anchor writing the next segment of the news.

**Context (Outline):** """%s"""
**Previous Part:** """%s"""
**Current Task:** Write script for: """%s"""

**Guardrails:** %s

**Instructions:**
- Write only this segment.
- Maintain polite %s tone.
- Ensure smooth transition from previous part.
- Output in Thai.`,
		fullOutline, previousParts, currentPart, thaiGuardrails, p.StyleOptions.Tone)
}

// The prompts below request structured JSON and carry no guardrail block:
// they transform or classify text rather than author new Thai content.

// BuildTopicSuggestions asks for exactly five headline ideas for a theme.
func BuildTopicSuggestions(theme string) string {
	if strings.TrimSpace(theme) == "" {
		theme = "Latest Thai News"
	}
	return fmt.Sprintf(`Based on the theme %q, generate exactly 5 specific, engaging, and verified-style news headlines in **Thai**.
Focus on: Politics, Social Issues, or Thai-Cambodia Relations (if relevant).

Each idea must include:
- 'title': A catchy but accurate news headline in Thai.
- 'outline': A 2-3 sentence summary of the news story in Thai.

Output JSON: {"suggestions": [{"title": "...", "outline": "..."}, ...]}`, theme)
}

// BuildKeywordSuggestions asks for five SEO keywords for a title.
func BuildKeywordSuggestions(title string) string {
	return fmt.Sprintf(`Based on news title %q, generate 5 SEO keywords in **Thai**.
Output JSON: {"keywords": ["...", ...]}`, title)
}

// BuildIdeaExtraction parses free-form file content into topic ideas.
func BuildIdeaExtraction(fileContent string) string {
	return fmt.Sprintf(`You are a data extraction assistant. Parse the text for news ideas.
Input: """%s"""
Extract 'title' (Thai), 'vietnameseTitle' (Thai), and 'outline' (Thai).
Output JSON array.`, fileContent)
}

// BuildVisualPrompt turns one scene description into a video-generation
// prompt pair. The "vietnamese" key holds the Thai translation; the name is
// kept for compatibility with stored data from earlier releases.
func BuildVisualPrompt(sceneDescription string) string {
	return fmt.Sprintf(`Create an AI video generation prompt (English) for this news scene.
Also provide Thai translation.
Scene: """%s"""
Output JSON: {"english": "...", "vietnamese": "..."} (Use 'vietnamese' key for Thai translation for compatibility)`, sceneDescription)
}

// BuildAllVisualPrompts covers every section of a script in one call.
func BuildAllVisualPrompts(fullScript string) string {
	return fmt.Sprintf(`Generate AI video prompts for each section of this news script.
Script: """%s"""
Output JSON array of objects with keys: scene, english, vietnamese (Thai).`, fullScript)
}

// BuildDialogueExtraction strips a script down to its spoken lines.
func BuildDialogueExtraction(fullScript string) string {
	return fmt.Sprintf(`Extract ONLY the spoken Thai dialogue/narration from this script.
Ignore visual cues, headers, and timestamps.
Script: """%s"""
Output JSON object: {"Section Title": "Spoken Text", ...}`, fullScript)
}

// BuildSceneSummary breaks a script into 8-second production scenes.
func BuildSceneSummary(fullScript string) string {
	return fmt.Sprintf(`Break down this news script into 8-second scenes.
Script: """%s"""
Output JSON array with parts and scenes (summary in Thai, visualPrompt in English).`, fullScript)
}
