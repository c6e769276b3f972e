package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// menuItem represents a single configurable option in the wizard.
type menuItem struct {
	label    string
	value    string
	options  []menuOption
	required bool
	editing  bool
	cursor   int // cursor within options when editing
}

type menuOption struct {
	label string
	value string
}

// menuState tracks which phase the wizard is in.
type menuState int

const (
	stateMenu menuState = iota
	stateEditing
)

// wizardModel is the Bubble Tea model for the setup menu.
type wizardModel struct {
	items     []menuItem
	cursor    int
	state     menuState
	width     int
	err       error
	confirmed bool
	cancelled bool
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	menuLabelStyle = lipgloss.NewStyle().
			Width(18).
			Align(lipgloss.Right).
			MarginRight(2)

	menuValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	menuValueDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#555555")).
				Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	requiredStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	selectedOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#04B575")).
				Bold(true).
				PaddingLeft(2)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 3)

	buttonDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Padding(0, 3)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	headerBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#7D56F4")).
			MarginBottom(1).
			PaddingBottom(0)
)

// menu item indices
const (
	idxTitle = iota
	idxDetails
	idxKeywords
	idxWordCount
	idxTone
	idxStyle
	idxVoice
	idxType
	idxSpeakers
	idxAudience
	idxFocus
	idxProvider
	idxModel
	idxGenerate
)

// modelOptions returns the model choices for a provider, recommended first.
func modelOptions(p script.Provider) []menuOption {
	var ids []string
	if p == script.ProviderOpenAI {
		ids = script.OpenAIModels()
	} else {
		ids = script.GeminiModels()
	}
	opts := make([]menuOption, 0, len(ids))
	for i, id := range ids {
		label := id
		if i == 0 {
			label += " (recommended)"
		}
		opts = append(opts, menuOption{label: label, value: id})
	}
	return opts
}

func buildMenuItems() []menuItem {
	providerVal := flagProvider
	if providerVal == "" {
		providerVal = string(script.ProviderGemini)
	}
	modelVal := flagModel
	if modelVal == "" {
		modelVal = script.DefaultModel(script.Provider(providerVal))
	}

	items := []menuItem{
		{
			label:    "Title",
			value:    flagTitle,
			required: true,
		},
		{
			label: "Details",
			value: flagDetails,
		},
		{
			label: "Keywords",
			value: flagKeywords,
		},
		{
			label: "Word Count",
			value: flagWordCount,
			options: []menuOption{
				{label: "~800 (short clip)", value: "800"},
				{label: "~1500 (standard) (default)", value: "1500"},
				{label: "~2500 (long form)", value: "2500"},
				{label: "~4000 (deep dive)", value: "4000"},
			},
		},
		{
			label: "Tone",
			value: flagTone,
			options: []menuOption{
				{label: script.ToneLabel(script.ToneProfessional) + " (default)", value: string(script.ToneProfessional)},
				{label: script.ToneLabel(script.ToneFriendlyPiNong), value: string(script.ToneFriendlyPiNong)},
				{label: script.ToneLabel(script.ToneAnalytical), value: string(script.ToneAnalytical)},
				{label: script.ToneLabel(script.ToneCautiousDiplomatic), value: string(script.ToneCautiousDiplomatic)},
			},
		},
		{
			label: "Style",
			value: flagStyle,
			options: []menuOption{
				{label: script.StyleLabel(script.StyleNewsReport) + " (default)", value: string(script.StyleNewsReport)},
				{label: script.StyleLabel(script.StyleDeepDive), value: string(script.StyleDeepDive)},
				{label: script.StyleLabel(script.StyleWeeklySummary), value: string(script.StyleWeeklySummary)},
			},
		},
		{
			label: "Voice",
			value: flagVoice,
			options: []menuOption{
				{label: "Female (ka/dichan) (default)", value: string(script.VoiceFemaleKa)},
				{label: "Male (krub/phom)", value: string(script.VoiceMaleKrub)},
			},
		},
		{
			label: "Script Type",
			value: flagType,
			options: []menuOption{
				{label: "Video - narrated with visual structure (default)", value: string(script.TypeVideo)},
				{label: "Podcast - multi-speaker conversation", value: string(script.TypePodcast)},
			},
		},
		{
			label: "Speakers",
			value: flagSpeakers,
			options: []menuOption{
				{label: "Auto - let the model decide (default)", value: string(script.SpeakersAuto)},
				{label: "2 speakers", value: string(script.SpeakersTwo)},
				{label: "3 speakers", value: string(script.SpeakersThree)},
			},
		},
		{
			label: "Audience",
			value: flagAudience,
			options: []menuOption{
				{label: "Millennials (default)", value: string(script.AudienceMillennials)},
				{label: "Gen Z", value: string(script.AudienceGenZ)},
				{label: "30 and up", value: string(script.Audience30Plus)},
			},
		},
		{
			label: "Focus",
			value: flagFocus,
			options: []menuOption{
				{label: script.FocusLabel(script.FocusGeneralNews) + " (default)", value: string(script.FocusGeneralNews)},
				{label: script.FocusLabel(script.FocusPoliticsPolicy), value: string(script.FocusPoliticsPolicy)},
				{label: script.FocusLabel(script.FocusBorderConflict), value: string(script.FocusBorderConflict)},
			},
		},
		{
			label: "Provider",
			value: providerVal,
			options: []menuOption{
				{label: "Gemini (default)", value: string(script.ProviderGemini)},
				{label: "OpenAI", value: string(script.ProviderOpenAI)},
			},
		},
		{
			label:   "Model",
			value:   modelVal,
			options: modelOptions(script.Provider(providerVal)),
		},
	}

	// Generate button at the end
	items = append(items, menuItem{
		label: ">>> Generate <<<",
	})

	// Pre-select cursor position for options
	for i := range items {
		if len(items[i].options) > 0 {
			for j, opt := range items[i].options {
				if opt.value == items[i].value {
					items[i].cursor = j
					break
				}
			}
		}
	}

	return items
}

func initialWizardModel() wizardModel {
	return wizardModel{
		items:  buildMenuItems(),
		cursor: idxTitle,
		state:  stateMenu,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) isTextInput(idx int) bool {
	return idx == idxTitle || idx == idxDetails || idx == idxKeywords
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateEditing:
			return m.updateEditing(msg)
		}
	}
	return m, nil
}

func (m wizardModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "enter", " ":
		if m.cursor == idxGenerate {
			if m.items[idxTitle].value == "" {
				m.err = fmt.Errorf("Title is required")
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}

		if m.isTextInput(m.cursor) || len(m.items[m.cursor].options) > 0 {
			m.state = stateEditing
			m.items[m.cursor].editing = true
			m.err = nil
			return m, nil
		}
	}
	return m, nil
}

func (m wizardModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cursor
	item := &m.items[idx]

	// Text input for Title/Details/Keywords
	if m.isTextInput(idx) {
		switch msg.String() {
		case "enter":
			item.editing = false
			m.state = stateMenu
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "esc":
			item.editing = false
			m.state = stateMenu
			return m, nil
		case "backspace":
			if len(item.value) > 0 {
				runes := []rune(item.value)
				item.value = string(runes[:len(runes)-1])
			}
			return m, nil
		case "ctrl+u":
			item.value = ""
			return m, nil
		default:
			if msg.Type == tea.KeyRunes {
				item.value += string(msg.Runes)
			}
			return m, nil
		}
	}

	// Option selector for other fields
	switch msg.String() {
	case "enter", " ":
		if item.cursor >= 0 && item.cursor < len(item.options) {
			item.value = item.options[item.cursor].value
		}
		item.editing = false
		m.state = stateMenu

		// Switching provider swaps the model choices
		if idx == idxProvider {
			m.items[idxModel].options = modelOptions(script.Provider(item.value))
			m.items[idxModel].value = script.DefaultModel(script.Provider(item.value))
			m.items[idxModel].cursor = 0
		}

		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil

	case "esc":
		item.editing = false
		m.state = stateMenu
		return m, nil

	case "up", "k":
		if item.cursor > 0 {
			item.cursor--
		}

	case "down", "j":
		if item.cursor < len(item.options)-1 {
			item.cursor++
		}
	}
	return m, nil
}

func (m wizardModel) View() string {
	var b strings.Builder

	title := titleStyle.Render("Thai News Script Assistant")
	b.WriteString(headerBorder.Render(title))
	b.WriteString("\n")

	for i, item := range m.items {
		isActive := m.cursor == i

		if i == idxGenerate {
			b.WriteString("\n")
			if isActive {
				b.WriteString("  " + buttonStyle.Render(" Generate "))
			} else {
				b.WriteString("  " + buttonDimStyle.Render(" Generate "))
			}
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if isActive {
			cursor = cursorStyle.Render("> ")
		}

		label := item.label
		if item.required {
			label = label + requiredStyle.Render("*")
		}
		renderedLabel := menuLabelStyle.Render(label)

		var renderedValue string
		if item.editing && m.isTextInput(i) {
			renderedValue = menuValueStyle.Render(item.value + "_")
		} else if item.value == "" {
			placeholder := "(not set)"
			switch i {
			case idxDetails:
				placeholder = "(optional — paste article text or key facts)"
			case idxKeywords:
				placeholder = "(optional — comma separated)"
			}
			renderedValue = menuValueDimStyle.Render(placeholder)
		} else {
			displayVal := item.value
			for _, opt := range item.options {
				if opt.value == item.value {
					displayVal = opt.label
					break
				}
			}
			renderedValue = menuValueStyle.Render(displayVal)
		}

		b.WriteString(cursor + renderedLabel + " " + renderedValue + "\n")

		if item.editing && len(item.options) > 0 && !m.isTextInput(i) {
			for j, opt := range item.options {
				if j == item.cursor {
					b.WriteString(selectedOptionStyle.Render("> "+opt.label) + "\n")
				} else {
					b.WriteString(optionStyle.Render("  "+opt.label) + "\n")
				}
			}
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	switch m.state {
	case stateMenu:
		b.WriteString(helpStyle.Render("  j/k or arrows to navigate | enter to edit | q to quit"))
	case stateEditing:
		if m.isTextInput(m.cursor) {
			b.WriteString(helpStyle.Render("  type value | enter to confirm | esc to cancel | ctrl+u to clear"))
		} else {
			b.WriteString(helpStyle.Render("  j/k or arrows to pick | enter to select | esc to cancel"))
		}
	}
	b.WriteString("\n")

	return b.String()
}

func runWizard() error {
	m := initialWizardModel()

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("run setup wizard: %w", err)
	}

	final := result.(wizardModel)
	if final.cancelled || !final.confirmed {
		return fmt.Errorf("cancelled")
	}

	// Apply selections to flags
	flagTitle = final.items[idxTitle].value
	flagDetails = final.items[idxDetails].value
	flagKeywords = final.items[idxKeywords].value
	flagWordCount = final.items[idxWordCount].value
	flagTone = final.items[idxTone].value
	flagStyle = final.items[idxStyle].value
	flagVoice = final.items[idxVoice].value
	flagType = final.items[idxType].value
	flagSpeakers = final.items[idxSpeakers].value
	flagAudience = final.items[idxAudience].value
	flagFocus = final.items[idxFocus].value
	flagProvider = final.items[idxProvider].value
	flagModel = final.items[idxModel].value

	return nil
}
