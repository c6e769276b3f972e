package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/thuanndbxvp/Thai-news/internal/keys"
	"github.com/thuanndbxvp/Thai-news/internal/library"
	"github.com/thuanndbxvp/Thai-news/internal/script"
	"github.com/thuanndbxvp/Thai-news/internal/workflow"
)

var tracer = otel.Tracer("thainews-mcp")

// generationParamProps lists the shared generation parameter schema. Every
// parameter is optional; unset ones keep their current session value.
func generationParamProps() map[string]any {
	return map[string]any{
		"title": map[string]any{
			"type":        "string",
			"description": "News topic or headline for the script",
		},
		"outline_content": map[string]any{
			"type":        "string",
			"description": "Key details, article text, or an edited rundown to base the script on",
		},
		"keywords": map[string]any{
			"type":        "string",
			"description": "SEO keywords to weave into the script, comma separated",
		},
		"word_count": map[string]any{
			"type":        "string",
			"description": "Approximate target word count",
			"default":     "1500",
		},
		"tone": map[string]any{
			"type":        "string",
			"description": "Tone: Friendly_PiNong, Professional_Neutral, Analytical, Cautious_Diplomatic",
			"default":     "Professional_Neutral",
		},
		"style": map[string]any{
			"type":        "string",
			"description": "Style: News_Report, Deep_Dive, Weekly_Summary",
			"default":     "News_Report",
		},
		"voice": map[string]any{
			"type":        "string",
			"description": "Narrator voice: Male_Krub, Female_Ka",
			"default":     "Female_Ka",
		},
		"script_type": map[string]any{
			"type":        "string",
			"description": "Output format: Video or Podcast",
			"default":     "Video",
		},
		"number_of_speakers": map[string]any{
			"type":        "string",
			"description": "Podcast speakers: Auto, 2, or 3",
			"default":     "Auto",
		},
		"audience_age": map[string]any{
			"type":        "string",
			"description": "Target audience: GenZ, Millennials, 30Plus",
			"default":     "Millennials",
		},
		"content_focus": map[string]any{
			"type":        "string",
			"description": "Content focus: General_News, Politics_Policy, Border_Conflict",
			"default":     "General_News",
		},
		"headings": map[string]any{
			"type":        "boolean",
			"description": "Include markdown headings",
			"default":     true,
		},
		"bullets": map[string]any{
			"type":        "boolean",
			"description": "Include bullet points",
			"default":     false,
		},
		"bold": map[string]any{
			"type":        "boolean",
			"description": "Bold key phrases",
			"default":     true,
		},
		"include_intro": map[string]any{
			"type":        "boolean",
			"description": "Include the intro section",
			"default":     true,
		},
		"include_outro": map[string]any{
			"type":        "boolean",
			"description": "Include the outro section",
			"default":     true,
		},
		"provider": map[string]any{
			"type":        "string",
			"description": "LLM vendor: gemini or openai",
			"default":     "gemini",
		},
		"model": map[string]any{
			"type":        "string",
			"description": "Model ID, e.g. gemini-2.5-flash or gpt-5. Defaults to the vendor's recommended model",
		},
	}
}

func providerProps() map[string]any {
	return map[string]any{
		"provider": map[string]any{
			"type":        "string",
			"description": "LLM vendor: gemini or openai",
			"default":     "gemini",
		},
		"model": map[string]any{
			"type":        "string",
			"description": "Model ID. Defaults to the vendor's recommended model",
		},
	}
}

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "generate_outline",
			Description: "Generate a detailed Thai news rundown (dàn ý) for a topic. The rundown becomes the session's working document; edit it with revise_script or expand it into a full script with expand_script.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: generationParamProps(),
				Required:   []string{"title"},
			},
		},
		{
			Name:        "generate_script",
			Description: "Generate a complete Thai news script in one call, without the rundown step.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: generationParamProps(),
				Required:   []string{"title"},
			},
		},
		{
			Name:        "expand_script",
			Description: "Split the current rundown into sections and write the first one. Requires a rundown from generate_outline. Call continue_script to write the remaining sections.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: providerProps(),
			},
		},
		{
			Name:        "continue_script",
			Description: "Write the next pending section of a sequential generation. When the last section lands the full script is assembled and returned.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: providerProps(),
			},
		},
		{
			Name:        "revise_script",
			Description: "Rewrite the current rundown or script according to one instruction, keeping everything not mentioned unchanged.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"instruction": map[string]any{
						"type":        "string",
						"description": "What to change, e.g. 'làm phần mở đầu ngắn hơn'",
					},
				},
				Required: []string{"instruction"},
			},
		},
		{
			Name:        "suggest_topics",
			Description: "Brainstorm five trending Thai news topics with short outlines. Optionally focused on a theme.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"theme": map[string]any{
						"type":        "string",
						"description": "Theme to focus the suggestions on; blank for the latest news",
					},
				},
			},
		},
		{
			Name:        "suggest_keywords",
			Description: "Suggest five Thai SEO keywords for a news title.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "News title to target. Defaults to the session's current title",
					},
				},
			},
		},
		{
			Name:        "visual_prompt",
			Description: "Generate an AI image/video prompt (English plus Thai translation) for one script section. Results are cached per section content.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"section": map[string]any{
						"type":        "string",
						"description": "The script section text to illustrate",
					},
				},
				Required: []string{"section"},
			},
		},
		{
			Name:        "visual_prompts_all",
			Description: "Generate visual prompts for every section of the current script in one call.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "extract_dialogue",
			Description: "Extract only the spoken narration from the current script, dropping headings and stage directions.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "summarize_scenes",
			Description: "Break the current script into ~8 second scenes with visual prompts, grouped by part.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "library_save",
			Description: "Save the current session (script, rundown, and settings) to the library. Returns the item ID.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "Title for the saved item. Defaults to the session title",
					},
				},
			},
		},
		{
			Name:        "library_get",
			Description: "Fetch a saved library item. Set load=true to also restore it as the active session.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"item_id": map[string]any{
						"type":        "string",
						"description": "Library item ID",
					},
					"load": map[string]any{
						"type":        "boolean",
						"description": "Restore the item as the active session",
						"default":     false,
					},
				},
				Required: []string{"item_id"},
			},
		},
		{
			Name:        "library_list",
			Description: "List saved library items, newest first.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "library_delete",
			Description: "Delete a library item.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"item_id": map[string]any{
						"type":        "string",
						"description": "Library item ID",
					},
				},
				Required: []string{"item_id"},
			},
		},
		{
			Name:        "check_keys",
			Description: "Validate the stored API keys against the live provider APIs. Each key is reported valid or invalid with a reason; a key rejected only for quota still counts as valid.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
	}
}

// Handlers contains tool handler implementations.
type Handlers struct {
	ctrl      *workflow.Controller
	keys      *keys.Store
	validator *keys.Validator
	lib       library.Store
	storage   *library.Storage
	log       *slog.Logger
}

// NewHandlers creates tool handlers. storage may be nil when no S3 bucket is
// configured.
func NewHandlers(ctrl *workflow.Controller, keyStore *keys.Store, validator *keys.Validator, lib library.Store, storage *library.Storage, logger *slog.Logger) *Handlers {
	return &Handlers{
		ctrl:      ctrl,
		keys:      keyStore,
		validator: validator,
		lib:       lib,
		storage:   storage,
		log:       logger,
	}
}

// Register adds every tool to the server.
func (h *Handlers) Register(s *server.MCPServer) {
	impls := map[string]server.ToolHandlerFunc{
		"generate_outline":   h.HandleGenerateOutline,
		"generate_script":    h.HandleGenerateScript,
		"expand_script":      h.HandleExpandScript,
		"continue_script":    h.HandleContinueScript,
		"revise_script":      h.HandleReviseScript,
		"suggest_topics":     h.HandleSuggestTopics,
		"suggest_keywords":   h.HandleSuggestKeywords,
		"visual_prompt":      h.HandleVisualPrompt,
		"visual_prompts_all": h.HandleVisualPromptsAll,
		"extract_dialogue":   h.HandleExtractDialogue,
		"summarize_scenes":   h.HandleSummarizeScenes,
		"library_save":       h.HandleLibrarySave,
		"library_get":        h.HandleLibraryGet,
		"library_list":       h.HandleLibraryList,
		"library_delete":     h.HandleLibraryDelete,
		"check_keys":         h.HandleCheckKeys,
	}
	for _, def := range ToolDefs() {
		s.AddTool(def, impls[def.Name])
	}
}

// applyRequest folds the request's generation parameters and provider choice
// into the session before a generation call.
func (h *Handlers) applyRequest(req mcp.CallToolRequest) {
	p := h.ctrl.Params()
	p.Title = mcp.ParseString(req, "title", p.Title)
	p.OutlineContent = mcp.ParseString(req, "outline_content", p.OutlineContent)
	p.Keywords = mcp.ParseString(req, "keywords", p.Keywords)
	p.WordCount = mcp.ParseString(req, "word_count", p.WordCount)
	p.StyleOptions.Tone = script.Tone(mcp.ParseString(req, "tone", string(p.StyleOptions.Tone)))
	p.StyleOptions.Style = script.Style(mcp.ParseString(req, "style", string(p.StyleOptions.Style)))
	p.StyleOptions.Voice = script.Voice(mcp.ParseString(req, "voice", string(p.StyleOptions.Voice)))
	p.ScriptType = script.ScriptType(mcp.ParseString(req, "script_type", string(p.ScriptType)))
	p.NumberOfSpeakers = script.NumberOfSpeakers(mcp.ParseString(req, "number_of_speakers", string(p.NumberOfSpeakers)))
	p.AudienceAge = script.AudienceAge(mcp.ParseString(req, "audience_age", string(p.AudienceAge)))
	p.ContentFocus = script.ContentFocus(mcp.ParseString(req, "content_focus", string(p.ContentFocus)))
	p.FormattingOptions.Headings = parseBoolParam(req, "headings", p.FormattingOptions.Headings)
	p.FormattingOptions.Bullets = parseBoolParam(req, "bullets", p.FormattingOptions.Bullets)
	p.FormattingOptions.Bold = parseBoolParam(req, "bold", p.FormattingOptions.Bold)
	p.FormattingOptions.IncludeIntro = parseBoolParam(req, "include_intro", p.FormattingOptions.IncludeIntro)
	p.FormattingOptions.IncludeOutro = parseBoolParam(req, "include_outro", p.FormattingOptions.IncludeOutro)
	h.ctrl.SetParams(p)

	currentProvider, currentModel := h.ctrl.ProviderModel()
	provider := script.Provider(mcp.ParseString(req, "provider", string(currentProvider)))
	model := mcp.ParseString(req, "model", "")
	if provider == currentProvider && model == "" {
		model = currentModel
	}
	h.ctrl.UseProvider(provider, model)
}

// HandleGenerateOutline produces a new rundown.
func (h *Handlers) HandleGenerateOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.generate_outline")
	defer span.End()

	h.applyRequest(req)
	provider, model := h.ctrl.ProviderModel()
	span.SetAttributes(
		attribute.String("provider", string(provider)),
		attribute.String("model", model),
	)

	out, err := h.ctrl.GenerateOutline(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate outline failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Rundown generated", "provider", provider, "model", model, "chars", len(out))
	return jsonResult(map[string]any{
		"state":   string(h.ctrl.State()),
		"rundown": out,
	})
}

// HandleGenerateScript produces a complete script in one call.
func (h *Handlers) HandleGenerateScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.generate_script")
	defer span.End()

	h.applyRequest(req)
	provider, model := h.ctrl.ProviderModel()
	span.SetAttributes(
		attribute.String("provider", string(provider)),
		attribute.String("model", model),
	)

	out, err := h.ctrl.GenerateFull(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate script failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Script generated", "provider", provider, "model", model, "chars", len(out))
	return jsonResult(map[string]any{
		"state":  string(h.ctrl.State()),
		"script": out,
	})
}

// HandleExpandScript starts sequential generation from the rundown.
func (h *Handlers) HandleExpandScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.expand_script")
	defer span.End()

	h.applyRequest(req)
	out, err := h.ctrl.BeginExpand(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "expand script failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.partResult(ctx, out)
}

// HandleContinueScript writes the next pending section.
func (h *Handlers) HandleContinueScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.continue_script")
	defer span.End()

	h.applyRequest(req)
	out, err := h.ctrl.ContinuePart(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "continue script failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.partResult(ctx, out)
}

func (h *Handlers) partResult(ctx context.Context, out string) (*mcp.CallToolResult, error) {
	done, total := h.ctrl.PartProgress()
	state := h.ctrl.State()
	result := map[string]any{
		"state":      string(state),
		"parts_done": done,
	}
	if total > 0 {
		result["parts_total"] = total
	}
	if state == workflow.StateComplete {
		result["script"] = out
		h.log.InfoContext(ctx, "Sequential generation complete", "parts", done)
	} else {
		result["part"] = out
		result["message"] = fmt.Sprintf("Part %d/%d written. Call continue_script for the next one.", done, total)
	}
	return jsonResult(result)
}

// HandleReviseScript rewrites the working document per one instruction.
func (h *Handlers) HandleReviseScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.revise_script")
	defer span.End()

	instruction := mcp.ParseString(req, "instruction", "")
	if strings.TrimSpace(instruction) == "" {
		span.SetStatus(codes.Error, "missing instruction")
		return mcp.NewToolResultError("instruction is required"), nil
	}

	out, err := h.ctrl.Revise(ctx, instruction)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "revise script failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	h.log.InfoContext(ctx, "Script revised", "revision", h.ctrl.RevisionCount())
	return jsonResult(map[string]any{
		"state":    string(h.ctrl.State()),
		"script":   out,
		"revision": h.ctrl.RevisionCount(),
	})
}

// HandleSuggestTopics brainstorms headline ideas.
func (h *Handlers) HandleSuggestTopics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.suggest_topics")
	defer span.End()

	theme := mcp.ParseString(req, "theme", "")
	span.SetAttributes(attribute.String("theme", theme))

	suggestions, err := h.ctrl.TopicSuggestions(ctx, theme)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggest topics failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"suggestions": suggestions})
}

// HandleSuggestKeywords proposes SEO keywords for a title.
func (h *Handlers) HandleSuggestKeywords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.suggest_keywords")
	defer span.End()

	title := mcp.ParseString(req, "title", h.ctrl.Params().Title)
	span.SetAttributes(attribute.String("title", title))

	keywords, err := h.ctrl.KeywordSuggestions(ctx, title)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "suggest keywords failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"keywords": keywords})
}

// HandleVisualPrompt illustrates one script section.
func (h *Handlers) HandleVisualPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.visual_prompt")
	defer span.End()

	section := mcp.ParseString(req, "section", "")
	if strings.TrimSpace(section) == "" {
		span.SetStatus(codes.Error, "missing section")
		return mcp.NewToolResultError("section is required"), nil
	}

	vp, err := h.ctrl.VisualPrompt(ctx, section)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "visual prompt failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(vp)
}

// HandleVisualPromptsAll covers every section of the current script.
func (h *Handlers) HandleVisualPromptsAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.visual_prompts_all")
	defer span.End()

	visuals, err := h.ctrl.AllVisualPrompts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "visual prompts failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	span.SetAttributes(attribute.Int("sections", len(visuals)))
	return jsonResult(map[string]any{"visuals": visuals})
}

// HandleExtractDialogue pulls the spoken narration out of the script.
func (h *Handlers) HandleExtractDialogue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.extract_dialogue")
	defer span.End()

	dialogue, err := h.ctrl.ExtractDialogue(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extract dialogue failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(dialogue)
}

// HandleSummarizeScenes breaks the script into timed scenes.
func (h *Handlers) HandleSummarizeScenes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.summarize_scenes")
	defer span.End()

	parts, err := h.ctrl.SummarizeScenes(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarize scenes failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	span.SetAttributes(attribute.Int("parts", len(parts)))
	return jsonResult(map[string]any{"parts": parts})
}

// HandleLibrarySave stores the current session in the library.
func (h *Handlers) HandleLibrarySave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.library_save")
	defer span.End()

	text := h.ctrl.Script()
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "nothing to save")
		return mcp.NewToolResultError("nothing to save: generate a rundown or script first"), nil
	}

	params := h.ctrl.Params()
	title := mcp.ParseString(req, "title", params.Title)
	item := library.Item{
		Title:          title,
		OutlineContent: params.OutlineContent,
		Script:         text,
		Params:         params,
	}
	if err := h.lib.SaveItem(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to save item: %v", err)), nil
	}

	// SaveItem assigns the ID on insert; the newest list entry is ours.
	items, err := h.lib.ListItems(ctx)
	if err != nil || len(items) == 0 {
		span.RecordError(err)
		return jsonResult(map[string]any{"saved": true, "title": title})
	}
	saved := items[0]
	span.SetAttributes(attribute.String("item_id", saved.ID))
	h.log.InfoContext(ctx, "Library item saved", "item_id", saved.ID, "title", title)

	result := map[string]any{
		"saved":   true,
		"item_id": saved.ID,
		"title":   title,
	}
	if h.storage != nil {
		_, url, err := h.storage.Upload(ctx, saved.ID, text)
		if err != nil {
			h.log.WarnContext(ctx, "Script upload failed", "item_id", saved.ID, "error", err)
		} else {
			result["url"] = url
		}
	}
	return jsonResult(result)
}

// HandleLibraryGet fetches one saved item, optionally restoring it as the
// active session.
func (h *Handlers) HandleLibraryGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.library_get")
	defer span.End()

	id := mcp.ParseString(req, "item_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing item_id")
		return mcp.NewToolResultError("item_id is required"), nil
	}
	span.SetAttributes(attribute.String("item_id", id))

	item, err := h.lib.GetItem(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get item failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get item: %v", err)), nil
	}
	if item == nil {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(fmt.Sprintf("item %s not found", id)), nil
	}

	if parseBoolParam(req, "load", false) {
		h.ctrl.LoadScript(item.Params, item.Script)
		h.log.InfoContext(ctx, "Library item loaded into session", "item_id", id)
	}

	return jsonResult(map[string]any{
		"item":  item,
		"state": string(h.ctrl.State()),
	})
}

// HandleLibraryList lists saved items, newest first.
func (h *Handlers) HandleLibraryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.library_list")
	defer span.End()

	items, err := h.lib.ListItems(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list items failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list items: %v", err)), nil
	}
	span.SetAttributes(attribute.Int("result_count", len(items)))

	summaries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, map[string]any{
			"item_id":    item.ID,
			"title":      item.Title,
			"created_at": item.CreatedAt,
		})
	}
	return jsonResult(map[string]any{
		"items": summaries,
		"count": len(summaries),
	})
}

// HandleLibraryDelete removes a saved item.
func (h *Handlers) HandleLibraryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.library_delete")
	defer span.End()

	id := mcp.ParseString(req, "item_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing item_id")
		return mcp.NewToolResultError("item_id is required"), nil
	}
	span.SetAttributes(attribute.String("item_id", id))

	if err := h.lib.DeleteItem(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete item: %v", err)), nil
	}
	return jsonResult(map[string]any{"deleted": true, "item_id": id})
}

// HandleCheckKeys validates every stored key concurrently.
func (h *Handlers) HandleCheckKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := tracer.Start(ctx, "tool.check_keys")
	defer span.End()

	pairs := keys.StorePairs(h.keys)
	if len(pairs) == 0 {
		return jsonResult(map[string]any{
			"keys":    []any{},
			"message": "no API keys stored",
		})
	}
	span.SetAttributes(attribute.Int("key_count", len(pairs)))

	results := h.validator.CheckAll(ctx, pairs)
	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		entry := map[string]any{
			"provider": string(r.Provider),
			"key":      maskKey(r.Key),
			"status":   string(r.Status),
		}
		if r.Message != "" {
			entry["message"] = r.Message
		}
		out = append(out, entry)
	}
	return jsonResult(map[string]any{"keys": out})
}

// maskKey shows only enough of a key to identify it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseBoolParam(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	raw, ok := args[key]
	if !ok {
		return defaultVal
	}
	if v, ok := raw.(bool); ok {
		return v
	}
	return defaultVal
}
